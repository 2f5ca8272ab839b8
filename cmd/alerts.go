package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobpilot/jobpilot/internal/alerts"
	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/dependency"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Manage saved job-search alerts",
}

func init() {
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAddCmd)
	alertsCmd.AddCommand(alertsRemoveCmd)
	alertsCmd.AddCommand(alertsEnableCmd)
	alertsCmd.AddCommand(alertsRunCmd)
}

// editService opens the alert store without a search backend.
func editService() (*alerts.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return alerts.NewService(cfg.AlertsPath(), nil, nil), nil
}

// ---- list ------------------------------------------------------------------

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved alerts",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, err := editService()
		if err != nil {
			return err
		}
		list := svc.List()
		if len(list) == 0 {
			fmt.Println("No saved alerts.")
			return nil
		}
		fmt.Printf("%-10s %-20s %-16s %-10s %-20s %s\n", "ID", "Name", "Schedule", "Status", "Next Run", "Last")
		fmt.Println(strings.Repeat("-", 96))
		for _, a := range list {
			status := "enabled"
			if !a.Enabled {
				status = "disabled"
			}
			next := ""
			if a.State.NextRunAt != nil {
				next = a.State.NextRunAt.Local().Format("2006-01-02 15:04")
			}
			last := a.State.LastStatus
			if a.State.LastError != "" {
				last += ": " + truncStr(a.State.LastError, 30)
			}
			fmt.Printf("%-10s %-20s %-16s %-10s %-20s %s\n",
				a.ID, truncStr(a.Name, 19), truncStr(a.Schedule, 15), status, next, last)
		}
		return nil
	},
}

// ---- add -------------------------------------------------------------------

var (
	alertsAddName     string
	alertsAddCron     string
	alertsAddTZ       string
	alertsAddTerm     string
	alertsAddLocation string
	alertsAddLimit    int
	alertsAddChannel  string
	alertsAddChat     string
)

var alertsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a job search that runs on a schedule",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, err := editService()
		if err != nil {
			return err
		}
		a, err := svc.Add(alerts.Alert{
			Name:     alertsAddName,
			Schedule: alertsAddCron,
			TZ:       alertsAddTZ,
			Search: alerts.Search{
				Term:     alertsAddTerm,
				Location: alertsAddLocation,
				Limit:    alertsAddLimit,
			},
			Destination: alerts.Destination{
				Channel: bus.Channel(alertsAddChannel),
				ChatID:  alertsAddChat,
			},
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added alert %s\n  %s\n", a.ID, a.Describe())
		return nil
	},
}

func init() {
	f := alertsAddCmd.Flags()
	f.StringVarP(&alertsAddName, "name", "n", "", "Alert name (defaults to the search term)")
	f.StringVarP(&alertsAddCron, "cron", "c", "0 9 * * 1-5", "Cron expression or descriptor such as @daily")
	f.StringVar(&alertsAddTZ, "tz", "", "IANA time zone for the schedule")
	f.StringVarP(&alertsAddTerm, "term", "q", "", "Search term")
	f.StringVarP(&alertsAddLocation, "location", "l", "", "Location filter")
	f.IntVar(&alertsAddLimit, "limit", alerts.DefaultLimit, "Listings per run")
	f.StringVar(&alertsAddChannel, "channel", string(bus.ChannelSlack), "Delivery channel: slack or telegram")
	f.StringVar(&alertsAddChat, "chat", "", "Chat ID to deliver to")
	_ = alertsAddCmd.MarkFlagRequired("term")
	_ = alertsAddCmd.MarkFlagRequired("chat")
}

// ---- remove ----------------------------------------------------------------

var alertsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a saved alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc, err := editService()
		if err != nil {
			return err
		}
		ok, err := svc.Remove(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("alert %s not found", args[0])
		}
		fmt.Printf("✓ Removed alert %s\n", args[0])
		return nil
	},
}

// ---- enable ----------------------------------------------------------------

var alertsDisable bool

var alertsEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable (or with --disable, pause) a saved alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc, err := editService()
		if err != nil {
			return err
		}
		a, ok, err := svc.Enable(args[0], !alertsDisable)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("alert %s not found", args[0])
		}
		state := "enabled"
		if !a.Enabled {
			state = "disabled"
		}
		fmt.Printf("✓ Alert %s %s\n", a.ID, state)
		return nil
	},
}

func init() {
	alertsEnableCmd.Flags().BoolVar(&alertsDisable, "disable", false, "Disable instead of enable")
}

// ---- run -------------------------------------------------------------------

var alertsRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a saved alert now and print the listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := dependency.New(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		svc := alerts.NewService(cfg.AlertsPath(), alerts.NewBackendSearcher(c.Backend()), stdoutPublisher{})
		return svc.RunNow(context.Background(), args[0])
	},
}

// stdoutPublisher prints alert deliveries instead of sending them to a chat.
type stdoutPublisher struct{}

func (stdoutPublisher) PublishOutbound(_ context.Context, msg bus.OutboundMessage) error {
	fmt.Printf("→ %s\n\n%s\n", bus.RoutingKey(msg.Channel(), msg.ChatID()), msg.Content())
	return nil
}

func truncStr(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
