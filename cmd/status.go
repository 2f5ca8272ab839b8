package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobpilot/jobpilot/internal/alerts"
	"github.com/jobpilot/jobpilot/internal/config"
	"github.com/jobpilot/jobpilot/internal/mcp"
	"github.com/jobpilot/jobpilot/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show jobpilot status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s jobpilot Status\n\n", logo)
	fmt.Printf("Config:    %s %s\n", cfgPath, existsMark(cfgPath))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	ws := cfg.WorkspacePath()
	fmt.Printf("Workspace: %s %s\n", ws, existsMark(ws))
	fmt.Printf("Documents: %s %s\n", cfg.OutputDir(), existsMark(cfg.OutputDir()))

	provider := cfg.Providers.Active()
	if provider == "" {
		provider = "(none configured)"
	}
	fmt.Printf("Provider:  %s\n", provider)
	if cfg.Agent.Model != "" {
		fmt.Printf("Model:     %s\n", cfg.Agent.Model)
	}

	fmt.Printf("Backend:   %s\n", backendSummary(cfg))

	fmt.Println("\nChannels:")
	fmt.Printf("  %-10s %s\n", "Slack", yesNo(cfg.Channels.Slack.Enabled))
	fmt.Printf("  %-10s %s\n", "Telegram", yesNo(cfg.Channels.Telegram.Enabled))

	n := len(alerts.NewService(cfg.AlertsPath(), nil, nil).List())
	fmt.Printf("\nAlerts:    %d saved (%s)\n", n, yesNo(cfg.Alerts.Enabled))

	if sessions, err := session.NewManager(ws); err == nil {
		list := sessions.List()
		fmt.Printf("Sessions:  %d stored\n", len(list))
		for i, info := range list {
			if i == 5 {
				fmt.Printf("  ... and %d more\n", len(list)-5)
				break
			}
			fmt.Printf("  %-30s %s\n", info.Key, info.UpdatedAt)
		}
	}
	return nil
}

func backendSummary(cfg *config.Config) string {
	b := cfg.Backend
	if b.URL == "" && b.Command == "" {
		return string(mcp.TransportInProcess)
	}
	t := mcp.Config{URL: b.URL, Command: b.Command}.Transport()
	if t == mcp.TransportSSE {
		return fmt.Sprintf("%s %s", t, b.URL)
	}
	return fmt.Sprintf("%s %s", t, b.Command)
}

func existsMark(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "✓"
	}
	return "✗"
}
