package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Inspect chat channels",
}

func init() {
	channelsCmd.AddCommand(channelsStatusCmd)
}

var channelsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show channel configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sl := cfg.Channels.Slack
		tg := cfg.Channels.Telegram

		slackDetail := "(not configured)"
		if sl.AppToken != "" && sl.BotToken != "" {
			slackDetail = fmt.Sprintf("socket, groups=%s, dm=%s", sl.GroupPolicy, sl.DM.Policy)
		}
		tgDetail := tokenHint(tg.Token)
		if len(tg.AllowFrom) > 0 {
			tgDetail += ", allow=" + strings.Join(tg.AllowFrom, ",")
		}

		fmt.Printf("%-12s %-8s %s\n", "Channel", "Enabled", "Configuration")
		fmt.Println(strings.Repeat("-", 60))
		fmt.Printf("%-12s %-8s %s\n", "Slack", yesNo(sl.Enabled), slackDetail)
		fmt.Printf("%-12s %-8s %s\n", "Telegram", yesNo(tg.Enabled), tgDetail)
		fmt.Printf("%-12s %-8s %s\n", "Web", "-", cfg.Web.Addr)
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}

func tokenHint(s string) string {
	if s == "" {
		return "(not configured)"
	}
	if len(s) > 10 {
		return s[:10] + "..."
	}
	return s
}
