package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobpilot/jobpilot/internal/channels"
	"github.com/jobpilot/jobpilot/internal/dependency"
)

var (
	chatMessage string
	chatResume  string
	chatSaveDir string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().StringVarP(&chatResume, "resume", "r", "", "Resume file (.txt, .md or .docx) to start the conversation with")
	chatCmd.Flags().StringVarP(&chatSaveDir, "out", "o", ".", "Directory generated documents are saved to")
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	cli := channels.NewCLIChannel(c.AgentLoop(), os.Stdin, os.Stdout, chatSaveDir)
	if chatResume != "" {
		if err := cli.LoadResume(chatResume); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if chatMessage != "" {
		cli.Once(ctx, chatMessage)
		return nil
	}

	if err := cli.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
