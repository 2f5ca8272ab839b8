package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jobpilot/jobpilot/internal/dependency"
)

var webAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the HTTP and WebSocket chat API",
	RunE:  runWeb,
}

func init() {
	webCmd.Flags().StringVar(&webAddr, "addr", "", "Listen address (default from config)")
}

func runWeb(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if webAddr != "" {
		cfg.Web.Addr = webAddr
	}

	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%s Web API on http://%s\n", logo, cfg.Web.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Web().Run(gctx) })
	g.Go(func() error { return pruneArtifacts(gctx, c) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
