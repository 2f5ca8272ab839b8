package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jobpilot/jobpilot/internal/dependency"
)

var gatewayWeb bool

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the jobpilot gateway: chat channels, alerts and optionally the web API",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().BoolVar(&gatewayWeb, "web", false, "Also serve the web API")
}

func runGateway(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Printf("%s Starting jobpilot gateway...\n", logo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if enabled := c.Channels().EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	} else {
		fmt.Println("Warning: no channels enabled")
	}

	g.Go(func() error { return c.AgentLoop().Run(gctx) })
	g.Go(func() error { return c.Channels().StartAll(gctx) })
	g.Go(func() error { return pruneArtifacts(gctx, c) })
	if cfg.Alerts.Enabled {
		fmt.Printf("✓ Alerts from %s\n", cfg.AlertsPath())
		g.Go(func() error { return c.Alerts().Start(gctx) })
	}
	if gatewayWeb {
		fmt.Printf("✓ Web API on %s\n", cfg.Web.Addr)
		g.Go(func() error { return c.Web().Run(gctx) })
	}

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}

// pruneArtifacts drops documents nobody downloaded within ArtifactTTL.
func pruneArtifacts(ctx context.Context, c *dependency.Container) error {
	ticker := time.NewTicker(dependency.ArtifactTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.Artifacts().Prune(dependency.ArtifactTTL); n > 0 {
				slog.Debug("Pruned artifacts", "count", n)
			}
		}
	}
}
