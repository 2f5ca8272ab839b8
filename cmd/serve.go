package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobpilot/jobpilot/internal/dependency"
	"github.com/jobpilot/jobpilot/internal/server"
)

var (
	serveTransport string
	serveAddr      string
	serveBaseURL   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job tool server over MCP (stdio or SSE)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "Transport: stdio or sse (default from config)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address for sse (default from config)")
	serveCmd.Flags().StringVar(&serveBaseURL, "base-url", "", "Public base URL advertised to sse clients")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	transport := cfg.Server.Transport
	if serveTransport != "" {
		transport = serveTransport
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	baseURL := cfg.Server.BaseURL
	if serveBaseURL != "" {
		baseURL = serveBaseURL
	}

	srv, err := dependency.NewStandaloneToolServer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch transport {
	case "", "stdio":
		err = server.ServeStdio(ctx, srv)
	case "sse":
		fmt.Fprintf(os.Stderr, "%s Tool server listening on %s\n", logo, addr)
		err = server.ServeSSE(ctx, srv, addr, baseURL)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
