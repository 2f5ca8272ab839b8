package dependency

import (
	"fmt"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/dig"

	"github.com/jobpilot/jobpilot/internal/config"
	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/server"
)

// Version is reported by the tool server and the CLI.
const Version = "0.1.0"

// NewToolServer builds the MCP job tool server: board scraper, page
// scraper and document generator behind the tool handlers. p drafts the
// tailored documents.
func NewToolServer(cfg *config.Config, p schema.LLMProvider) (*mcpserver.MCPServer, error) {
	d := dig.New()

	for _, ctor := range []any{
		func() *config.Config { return cfg },
		func() schema.LLMProvider { return p },
		newBoardScraper,
		newPageScraper,
		newGenerator,
		newToolServer,
	} {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var srv *mcpserver.MCPServer
	if err := d.Invoke(func(s *mcpserver.MCPServer) { srv = s }); err != nil {
		return nil, fmt.Errorf("wire tool server: %w", dig.RootCause(err))
	}
	return srv, nil
}

// NewStandaloneToolServer builds the tool server with its own provider,
// for `jobpilot serve`.
func NewStandaloneToolServer(cfg *config.Config) (*mcpserver.MCPServer, error) {
	p, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewToolServer(cfg, p)
}

func newBoardScraper(cfg *config.Config) (*jobs.Scraper, error) {
	sc := cfg.Server.Scraper
	boards, err := jobs.BoardsByName(sc.Boards)
	if err != nil {
		return nil, err
	}
	return jobs.NewScraper(boards, jobs.ScraperOptions{
		RequestInterval: time.Duration(sc.RequestIntervalMs) * time.Millisecond,
		Burst:           sc.Burst,
		Timeout:         time.Duration(sc.TimeoutSeconds) * time.Second,
	}), nil
}

func newPageScraper(cfg *config.Config) *jobs.PageScraper {
	sc := cfg.Server.Scraper
	return jobs.NewPageScraper(time.Duration(sc.TimeoutSeconds)*time.Second, sc.PageMaxChars)
}

func newGenerator(cfg *config.Config, p schema.LLMProvider) *jobs.Generator {
	model := cfg.Server.Model
	if model == "" {
		model = cfg.Agent.Model
	}
	return jobs.NewGenerator(p, model, cfg.OutputDir())
}

func newToolServer(s *jobs.Scraper, pages *jobs.PageScraper, gen *jobs.Generator) *mcpserver.MCPServer {
	return server.New(server.Deps{Jobs: s, Pages: pages, Docs: gen}, Version)
}
