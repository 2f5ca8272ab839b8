// Package server exposes the job-search tools over the Model Context
// Protocol, on stdio or SSE.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/jobpilot/jobpilot/internal/jobs"
	"github.com/jobpilot/jobpilot/internal/tools"
)

const Name = "Job Assistant"

// PageSource fetches the text of a job posting.
type PageSource interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// DocumentWriter drafts application documents.
type DocumentWriter interface {
	Generate(ctx context.Context, kind jobs.DocumentKind, resumeText, jobDescription string) (tools.Payload, error)
}

// Deps are the backends the tool handlers call.
type Deps struct {
	Jobs  jobs.Source
	Pages PageSource
	Docs  DocumentWriter
}

// New builds an MCP server with every job tool registered.
func New(d Deps, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(Name, version, mcpserver.WithToolCapabilities(false), mcpserver.WithRecovery())
	h := &handlers{deps: d}

	s.AddTool(mcp.NewTool(string(tools.ToolSearchJobs),
		mcp.WithDescription("Search for jobs on various platforms (Indeed, RemoteOK, WeWorkRemotely). Returns a numbered list of job listings."),
		mcp.WithString("search_term", mcp.Required(), mcp.Description("Job title or keywords, e.g. \"data scientist\"")),
		mcp.WithString("location", mcp.Description("City, region or \"remote\""), mcp.DefaultString("remote")),
		mcp.WithNumber("results_wanted", mcp.Description("Maximum number of listings"), mcp.DefaultNumber(10)),
	), h.searchJobs)

	s.AddTool(mcp.NewTool(string(tools.ToolJobsByCompany),
		mcp.WithDescription("Search for job listings posted by a specific company."),
		mcp.WithString("company", mcp.Required(), mcp.Description("Company name")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of listings"), mcp.DefaultNumber(10)),
	), h.jobsByCompany)

	s.AddTool(mcp.NewTool(string(tools.ToolTopCompanies),
		mcp.WithDescription("Find which companies post the most listings for a specific role. Returns the top 10 companies by posting count."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Job title")),
		mcp.WithString("location", mcp.Description("City, region or \"remote\"")),
		mcp.WithNumber("limit", mcp.Description("Number of listings to sample"), mcp.DefaultNumber(50)),
	), h.topCompanies)

	s.AddTool(mcp.NewTool(string(tools.ToolSalaryTrends),
		mcp.WithDescription("Scrape salary data for a role and summarize min, max, and average."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Job title")),
		mcp.WithString("location", mcp.Description("City, region or \"remote\"")),
		mcp.WithNumber("limit", mcp.Description("Number of listings to sample"), mcp.DefaultNumber(100)),
	), h.salaryTrends)

	s.AddTool(mcp.NewTool(string(tools.ToolRemoteJobs),
		mcp.WithDescription("Quickly find remote jobs for a given role."),
		mcp.WithString("role", mcp.Required(), mcp.Description("Job title")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of listings"), mcp.DefaultNumber(10)),
	), h.remoteJobs)

	s.AddTool(mcp.NewTool(string(tools.ToolScrapeJob),
		mcp.WithDescription("Scrape the job description from a URL.\nUseful when the user provides a link to a job posting (e.g. Indeed, LinkedIn)."),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL of the job posting")),
	), h.scrapeJob)

	s.AddTool(mcp.NewTool(string(tools.ToolTailorResume),
		mcp.WithDescription("Tailor a resume to match a specific job description.\nReturns the tailored resume as Markdown plus a downloadable .docx file."),
		mcp.WithString("resume_text", mcp.Required(), mcp.Description("The candidate's current resume")),
		mcp.WithString("job_description", mcp.Required(), mcp.Description("The target job description")),
	), h.document(jobs.KindResume))

	s.AddTool(mcp.NewTool(string(tools.ToolGenerateCoverLetter),
		mcp.WithDescription("Generate a cover letter based on a resume and job description.\nReturns the letter as Markdown plus a downloadable .docx file."),
		mcp.WithString("resume_text", mcp.Required(), mcp.Description("The candidate's resume")),
		mcp.WithString("job_description", mcp.Required(), mcp.Description("The target job description")),
	), h.document(jobs.KindCoverLetter))

	return s
}

// ServeStdio serves s on stdin/stdout until ctx is done or stdin closes.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer) error {
	slog.Info("MCP server listening on stdio", "name", Name)
	return mcpserver.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

// ServeSSE serves s over HTTP server-sent events on addr until ctx is done.
func ServeSSE(ctx context.Context, s *mcpserver.MCPServer, addr, baseURL string) error {
	var opts []mcpserver.SSEOption
	if baseURL != "" {
		opts = append(opts, mcpserver.WithBaseURL(baseURL))
	}
	sse := mcpserver.NewSSEServer(s, opts...)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening", "transport", "sse", "addr", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sse server: %w", err)
	case <-ctx.Done():
		if err := sse.Shutdown(context.Background()); err != nil {
			slog.Warn("SSE shutdown", "err", err)
		}
		return nil
	}
}
