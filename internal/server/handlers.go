package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jobpilot/jobpilot/internal/jobs"
)

type handlers struct {
	deps Deps
}

func (h *handlers) search(ctx context.Context, q jobs.Query) ([]jobs.Listing, *mcp.CallToolResult) {
	listings, err := h.deps.Jobs.Search(ctx, q)
	if err != nil {
		slog.Warn("Job search failed", "term", q.Term, "err", err)
		return nil, mcp.NewToolResultError(fmt.Sprintf("Error searching jobs: %v", err))
	}
	return listings, nil
}

func (h *handlers) searchJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := req.RequireString("search_term")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listings, fail := h.search(ctx, jobs.Query{
		Term:     term,
		Location: req.GetString("location", "remote"),
		Limit:    req.GetInt("results_wanted", 10),
	})
	if fail != nil {
		return fail, nil
	}
	return mcp.NewToolResultText(jobs.FormatListings(listings)), nil
}

func (h *handlers) jobsByCompany(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	company, err := req.RequireString("company")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listings, fail := h.search(ctx, jobs.Query{Term: company, Limit: req.GetInt("limit", 10)})
	if fail != nil {
		return fail, nil
	}
	matched := jobs.FilterCompany(listings, company)
	if len(matched) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No current listings found for %s.", company)), nil
	}
	return mcp.NewToolResultText(jobs.FormatListings(matched)), nil
}

func (h *handlers) topCompanies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := req.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listings, fail := h.search(ctx, jobs.Query{Term: role, Location: req.GetString("location", ""), Limit: req.GetInt("limit", 50)})
	if fail != nil {
		return fail, nil
	}
	return mcp.NewToolResultText(jobs.FormatTopCompanies(jobs.TopCompanies(listings, 10))), nil
}

func (h *handlers) salaryTrends(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := req.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listings, fail := h.search(ctx, jobs.Query{Term: role, Location: req.GetString("location", ""), Limit: req.GetInt("limit", 100)})
	if fail != nil {
		return fail, nil
	}
	stats, ok := jobs.SummarizeSalaries(listings)
	if !ok {
		return mcp.NewToolResultText(jobs.NoSalaryData), nil
	}
	return mcp.NewToolResultText(stats.String()), nil
}

func (h *handlers) remoteJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := req.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	listings, fail := h.search(ctx, jobs.Query{Term: role + " remote", Location: "remote", Limit: req.GetInt("limit", 10)})
	if fail != nil {
		return fail, nil
	}
	return mcp.NewToolResultText(jobs.FormatListings(listings)), nil
}

// scrapeJob reports failures as ordinary text so the model can tell the
// user what went wrong with the link.
func (h *handlers) scrapeJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := h.deps.Pages.Scrape(ctx, url)
	if err != nil {
		slog.Error("Error scraping URL", "url", url, "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("Error scraping URL: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (h *handlers) document(kind jobs.DocumentKind) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resume, err := req.RequireString("resume_text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jd, err := req.RequireString("job_description")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, err := h.deps.Docs.Generate(ctx, kind, resume, jd)
		if err != nil {
			slog.Error("Document generation failed", "kind", kind, "err", err)
			return mcp.NewToolResultError(fmt.Sprintf("Error generating %s: %v", kind, err)), nil
		}
		return mcp.NewToolResultText(payload.Encode()), nil
	}
}
