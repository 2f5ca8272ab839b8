package alerts

import (
	"context"

	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/tools"
)

// ToolCaller invokes a backend tool by name.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (schema.Content, error)
}

// BackendSearcher runs alert searches through the job backend's search_jobs tool.
type BackendSearcher struct {
	tools ToolCaller
}

func NewBackendSearcher(c ToolCaller) *BackendSearcher {
	return &BackendSearcher{tools: c}
}

func (b *BackendSearcher) SearchJobs(ctx context.Context, q Search) (string, error) {
	args := map[string]any{"search_term": q.Term}
	if q.Location != "" {
		args["location"] = q.Location
	}
	if q.Limit > 0 {
		args["results_wanted"] = q.Limit
	}
	content, err := b.tools.CallTool(ctx, string(tools.ToolSearchJobs), args)
	if err != nil {
		return "", err
	}
	return content.String(), nil
}
