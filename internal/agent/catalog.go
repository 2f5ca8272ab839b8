package agent

import (
	"context"

	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/tools"
)

// ToolSource lists the tools advertised by the backend.
type ToolSource interface {
	ListTools(ctx context.Context) ([]schema.Tool, error)
}

// LocalTools returns the client-side tools for one turn.
type LocalTools func(hasResume bool) []schema.Tool

// DefaultLocalTools supplies export_docx.
func DefaultLocalTools(hasResume bool) []schema.Tool {
	return []schema.Tool{tools.NewExportDocxTool(hasResume)}
}

// Catalog composes a fresh registry every turn, since the backend's list
// may change across reconnects and local tools depend on turn context.
type Catalog struct {
	source ToolSource
	local  LocalTools
}

// NewCatalog returns a Catalog. source may be nil for a local-only catalog.
func NewCatalog(source ToolSource, local LocalTools) *Catalog {
	if local == nil {
		local = DefaultLocalTools
	}
	return &Catalog{source: source, local: local}
}

// Registry lists the backend tools and merges them with the local ones.
// Errors are *schema.TransportError or *tools.DuplicateToolError.
func (c *Catalog) Registry(ctx context.Context, hasResume bool) (*tools.Registry, error) {
	var remote []schema.Tool
	if c.source != nil {
		var err error
		remote, err = c.source.ListTools(ctx)
		if err != nil {
			return nil, schema.NewTransportError("list_tools", err)
		}
	}
	return tools.Build(remote, c.local(hasResume))
}
