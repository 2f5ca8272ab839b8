package mcp

import (
	"context"
	"encoding/json"

	"github.com/jobpilot/jobpilot/internal/schema"
)

// remoteTool is one tool advertised by the backend.
type remoteTool struct {
	backend     *Backend
	name        string
	description string
	parameters  json.RawMessage
	artifact    bool
}

func (t *remoteTool) Name() string                { return t.name }
func (t *remoteTool) Description() string         { return t.description }
func (t *remoteTool) Parameters() json.RawMessage { return t.parameters }
func (t *remoteTool) ProducesArtifact() bool      { return t.artifact }

func (t *remoteTool) Execute(ctx context.Context, params map[string]any) (schema.Content, error) {
	return t.backend.CallTool(ctx, t.name, params)
}

var (
	_ schema.Tool             = (*remoteTool)(nil)
	_ schema.ArtifactProducer = (*remoteTool)(nil)
)
