package tools

import (
	"context"
	"encoding/json"

	"github.com/jobpilot/jobpilot/internal/schema"
)

// fakeTool is a configurable in-memory tool for tests.
type fakeTool struct {
	name     string
	params   string
	artifact bool
	reply    schema.Content
	err      error
	calls    []map[string]any
	exec     func(ctx context.Context, params map[string]any) (schema.Content, error)
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name }
func (f *fakeTool) Parameters() json.RawMessage {
	if f.params == "" {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return json.RawMessage(f.params)
}
func (f *fakeTool) ProducesArtifact() bool { return f.artifact }

func (f *fakeTool) Execute(ctx context.Context, params map[string]any) (schema.Content, error) {
	f.calls = append(f.calls, params)
	if f.exec != nil {
		return f.exec(ctx, params)
	}
	return f.reply, f.err
}

func textTool(name, reply string) *fakeTool {
	return &fakeTool{name: name, reply: schema.TextContent(reply)}
}
