package agent

import (
	"context"
	"encoding/json"

	"github.com/jobpilot/jobpilot/internal/schema"
)

type chatCall struct {
	messages schema.Messages
	tools    []map[string]any
	opts     schema.ChatOptions
}

// scriptedProvider replays canned responses in order.
type scriptedProvider struct {
	replies []schema.LLMResponse
	errs    []error
	calls   []chatCall
}

func (p *scriptedProvider) Chat(_ context.Context, msgs schema.Messages, tools []map[string]any, opts schema.ChatOptions) (schema.LLMResponse, error) {
	i := len(p.calls)
	p.calls = append(p.calls, chatCall{messages: msgs.Clone(), tools: tools, opts: opts})
	if i < len(p.errs) && p.errs[i] != nil {
		return schema.LLMResponse{}, p.errs[i]
	}
	if i >= len(p.replies) {
		return schema.LLMResponse{Content: "done"}, nil
	}
	return p.replies[i], nil
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

type stubTool struct {
	name     string
	params   string
	artifact bool
	reply    func(args map[string]any) (string, error)
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub " + t.name }
func (t *stubTool) Parameters() json.RawMessage {
	if t.params == "" {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	return json.RawMessage(t.params)
}
func (t *stubTool) ProducesArtifact() bool { return t.artifact }
func (t *stubTool) Execute(_ context.Context, args map[string]any) (schema.Content, error) {
	text, err := t.reply(args)
	return schema.TextContent(text), err
}

type staticSource struct {
	tools []schema.Tool
	err   error
	calls int
}

func (s *staticSource) ListTools(context.Context) ([]schema.Tool, error) {
	s.calls++
	return s.tools, s.err
}
