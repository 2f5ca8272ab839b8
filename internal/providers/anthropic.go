package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jobpilot/jobpilot/internal/schema"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicProvider talks to the Anthropic Messages API.
type AnthropicProvider struct {
	client       anthropic.Client
	defaultModel string
}

// NewAnthropicProvider returns a provider for the Anthropic API. An empty
// baseURL uses the public endpoint.
func NewAnthropicProvider(apiKey, baseURL, defaultModel string, opts ...option.RequestOption) *AnthropicProvider {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	if defaultModel == "" {
		defaultModel = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	return &AnthropicProvider{
		client:       anthropic.NewClient(reqOpts...),
		defaultModel: defaultModel,
	}
}

func (p *AnthropicProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider.
func (p *AnthropicProvider) Chat(ctx context.Context, messages schema.Messages, tools []map[string]any, opts schema.ChatOptions) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	withTools := len(tools) > 0 && toolChoice(opts) != schema.ToolChoiceNone
	system, msgs := toAnthropicMessages(messages, withTools)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  msgs,
		MaxTokens: int64(maxTokens),
	}
	if len(system) > 0 {
		params.System = system
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if withTools {
		params.Tools = toAnthropicTools(tools)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return schema.LLMResponse{}, schema.NewTransportError("chat", fmt.Errorf("anthropic: %w", err))
	}

	var text strings.Builder
	resp := schema.LLMResponse{
		FinishReason: string(msg.StopReason),
		Usage: map[string]int{
			"input_tokens":  int(msg.Usage.InputTokens),
			"output_tokens": int(msg.Usage.OutputTokens),
		},
	}
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			args := string(b.Input)
			if strings.TrimSpace(args) == "" || args == "null" {
				args = "{}"
			}
			resp.ToolCalls = append(resp.ToolCalls, schema.ToolCallRequest{ID: b.ID, Name: b.Name, Arguments: args})
		}
	}
	resp.Content = text.String()
	return resp, nil
}

// toAnthropicMessages splits out the system prompt and converts the rest.
// Consecutive tool results are merged into one user message, as the API
// requires all results for a tool_use turn in the next user turn. Without
// tools the API rejects tool_use and tool_result blocks, so earlier calls
// and results are rendered as text.
func toAnthropicMessages(messages schema.Messages, withTools bool) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var out []anthropic.MessageParam
	var pending []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pending) > 0 {
			out = append(out, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, m := range messages.Messages {
		switch m.Role {
		case schema.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case schema.RoleTool:
			if !withTools {
				pending = append(pending, anthropic.NewTextBlock(fmt.Sprintf("[Result of %s]\n%s", m.ToolName, m.Content)))
				continue
			}
			isError := strings.HasPrefix(m.Content, "Error: ")
			pending = append(pending, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, isError))
		case schema.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				if !withTools {
					blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("[Called %s with %s]", tc.Name, tc.Arguments)))
					continue
				}
				var input any = map[string]any{}
				if strings.TrimSpace(tc.Arguments) != "" {
					input = json.RawMessage(tc.Arguments)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(" "))
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	flush()
	return system, out
}

func toAnthropicTools(tools []map[string]any) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		name, desc, params := functionParts(t)
		if name == "" {
			continue
		}
		schemaParam := anthropic.ToolInputSchemaParam{Properties: params["properties"]}
		if req, ok := params["required"]; ok {
			schemaParam.Required = toStrings(req)
		}
		u := anthropic.ToolUnionParamOfTool(schemaParam, name)
		if desc != "" {
			u.OfTool.Description = anthropic.String(desc)
		}
		out = append(out, u)
	}
	return out
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, x := range s {
			if str, ok := x.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
