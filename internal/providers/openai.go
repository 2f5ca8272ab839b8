package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"

	"github.com/jobpilot/jobpilot/internal/schema"
)

// OpenAIProvider talks to the OpenAI chat completions API, or to an Azure
// OpenAI deployment when constructed with NewAzureProvider.
type OpenAIProvider struct {
	client       openai.Client
	defaultModel string
	label        string
}

// NewOpenAIProvider returns a provider for an OpenAI-compatible endpoint.
// An empty baseURL uses the public API.
func NewOpenAIProvider(apiKey, baseURL, defaultModel string, extraHeaders map[string]string, opts ...option.RequestOption) *OpenAIProvider {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	for k, v := range extraHeaders {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}
	reqOpts = append(reqOpts, opts...)
	return &OpenAIProvider{
		client:       openai.NewClient(reqOpts...),
		defaultModel: defaultModel,
		label:        "openai",
	}
}

// NewAzureProvider returns a provider bound to an Azure OpenAI deployment.
// The deployment name is used as the model.
func NewAzureProvider(apiKey, endpoint, apiVersion, deployment string, opts ...option.RequestOption) *OpenAIProvider {
	reqOpts := []option.RequestOption{
		azure.WithEndpoint(endpoint, apiVersion),
		azure.WithAPIKey(apiKey),
	}
	reqOpts = append(reqOpts, opts...)
	return &OpenAIProvider{
		client:       openai.NewClient(reqOpts...),
		defaultModel: deployment,
		label:        "azure",
	}
}

func (p *OpenAIProvider) DefaultModel() string { return p.defaultModel }

// Chat implements schema.LLMProvider.
func (p *OpenAIProvider) Chat(ctx context.Context, messages schema.Messages, tools []map[string]any, opts schema.ChatOptions) (schema.LLMResponse, error) {
	model := opts.Model
	if model == "" {
		model = p.defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Messages: toOpenAIMessages(messages),
		Model:    openai.ChatModel(model),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if len(tools) > 0 {
		params.Tools = toOpenAITools(tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(toolChoice(opts))),
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return schema.LLMResponse{}, schema.NewTransportError("chat", fmt.Errorf("%s: %w", p.label, err))
	}
	if len(completion.Choices) == 0 {
		return schema.LLMResponse{}, schema.NewTransportError("chat", fmt.Errorf("%s: empty choices in response", p.label))
	}

	choice := completion.Choices[0]
	resp := schema.LLMResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: map[string]int{
			"input_tokens":  int(completion.Usage.PromptTokens),
			"output_tokens": int(completion.Usage.CompletionTokens),
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, schema.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return resp, nil
}

func toolChoice(opts schema.ChatOptions) schema.ToolChoice {
	if opts.ToolChoice == "" {
		return schema.ToolChoiceAuto
	}
	return opts.ToolChoice
}

func toOpenAIMessages(messages schema.Messages) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages.Messages))
	for _, m := range messages.Messages {
		switch m.Role {
		case schema.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				asst.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				args := tc.Arguments
				if strings.TrimSpace(args) == "" {
					args = "{}"
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: args,
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case schema.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// toOpenAITools converts wire-shape definitions into SDK tool params.
func toOpenAITools(tools []map[string]any) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		name, desc, params := functionParts(t)
		if name == "" {
			continue
		}
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        name,
			Description: openai.String(desc),
			Parameters:  openai.FunctionParameters(params),
		}))
	}
	return out
}

// functionParts unpacks {type:function, function:{name, description, parameters}}.
func functionParts(t map[string]any) (name, description string, parameters map[string]any) {
	fn, _ := t["function"].(map[string]any)
	if fn == nil {
		return "", "", nil
	}
	name, _ = fn["name"].(string)
	description, _ = fn["description"].(string)
	switch p := fn["parameters"].(type) {
	case map[string]any:
		parameters = p
	case json.RawMessage:
		_ = json.Unmarshal(p, &parameters)
	}
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return name, description, parameters
}
