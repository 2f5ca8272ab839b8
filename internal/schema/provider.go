package schema

import "context"

// ToolChoice controls whether the model may select tools.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// ChatOptions configures a single LLM chat request.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	ToolChoice  ToolChoice
}

func NewChatOptions(model string, maxTokens int, temperature float64) ChatOptions {
	return ChatOptions{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		ToolChoice:  ToolChoiceAuto,
	}
}

// ToolCallRequest is one model-issued tool invocation. Arguments is the raw
// JSON-encoded string from the response; it is untrusted until decoded.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

// ToToolCall converts the request into the history representation.
func (r ToolCallRequest) ToToolCall() ToolCall {
	return ToolCall{ID: r.ID, Name: r.Name, Arguments: r.Arguments}
}

// LLMResponse is the normalised response from any LLM provider.
type LLMResponse struct {
	Content      string
	ToolCalls    []ToolCallRequest
	FinishReason string
	Usage        map[string]int // "input_tokens", "output_tokens"
}

// HasToolCalls reports whether the response contains at least one tool call.
func (r LLMResponse) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// LLMProvider is the interface every LLM backend must satisfy.
//
// tools holds function definitions in the OpenAI wire shape; a nil slice
// requests a tool-free completion. Implementations wrap network and auth
// failures in *TransportError.
type LLMProvider interface {
	Chat(ctx context.Context, messages Messages, tools []map[string]any, opts ChatOptions) (LLMResponse, error)
	DefaultModel() string
}
