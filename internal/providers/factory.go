// Package providers holds the LLM backends implementing schema.LLMProvider.
package providers

import (
	"fmt"
	"strings"

	"github.com/jobpilot/jobpilot/internal/schema"
)

// DefaultOpenAIModel is used when neither config nor caller names a model.
const DefaultOpenAIModel = "gpt-4o"

// Params are the raw values needed to construct any schema.LLMProvider.
// Extracted from config by the caller to avoid an import cycle.
type Params struct {
	ProviderName string // "openai", "azure", "anthropic"
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string

	// Azure only.
	Endpoint   string
	APIVersion string
	Deployment string
}

// New creates the provider named by p.ProviderName. An empty name picks
// Azure when an endpoint is set, otherwise OpenAI.
func New(p Params) (schema.LLMProvider, error) {
	name := strings.ToLower(strings.TrimSpace(p.ProviderName))
	if name == "" {
		name = "openai"
		if p.Endpoint != "" {
			name = "azure"
		}
	}

	switch name {
	case "openai":
		if p.APIKey == "" {
			return nil, fmt.Errorf("openai: no API key configured")
		}
		model := p.DefaultModel
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAIProvider(p.APIKey, p.APIBase, model, p.ExtraHeaders), nil
	case "azure", "azure_openai":
		if p.Deployment == "" {
			p.Deployment = DefaultOpenAIModel
		}
		if p.APIKey == "" || p.Endpoint == "" {
			return nil, fmt.Errorf("azure: API key and endpoint are required")
		}
		return NewAzureProvider(p.APIKey, p.Endpoint, p.APIVersion, p.Deployment), nil
	case "anthropic":
		if p.APIKey == "" {
			return nil, fmt.Errorf("anthropic: no API key configured")
		}
		return NewAnthropicProvider(p.APIKey, p.APIBase, p.DefaultModel), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.ProviderName)
	}
}
