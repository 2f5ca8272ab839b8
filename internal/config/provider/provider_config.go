package provider

const (
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderAnthropic = "anthropic"
)

const DefaultAzureAPIVersion = "2024-02-15-preview"

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey" yaml:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty" yaml:"apiBase,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty" yaml:"extraHeaders,omitempty"`
}

// AzureConfig holds Azure OpenAI credentials and the deployment to call.
type AzureConfig struct {
	APIKey     string `json:"apiKey" yaml:"apiKey"`
	Endpoint   string `json:"endpoint" yaml:"endpoint"`
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`
	Deployment string `json:"deployment" yaml:"deployment"`
}

// ProvidersConfig holds credentials for all supported LLM providers.
// Default names the provider to use; empty picks the first configured one
// in the order azure, openai, anthropic.
type ProvidersConfig struct {
	Default   string         `json:"default,omitempty" yaml:"default,omitempty"`
	OpenAI    ProviderConfig `json:"openai" yaml:"openai"`
	Azure     AzureConfig    `json:"azure" yaml:"azure"`
	Anthropic ProviderConfig `json:"anthropic" yaml:"anthropic"`
}

func DefaultProvidersConfig() ProvidersConfig {
	return ProvidersConfig{Azure: AzureConfig{APIVersion: DefaultAzureAPIVersion}}
}

// Active returns the name of the provider to use, or "" if none has
// credentials.
func (p *ProvidersConfig) Active() string {
	if p.Default != "" {
		return p.Default
	}
	switch {
	case p.Azure.APIKey != "" && p.Azure.Endpoint != "":
		return ProviderAzure
	case p.OpenAI.APIKey != "":
		return ProviderOpenAI
	case p.Anthropic.APIKey != "":
		return ProviderAnthropic
	}
	return ""
}
