package tool

// ScraperConfig tunes job board scraping.
type ScraperConfig struct {
	Boards            []string `json:"boards" yaml:"boards"`
	RequestIntervalMs int      `json:"requestIntervalMs" yaml:"requestIntervalMs"`
	Burst             int      `json:"burst" yaml:"burst"`
	TimeoutSeconds    int      `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	PageMaxChars      int      `json:"pageMaxChars" yaml:"pageMaxChars"`
}

// ServerConfig configures the MCP tool server.
type ServerConfig struct {
	Transport string `json:"transport" yaml:"transport"` // "stdio" or "sse"
	Addr      string `json:"addr" yaml:"addr"`
	BaseURL   string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	OutputDir string `json:"outputDir" yaml:"outputDir"`

	// Model used for document generation; empty uses the provider default.
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Scraper ScraperConfig `json:"scraper" yaml:"scraper"`
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Transport: "stdio",
		Addr:      ":8080",
		OutputDir: "~/.jobpilot/output",
		Scraper: ScraperConfig{
			Boards:            []string{"indeed", "remoteok", "weworkremotely"},
			RequestIntervalMs: 2000,
			Burst:             2,
			TimeoutSeconds:    20,
			PageMaxChars:      10000,
		},
	}
}
