package gateway

// WebConfig holds dashboard server settings.
type WebConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	AllowedOrigins []string `json:"allowedOrigins" yaml:"allowedOrigins"`
}

func DefaultWebConfig() WebConfig {
	return WebConfig{Addr: "127.0.0.1:18790", AllowedOrigins: []string{}}
}

// AlertsConfig configures saved-search alerts run by the gateway.
type AlertsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	StorePath string `json:"storePath,omitempty" yaml:"storePath,omitempty"`
}

func DefaultAlertsConfig() AlertsConfig {
	return AlertsConfig{Enabled: true}
}
