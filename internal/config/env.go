package config

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given .env files (default
// ".env") into the process environment. Variables already set win; missing
// files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("Loaded environment file", "path", f)
		}
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays credentials and endpoints from the environment onto cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&cfg.Providers.OpenAI.APIBase, "OPENAI_BASE_URL")
	set(&cfg.Providers.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	set(&cfg.Providers.Azure.APIKey, "AZURE_OPENAI_API_KEY")
	set(&cfg.Providers.Azure.Endpoint, "AZURE_OPENAI_ENDPOINT")
	set(&cfg.Providers.Azure.APIVersion, "AZURE_OPENAI_API_VERSION")
	set(&cfg.Providers.Azure.Deployment, "AZURE_OPENAI_DEPLOYMENT_NAME")
	set(&cfg.Backend.URL, "MCP_SERVER_URL")

	set(&cfg.Channels.Slack.BotToken, "SLACK_BOT_TOKEN")
	set(&cfg.Channels.Slack.AppToken, "SLACK_APP_TOKEN")
	if cfg.Channels.Slack.BotToken != "" && cfg.Channels.Slack.AppToken != "" {
		if _, ok := lookup("SLACK_BOT_TOKEN"); ok {
			cfg.Channels.Slack.Enabled = true
		}
	}
	set(&cfg.Channels.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	if _, ok := lookup("TELEGRAM_BOT_TOKEN"); ok && cfg.Channels.Telegram.Token != "" {
		cfg.Channels.Telegram.Enabled = true
	}
}
