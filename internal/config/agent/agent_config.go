package agent

// AgentConfig tunes the conversation orchestrator.
type AgentConfig struct {
	Workspace   string  `json:"workspace" yaml:"workspace"`
	Model       string  `json:"model" yaml:"model"`
	MaxTokens   int     `json:"maxTokens" yaml:"maxTokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxToolRounds bounds tool-call rounds per turn; 1 keeps the follow-up
	// completion tool-free.
	MaxToolRounds int `json:"maxToolRounds" yaml:"maxToolRounds"`
	HistoryWindow int `json:"historyWindow" yaml:"historyWindow"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Workspace:     "~/.jobpilot/workspace",
		MaxTokens:     4096,
		Temperature:   0.2,
		MaxToolRounds: 1,
		HistoryWindow: 40,
	}
}
