// Package config defines the configuration schema for jobpilot.
//
// JSON and YAML keys use camelCase. Every section has a Default*
// constructor; Load starts from DefaultConfig and overlays the file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jobpilot/jobpilot/internal/config/agent"
	"github.com/jobpilot/jobpilot/internal/config/channel"
	"github.com/jobpilot/jobpilot/internal/config/gateway"
	"github.com/jobpilot/jobpilot/internal/config/provider"
	"github.com/jobpilot/jobpilot/internal/config/tool"
)

// Config is the root configuration object, loaded from ~/.jobpilot/config.json.
type Config struct {
	Agent     agent.AgentConfig        `json:"agent" yaml:"agent"`
	Providers provider.ProvidersConfig `json:"providers" yaml:"providers"`
	Backend   tool.BackendConfig       `json:"backend" yaml:"backend"`
	Server    tool.ServerConfig        `json:"server" yaml:"server"`
	Channels  channel.ChannelsConfig   `json:"channels" yaml:"channels"`
	Web       gateway.WebConfig        `json:"web" yaml:"web"`
	Alerts    gateway.AlertsConfig     `json:"alerts" yaml:"alerts"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Agent:     agent.DefaultAgentConfig(),
		Providers: provider.DefaultProvidersConfig(),
		Backend:   tool.DefaultBackendConfig(),
		Server:    tool.DefaultServerConfig(),
		Channels:  channel.DefaultChannelsConfig(),
		Web:       gateway.DefaultWebConfig(),
		Alerts:    gateway.DefaultAlertsConfig(),
	}
}

// WorkspacePath returns the expanded path to the agent workspace.
func (c *Config) WorkspacePath() string {
	ws := c.Agent.Workspace
	if ws == "" {
		ws = filepath.Join(DataDir(), "workspace")
	}
	return ExpandHome(ws)
}

// OutputDir returns the expanded directory generated documents are written to.
func (c *Config) OutputDir() string {
	dir := c.Server.OutputDir
	if dir == "" {
		dir = filepath.Join(DataDir(), "output")
	}
	return ExpandHome(dir)
}

// AlertsPath returns the expanded path of the alerts store.
func (c *Config) AlertsPath() string {
	p := c.Alerts.StorePath
	if p == "" {
		p = filepath.Join(DataDir(), "alerts", "alerts.json")
	}
	return ExpandHome(p)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
