// Package dependency wires core jobpilot services using go.uber.org/dig.
package dependency

import (
	"fmt"
	"time"

	"go.uber.org/dig"

	"github.com/jobpilot/jobpilot/internal/agent"
	"github.com/jobpilot/jobpilot/internal/alerts"
	"github.com/jobpilot/jobpilot/internal/artifact"
	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/channels"
	"github.com/jobpilot/jobpilot/internal/config"
	"github.com/jobpilot/jobpilot/internal/mcp"
	"github.com/jobpilot/jobpilot/internal/providers"
	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/session"
	"github.com/jobpilot/jobpilot/internal/tools"
	"github.com/jobpilot/jobpilot/internal/web"
)

// ArtifactTTL is how long an undownloaded document stays in memory.
const ArtifactTTL = time.Hour

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	backend   *mcp.Backend
	artifacts *artifact.Store
	loop      *agent.AgentLoop
	alertSvc  *alerts.Service
	channels  *channels.Manager
	web       *web.Server
}

func (c *Container) Backend() *mcp.Backend { return c.backend }
func (c *Container) Artifacts() *artifact.Store { return c.artifacts }
func (c *Container) AgentLoop() *agent.AgentLoop { return c.loop }
func (c *Container) Alerts() *alerts.Service { return c.alertSvc }
func (c *Container) Channels() *channels.Manager { return c.channels }
func (c *Container) Web() *web.Server { return c.web }

// Close releases the backend connection.
func (c *Container) Close() error { return c.backend.Close() }

// LLMModel is a named string type so dig can distinguish it from plain
// strings when injecting the effective model name.
type LLMModel string

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	for _, ctor := range []any{
		func() *config.Config { return cfg },
		newProvider,
		resolveLLMModel,
		newMessageBus,
		newSessionManager,
		newArtifactStore,
		newBackend,
		newAlertService,
		newCatalog,
		newOrchestrator,
		newAgentLoop,
		newChannelManager,
		newWebServer,
	} {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		backend *mcp.Backend,
		artifacts *artifact.Store,
		loop *agent.AgentLoop,
		alertSvc *alerts.Service,
		channelMgr *channels.Manager,
		webSrv *web.Server,
	) {
		result = &Container{
			backend:   backend,
			artifacts: artifacts,
			loop:      loop,
			alertSvc:  alertSvc,
			channels:  channelMgr,
			web:       webSrv,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("wire services: %w", dig.RootCause(err))
	}
	return result, nil
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	p := cfg.Providers
	name := p.Active()
	if name == "" {
		return nil, fmt.Errorf("no LLM provider configured: set OPENAI_API_KEY, AZURE_OPENAI_* or ANTHROPIC_API_KEY, or edit %s", config.ConfigPath())
	}
	params := providers.Params{ProviderName: name, DefaultModel: cfg.Agent.Model}
	switch name {
	case "openai":
		params.APIKey = p.OpenAI.APIKey
		params.APIBase = p.OpenAI.APIBase
		params.ExtraHeaders = p.OpenAI.ExtraHeaders
	case "azure":
		params.APIKey = p.Azure.APIKey
		params.Endpoint = p.Azure.Endpoint
		params.APIVersion = p.Azure.APIVersion
		params.Deployment = p.Azure.Deployment
	case "anthropic":
		params.APIKey = p.Anthropic.APIKey
		params.APIBase = p.Anthropic.APIBase
		params.ExtraHeaders = p.Anthropic.ExtraHeaders
	}
	return providers.New(params)
}

func resolveLLMModel(cfg *config.Config, p schema.LLMProvider) LLMModel {
	m := cfg.Agent.Model
	if m == "" {
		m = p.DefaultModel()
	}
	return LLMModel(m)
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newSessionManager(cfg *config.Config) (*session.Manager, error) {
	return session.NewManager(cfg.WorkspacePath())
}

func newArtifactStore() *artifact.Store {
	return artifact.NewStore()
}

// newBackend connects to the configured tool server, or embeds one
// in-process when neither a URL nor a command is configured.
func newBackend(cfg *config.Config, p schema.LLMProvider) (*mcp.Backend, error) {
	b := cfg.Backend
	if b.URL != "" || b.Command != "" {
		return mcp.NewBackend(mcp.Config{
			Command:       b.Command,
			Args:          b.Args,
			Env:           b.Env,
			URL:           b.URL,
			Headers:       b.Headers,
			ArtifactTools: b.ArtifactTools,
		}), nil
	}
	srv, err := NewToolServer(cfg, p)
	if err != nil {
		return nil, err
	}
	return mcp.NewEmbeddedBackend(srv, b.ArtifactTools), nil
}

func newAlertService(cfg *config.Config, backend *mcp.Backend, b *bus.MessageBus) *alerts.Service {
	return alerts.NewService(cfg.AlertsPath(), alerts.NewBackendSearcher(backend), b)
}

func newCatalog(backend *mcp.Backend, alertSvc *alerts.Service) *agent.Catalog {
	return agent.NewCatalog(backend, func(hasResume bool) []schema.Tool {
		return append(agent.DefaultLocalTools(hasResume), tools.NewJobAlertsTool(alertSvc))
	})
}

func newOrchestrator(cfg *config.Config, p schema.LLMProvider, m LLMModel, catalog *agent.Catalog, store *artifact.Store) *agent.Orchestrator {
	return agent.NewOrchestrator(p, catalog, store, agent.Settings{
		Model:         string(m),
		MaxTokens:     cfg.Agent.MaxTokens,
		Temperature:   cfg.Agent.Temperature,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		HistoryWindow: cfg.Agent.HistoryWindow,
	})
}

func newAgentLoop(b *bus.MessageBus, sessions *session.Manager, orch *agent.Orchestrator) *agent.AgentLoop {
	return agent.NewAgentLoop(b, sessions, orch)
}

func newChannelManager(cfg *config.Config, b *bus.MessageBus) *channels.Manager {
	return channels.NewManager(cfg.Channels, b)
}

func newWebServer(cfg *config.Config, loop *agent.AgentLoop, sessions *session.Manager, store *artifact.Store) *web.Server {
	return web.New(cfg.Web, loop, sessions, store)
}
