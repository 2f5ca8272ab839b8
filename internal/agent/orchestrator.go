package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobpilot/jobpilot/internal/artifact"
	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/session"
	"github.com/jobpilot/jobpilot/internal/shared/llmutils"
	"github.com/jobpilot/jobpilot/internal/tools"
)

const emptyReply = "I've completed processing but have no response to give."

// Settings tune the orchestrator.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64

	// MaxToolRounds bounds tool-call rounds per turn. With 1 the follow-up
	// completion is tool-free and any tool calls in it are ignored.
	MaxToolRounds int

	// HistoryWindow is the number of stored messages replayed per turn.
	HistoryWindow int
}

// DefaultSettings returns single-round settings.
func DefaultSettings() Settings {
	return Settings{MaxTokens: 4096, Temperature: 0.2, MaxToolRounds: 1, HistoryWindow: 40}
}

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	Text        string
	ToolResults []tools.ToolResult
	Artifacts   []*artifact.Artifact

	// Turns are the messages this turn appended: user, assistant tool-call
	// turns, tool turns and the final assistant reply.
	Turns []schema.Message
}

// Orchestrator drives the LLM exchange for one conversation turn at a time.
// It holds no per-conversation state; history and resume travel in the
// session passed to RunTurn.
type Orchestrator struct {
	provider  schema.LLMProvider
	catalog   *Catalog
	invoker   *tools.Invoker
	prompt    *PromptBuilder
	artifacts *artifact.Store
	settings  Settings
}

func NewOrchestrator(provider schema.LLMProvider, catalog *Catalog, artifacts *artifact.Store, settings Settings) *Orchestrator {
	if settings.MaxToolRounds <= 0 {
		settings.MaxToolRounds = 1
	}
	if artifacts == nil {
		artifacts = artifact.NewStore()
	}
	return &Orchestrator{
		provider:  provider,
		catalog:   catalog,
		invoker:   tools.NewInvoker(),
		prompt:    NewPromptBuilder(),
		artifacts: artifacts,
		settings:  settings,
	}
}

// Artifacts returns the session-keyed store of generated documents.
func (o *Orchestrator) Artifacts() *artifact.Store { return o.artifacts }

// RunTurn runs one turn against sess and commits the new messages to it.
// On error the session is left unchanged.
func (o *Orchestrator) RunTurn(ctx context.Context, sess *session.Session, userText string) (*TurnResult, error) {
	tc := tools.TurnCtx(ctx)
	tc.SessionKey = sess.Key
	tc.HasResume = sess.HasResume()
	ctx = tools.WithTurn(ctx, tc)

	res, err := o.Run(ctx, sess.History(o.settings.HistoryWindow), userText, sess.Resume())
	if err != nil {
		return nil, err
	}
	sess.Commit(res.Turns...)

	for _, a := range res.Artifacts {
		o.artifacts.Put(sess.Key, a)
	}
	return res, nil
}

// Run executes one turn over history without touching any session.
func (o *Orchestrator) Run(ctx context.Context, history []schema.Message, userText, resume string) (*TurnResult, error) {
	sessionKey := tools.TurnCtx(ctx).SessionKey

	reg, err := o.catalog.Registry(ctx, resume != "")
	if err != nil {
		return nil, err
	}

	system := o.prompt.Build(resume, reg.Descriptors())
	conv := o.prompt.Messages(system, history, userText)
	start := conv.Len() - 1

	defs := reg.Definitions()
	opts := schema.NewChatOptions(o.settings.Model, o.settings.MaxTokens, o.settings.Temperature)

	resp, err := o.provider.Chat(ctx, conv, defs, opts)
	if err != nil {
		return nil, schema.NewTransportError("chat", err)
	}

	out := &TurnResult{}
	for round := 1; resp.HasToolCalls(); round++ {
		if round > o.settings.MaxToolRounds {
			slog.Warn("Ignoring tool calls beyond the round limit", "session", sessionKey, "calls", len(resp.ToolCalls))
			break
		}
		calls := withCallIDs(resp.ToolCalls, round)

		toolCalls := make([]schema.ToolCall, len(calls))
		for i, c := range calls {
			toolCalls[i] = c.ToToolCall()
		}
		conv.AddAssistant(resp.Content, toolCalls)

		results, err := o.invoker.InvokeAll(ctx, reg, calls)
		if err != nil {
			slog.Error("Tool backend unreachable", "session", sessionKey, "err", err)
			return nil, err
		}
		for _, r := range results {
			conv.AddToolResult(r.CallID, r.ToolName, r.HistoryText())
		}
		out.ToolResults = append(out.ToolResults, results...)

		next := opts
		var nextDefs []map[string]any
		if round < o.settings.MaxToolRounds {
			nextDefs = defs
		} else {
			next.ToolChoice = schema.ToolChoiceNone
		}
		resp, err = o.provider.Chat(ctx, conv, nextDefs, next)
		if err != nil {
			return nil, schema.NewTransportError("chat", err)
		}
	}

	out.Text = llmutils.StringOrDefault(llmutils.CleanReply(resp.Content), emptyReply)
	conv.AddAssistant(out.Text, nil)
	out.Turns = conv.Since(start)
	out.Artifacts = extractArtifacts(sessionKey, out.ToolResults)

	slog.Info("Turn complete", "session", sessionKey, "tool_calls", len(out.ToolResults), "artifacts", len(out.Artifacts), "length", len(out.Text))
	return out, nil
}

// withCallIDs fills in correlation ids some providers omit.
func withCallIDs(calls []schema.ToolCallRequest, round int) []schema.ToolCallRequest {
	out := make([]schema.ToolCallRequest, len(calls))
	for i, c := range calls {
		if c.ID == "" {
			c.ID = fmt.Sprintf("call_%d_%d", round, i+1)
		}
		out[i] = c
	}
	return out
}

func extractArtifacts(sessionKey string, results []tools.ToolResult) []*artifact.Artifact {
	var out []*artifact.Artifact
	for _, r := range results {
		a, err := artifact.Extract(r)
		if err != nil {
			slog.Warn("Artifact unavailable", "session", sessionKey, "tool", r.ToolName, "call_id", r.CallID, "err", err)
		}
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}
