package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/session"
	"github.com/jobpilot/jobpilot/internal/shared/llmutils"
	"github.com/jobpilot/jobpilot/internal/tools"
)

const (
	resumeStoredReply = "Resume received and processed! I've stored it for this session."
	attachmentComment = "Here is your downloadable document."
	resumePrefix      = "resume:"
)

const helpText = `jobpilot commands:
/new    - Start a new conversation (your resume stays on file)
/resume - Show whether a resume is on file
/help   - Show available commands

Upload a .txt, .md or .docx file, or send a message starting with "resume:", to set your resume.`

// AgentLoop is the core processing engine.
//
// It reads InboundMessages from the bus, runs one orchestrator turn per
// message and publishes OutboundMessages. Each inbound message is handled in
// its own goroutine; messages for the same session run one at a time.
type AgentLoop struct {
	bus      bus.Bus
	sessions *session.Manager
	orch     *Orchestrator

	locks sync.Map // session key -> *sync.Mutex
}

func NewAgentLoop(b bus.Bus, sessions *session.Manager, orch *Orchestrator) *AgentLoop {
	return &AgentLoop{bus: b, sessions: sessions, orch: orch}
}

// Orchestrator returns the orchestrator the loop drives.
func (loop *AgentLoop) Orchestrator() *Orchestrator { return loop.orch }

// Run reads from the inbound bus and processes each message in a goroutine.
// Blocks until ctx is cancelled.
func (loop *AgentLoop) Run(ctx context.Context) error {
	slog.Info("Agent loop started")

	for {
		select {
		case msg := <-loop.bus.InboundChan():
			go loop.handleMessage(ctx, msg)
		case <-ctx.Done():
			slog.Info("Agent loop stopping")
			return ctx.Err()
		}
	}
}

// ProcessDirect handles a message outside the bus (CLI, web dashboard).
// onProgress, if non-nil, receives interim status lines.
func (loop *AgentLoop) ProcessDirect(ctx context.Context, msg bus.InboundMessage, onProgress func(string)) bus.OutboundMessage {
	return loop.process(ctx, msg, onProgress)
}

func (loop *AgentLoop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	progress := func(content string) {
		out := bus.NewProgressMessage(msg.Channel(), msg.ChatID(), content)
		out.SetMetadata(msg.Metadata())
		if err := loop.bus.PublishOutbound(ctx, out); err != nil {
			slog.Debug("Dropped progress message", "channel", msg.Channel(), "err", err)
		}
	}

	out := loop.process(ctx, msg, progress)
	if err := loop.bus.PublishOutbound(ctx, out); err != nil {
		slog.Warn("Failed to publish reply", "channel", msg.Channel(), "chat_id", msg.ChatID(), "err", err)
	}
}

func (loop *AgentLoop) process(ctx context.Context, msg bus.InboundMessage, onProgress func(string)) bus.OutboundMessage {
	key := msg.SessionKey()
	unlock := loop.lock(key)
	defer unlock()

	slog.Info("Processing message", "sender", msg.SenderID(), "channel", msg.Channel(), "content", llmutils.Truncate(msg.Content(), 80))

	sess := loop.sessions.GetOrCreate(key)
	reply := func(text string) bus.OutboundMessage {
		out := bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), text)
		out.SetMetadata(msg.Metadata())
		return out
	}

	content := strings.TrimSpace(msg.Content())
	resume := msg.Resume()
	if resume == "" && hasResumePrefix(content) {
		resume, content = strings.TrimSpace(content[len(resumePrefix):]), ""
	}
	if resume != "" {
		sess.SetResume(resume)
		loop.save(sess)
		slog.Info("Resume stored", "session", key, "length", len(resume))
		if content == "" {
			return reply(resumeStoredReply)
		}
	}
	if content == "" {
		return reply(helpText)
	}

	if text, ok := loop.handleSlashCommand(content, sess); ok {
		return reply(text)
	}

	tc := tools.TurnCtx(ctx)
	tc.Channel = string(msg.Channel())
	tc.ChatID = msg.ChatID()
	if onProgress != nil {
		tc.OnToolCall = func(name string) {
			onProgress(fmt.Sprintf("Thinking... (Calling %s)", name))
		}
	}
	ctx = tools.WithTurn(ctx, tc)

	res, err := loop.orch.RunTurn(ctx, sess, content)
	if err != nil {
		slog.Error("Turn failed", "session", key, "err", err)
		return reply(failureText(err))
	}
	loop.save(sess)

	text := res.Text
	for _, a := range res.Artifacts {
		if len(a.Data) == 0 && a.Preview != "" {
			text += "\n\n" + a.Preview
		}
	}
	out := reply(text)
	for _, a := range res.Artifacts {
		if len(a.Data) > 0 {
			out.AddAttachment(bus.Attachment{ID: a.CallID, Filename: a.Filename, Data: a.Data, Comment: attachmentComment})
		}
	}
	return out
}

// handleSlashCommand runs a known slash command and reports whether content
// was one.
func (loop *AgentLoop) handleSlashCommand(content string, sess *session.Session) (string, bool) {
	switch strings.ToLower(content) {
	case "/new":
		sess.Clear()
		loop.save(sess)
		loop.orch.Artifacts().Forget(sess.Key)
		if sess.HasResume() {
			return "New conversation started. Your resume is still on file.", true
		}
		return "New conversation started.", true
	case "/resume":
		if r := sess.Resume(); r != "" {
			return fmt.Sprintf("A resume is on file for this conversation (%d characters).", len(r)), true
		}
		return "No resume on file yet. Upload a .txt, .md or .docx file, or send a message starting with \"resume:\".", true
	case "/help":
		return helpText, true
	}
	return "", false
}

func (loop *AgentLoop) save(sess *session.Session) {
	if err := loop.sessions.Save(sess); err != nil {
		slog.Warn("Failed to save session", "session", sess.Key, "err", err)
	}
}

func (loop *AgentLoop) lock(key string) func() {
	v, _ := loop.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func hasResumePrefix(s string) bool {
	return len(s) > len(resumePrefix) && strings.EqualFold(s[:len(resumePrefix)], resumePrefix)
}

func failureText(err error) string {
	var te *schema.TransportError
	if errors.As(err, &te) {
		return fmt.Sprintf("Sorry, I couldn't reach the assistant service: %v", te.Err)
	}
	return fmt.Sprintf("Sorry, something went wrong: %v", err)
}
