package session

import (
	"strings"
	"sync"
	"time"

	"github.com/jobpilot/jobpilot/internal/schema"
)

const resumeKey = "resume"

// Session is the per-conversation state: message history and the
// candidate's resume text. One Session is owned by one conversation and is
// passed to the orchestrator on every turn.
type Session struct {
	Key       string
	Messages  schema.Messages
	CreatedAt time.Time
	UpdatedAt time.Time
	Metadata  map[string]any

	mu sync.Mutex
}

// New returns an empty session for key.
func New(key string) *Session {
	now := time.Now()
	return &Session{
		Key:       key,
		Messages:  schema.NewMessages(),
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]any{},
	}
}

// Commit appends the turns produced by one successful exchange.
func (s *Session) Commit(msgs ...schema.Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages.Add(msgs...)
	s.UpdatedAt = time.Now()
}

// History returns up to window trailing messages for the prompt. The slice
// always starts at a user turn so tool turns are never orphaned from the
// assistant turn that requested them. window <= 0 returns everything.
func (s *Session) History(window int) []schema.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.Messages.Messages
	if window > 0 && len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	for i, m := range msgs {
		if m.Role == schema.RoleUser {
			msgs = msgs[i:]
			break
		}
		if i == len(msgs)-1 {
			msgs = nil
		}
	}
	out := make([]schema.Message, len(msgs))
	copy(out, msgs)
	return out
}

// Len returns the number of stored messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Messages.Len()
}

// Resume returns the resume text on file, or "".
func (s *Session) Resume() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, _ := s.Metadata[resumeKey].(string)
	return r
}

// HasResume reports whether a resume is on file.
func (s *Session) HasResume() bool { return s.Resume() != "" }

// SetResume stores resume text. Blank text removes it.
func (s *Session) SetResume(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		delete(s.Metadata, resumeKey)
	} else {
		s.Metadata[resumeKey] = text
	}
	s.UpdatedAt = time.Now()
}

// Clear drops the message history. The resume is kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = schema.NewMessages()
	s.UpdatedAt = time.Now()
}
