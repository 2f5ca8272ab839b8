// Package channels provides chat-platform front-ends for the assistant.
package channels

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/docx"
)

// maxResumeBytes bounds uploaded resume files.
const maxResumeBytes = 2 << 20

// Channel is a chat front-end driven by the Manager.
type Channel interface {
	Name() string
	// Start connects and forwards inbound messages until ctx is cancelled.
	Start(ctx context.Context) error
	// Send delivers a reply, progress line or attachment.
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.Channel
	b           bus.Bus
	allowFrom   []string // empty = allow all
}

// NewBase creates a Base with the given channel name, bus, and allowlist.
func NewBase(name bus.Channel, b bus.Bus, allowFrom []string) Base {
	return Base{channelName: name, b: b, allowFrom: allowFrom}
}

// IsAllowed checks whether senderID is on the allowlist.
// senderID may be "id|username" (Telegram) or a plain string.
func (b *Base) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	for _, allowed := range b.allowFrom {
		if allowed == senderID {
			return true
		}
	}
	if strings.Contains(senderID, "|") {
		for _, part := range strings.Split(senderID, "|") {
			if part == "" {
				continue
			}
			for _, allowed := range b.allowFrom {
				if allowed == part {
					return true
				}
			}
		}
	}
	return false
}

// HandleMessage verifies the sender is allowed, then pushes an InboundMessage
// to the bus. A non-empty resume is attached to the message.
func (b *Base) HandleMessage(
	ctx context.Context,
	senderID, chatID, content, resume string,
	metadata map[string]any,
) {
	if !b.IsAllowed(senderID) {
		slog.Warn("access denied", "channel", b.channelName, "sender", senderID)
		return
	}

	msg := bus.NewInboundMessage(b.channelName, senderID, chatID, content)
	msg.SetResume(resume)
	msg.SetMetadata(metadata)
	if err := b.b.PublishInbound(ctx, msg); err != nil {
		slog.Warn("inbound dropped", "channel", b.channelName, "err", err)
	}
}

// isResumeFile reports whether name has an extension accepted as a resume.
func isResumeFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".docx":
		return true
	}
	return false
}

// resumeText decodes an uploaded resume file. Plain text and Markdown are
// taken as-is; .docx files are reduced to their paragraph text.
func resumeText(name string, data []byte) (string, error) {
	if len(data) > maxResumeBytes {
		return "", fmt.Errorf("resume file %s is too large (%d bytes)", name, len(data))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("resume file %s is not UTF-8 text", name)
		}
		return strings.TrimSpace(string(data)), nil
	case ".docx":
		text, err := docx.ExtractText(data)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}
	return "", fmt.Errorf("unsupported resume format %q (use .txt, .md or .docx)", filepath.Ext(name))
}

// splitMessage splits content into chunks that fit within maxLen,
// preferring newline breaks, then space breaks, then hard cut.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			pos = maxLen
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t\n")
	}
	return chunks
}
