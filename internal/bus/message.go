// Package bus defines the message types that flow between channels and the agent.
package bus

import (
	"strings"
	"time"
	"unicode/utf8"
)

// InboundMessage is a message received from a chat channel.
type InboundMessage struct {
	channel   Channel
	senderID  string         // user identifier within the channel
	chatID    string         // chat / channel / DM identifier
	content   string         // message text
	resume    string         // resume text extracted from an uploaded file, if any
	timestamp time.Time      // when the message was received
	metadata  map[string]any // channel-specific extra data (thread_ts, message_id, …)
}

// NewInboundMessage creates an InboundMessage with Timestamp set to now.
func NewInboundMessage(channel Channel, senderID, chatID, content string) InboundMessage {
	return InboundMessage{
		channel:   channel,
		senderID:  senderID,
		chatID:    chatID,
		content:   content,
		timestamp: time.Now(),
	}
}

func (m InboundMessage) Channel() Channel               { return m.channel }
func (m InboundMessage) SenderID() string               { return m.senderID }
func (m InboundMessage) ChatID() string                 { return m.chatID }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) Resume() string                 { return m.resume }
func (m InboundMessage) Timestamp() time.Time           { return m.timestamp }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetResume(text string)         { m.resume = text }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// SessionKey returns the key of the conversation this message belongs to:
// "channel:chat_id".
func (m InboundMessage) SessionKey() string {
	return RoutingKey(m.channel, m.chatID)
}

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	preview := m.content
	if utf8.RuneCountInString(preview) > 80 {
		preview = string([]rune(preview)[:80]) + "..."
	}
	return preview
}

// Attachment is a document delivered alongside a reply.
type Attachment struct {
	ID       string // id of the tool call that produced it, when known
	Filename string
	Data     []byte
	Comment  string
}

// OutboundMessage is a response to be sent back through a channel.
type OutboundMessage struct {
	channel     Channel
	chatID      string
	content     string
	attachments []Attachment
	progress    bool           // interim status such as "Thinking... (Calling x)"
	metadata    map[string]any // channel-specific hints (thread_ts, …)
}

func NewOutboundMessage(channel Channel, chatID, content string) OutboundMessage {
	return OutboundMessage{channel: channel, chatID: chatID, content: content}
}

// NewProgressMessage returns an interim status message.
func NewProgressMessage(channel Channel, chatID, content string) OutboundMessage {
	return OutboundMessage{channel: channel, chatID: chatID, content: content, progress: true}
}

func (m OutboundMessage) Channel() Channel                { return m.channel }
func (m OutboundMessage) ChatID() string                  { return m.chatID }
func (m OutboundMessage) Content() string                 { return m.content }
func (m OutboundMessage) Attachments() []Attachment       { return m.attachments }
func (m OutboundMessage) IsProgress() bool                { return m.progress }
func (m OutboundMessage) Metadata() map[string]any        { return m.metadata }
func (m *OutboundMessage) SetMetadata(md map[string]any)  { m.metadata = md }
func (m *OutboundMessage) AddAttachment(a Attachment)     { m.attachments = append(m.attachments, a) }

// RoutingKey joins a channel and chat id into a session key.
func RoutingKey(channel Channel, chatID string) string {
	if chatID == "" {
		return string(channel)
	}
	return string(channel) + ":" + chatID
}

// ParseRoutingKey splits a routing key into channel and chat ID.
func ParseRoutingKey(key string) (Channel, string) {
	if i := strings.Index(key, ":"); i >= 0 {
		return Channel(key[:i]), key[i+1:]
	}
	return Channel(key), ""
}
