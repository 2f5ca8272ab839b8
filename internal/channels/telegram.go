package channels

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/config/channel"
)

// TelegramChannel implements the Telegram bot via long polling.
type TelegramChannel struct {
	Base
	cfg    *channel.TelegramConfig
	bot    *tgbotapi.BotAPI
	client *http.Client
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *channel.TelegramConfig, b bus.Bus) *TelegramChannel {
	return &TelegramChannel{
		Base:   NewBase(bus.ChannelTelegram, b, cfg.AllowFrom),
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *TelegramChannel) Name() string { return string(bus.ChannelTelegram) }

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	bot, err := tgbotapi.NewBotAPI(t.cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram: connected", "username", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go t.handleUpdate(ctx, update)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *TelegramChannel) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	senderID := fmt.Sprintf("%d", msg.From.ID)
	if msg.From.UserName != "" {
		senderID = senderID + "|" + msg.From.UserName
	}
	if !t.IsAllowed(senderID) {
		slog.Warn("access denied", "channel", t.channelName, "sender", senderID)
		return
	}
	chatID := fmt.Sprintf("%d", msg.Chat.ID)

	content := msg.Text
	if msg.Caption != "" {
		content = msg.Caption
	}
	if msg.IsCommand() && msg.Command() == "start" {
		content = "/help"
	}

	var resume string
	if msg.Document != nil {
		text, err := t.downloadResume(ctx, msg.Document)
		if err != nil {
			slog.Warn("telegram: resume upload rejected", "chat_id", chatID, "err", err)
			t.sendPlain(msg.Chat.ID, fmt.Sprintf("Sorry, I couldn't read that file: %v", err))
			return
		}
		resume = text
	}
	if strings.TrimSpace(content) == "" && resume == "" {
		return
	}

	typingCtx, cancelTyping := context.WithCancel(ctx)
	defer cancelTyping()
	go t.sendTypingLoop(typingCtx, msg.Chat.ID)

	metadata := map[string]any{
		"message_id": msg.MessageID,
		"user_id":    msg.From.ID,
		"username":   msg.From.UserName,
		"first_name": msg.From.FirstName,
		"is_group":   msg.Chat.Type != "private",
	}

	t.HandleMessage(ctx, senderID, chatID, content, resume, metadata)
}

func (t *TelegramChannel) downloadResume(ctx context.Context, doc *tgbotapi.Document) (string, error) {
	if !isResumeFile(doc.FileName) {
		return "", fmt.Errorf("unsupported file type %q (use .txt, .md or .docx)", doc.FileName)
	}
	if doc.FileSize > maxResumeBytes {
		return "", fmt.Errorf("resume file %s is too large", doc.FileName)
	}
	if t.bot == nil {
		return "", fmt.Errorf("bot not running")
	}
	url, err := t.bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		return "", err
	}
	data, err := t.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return resumeText(doc.FileName, data)
}

func (t *TelegramChannel) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResumeBytes+1))
}

func (t *TelegramChannel) sendTypingLoop(ctx context.Context, chatID int64) {
	for {
		if t.bot != nil {
			action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
			_, _ = t.bot.Request(action)
		}
		select {
		case <-time.After(4 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}

func (t *TelegramChannel) sendPlain(chatID int64, text string) {
	if t.bot == nil {
		return
	}
	_, _ = t.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	chatID, err := parseChatID(msg.ChatID())
	if err != nil {
		return err
	}

	if msg.IsProgress() {
		t.sendPlain(chatID, msg.Content())
		return nil
	}

	var replyMsgID int
	if t.cfg.ReplyToMessage {
		if mid, ok := msg.Metadata()["message_id"]; ok {
			switch v := mid.(type) {
			case int:
				replyMsgID = v
			case float64:
				replyMsgID = int(v)
			}
		}
	}

	if msg.Content() != "" {
		for _, chunk := range splitMessage(msg.Content(), 4000) {
			m := tgbotapi.NewMessage(chatID, markdownToTelegramHTML(chunk))
			m.ParseMode = tgbotapi.ModeHTML
			if replyMsgID != 0 {
				m.ReplyToMessageID = replyMsgID
			}
			if _, err := t.bot.Send(m); err != nil {
				// Fallback to plain text.
				m2 := tgbotapi.NewMessage(chatID, chunk)
				if replyMsgID != 0 {
					m2.ReplyToMessageID = replyMsgID
				}
				_, _ = t.bot.Send(m2)
			}
		}
	}

	for _, a := range msg.Attachments() {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: a.Filename, Bytes: a.Data})
		doc.Caption = a.Comment
		if _, err := t.bot.Send(doc); err != nil {
			return fmt.Errorf("telegram: send %s: %w", a.Filename, err)
		}
	}
	return nil
}

func parseChatID(s string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid chat_id: %s", s)
	}
	return id, nil
}

var (
	tgCodeBlock  = regexp.MustCompile("(?s)```[\\w]*\\n?(.*?)```")
	tgInlineCode = regexp.MustCompile("`([^`]+)`")
	tgHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	tgQuote      = regexp.MustCompile(`(?m)^>\s*(.*)$`)
	tgLink       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	tgBold       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	tgItalic     = regexp.MustCompile(`(^|[^a-zA-Z0-9_*])[_*]([^_*\n]+)[_*]([^a-zA-Z0-9_*]|$)`)
	tgStrike     = regexp.MustCompile(`~~(.+?)~~`)
	tgBullet     = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+`)
)

// markdownToTelegramHTML converts the Markdown subset the assistant writes
// into Telegram's HTML parse mode. Code spans and headers are held aside so
// their content is escaped but never restyled.
func markdownToTelegramHTML(text string) string {
	if text == "" {
		return ""
	}

	var held []string
	hold := func(html string) string {
		held = append(held, html)
		return fmt.Sprintf("\x00%d\x00", len(held)-1)
	}
	text = tgCodeBlock.ReplaceAllStringFunc(text, func(m string) string {
		return hold("<pre><code>" + htmlEscape(tgCodeBlock.FindStringSubmatch(m)[1]) + "</code></pre>")
	})
	text = tgInlineCode.ReplaceAllStringFunc(text, func(m string) string {
		return hold("<code>" + htmlEscape(tgInlineCode.FindStringSubmatch(m)[1]) + "</code>")
	})

	text = tgHeader.ReplaceAllStringFunc(text, func(m string) string {
		return hold("<b>" + htmlEscape(tgHeader.FindStringSubmatch(m)[1]) + "</b>")
	})
	text = tgQuote.ReplaceAllString(text, "$1")
	text = htmlEscape(text)

	text = tgLink.ReplaceAllString(text, `<a href="$2">$1</a>`)
	text = tgBold.ReplaceAllString(text, "<b>$1$2</b>")
	text = tgBullet.ReplaceAllString(text, "• ")
	text = tgItalic.ReplaceAllString(text, "$1<i>$2</i>$3")
	text = tgStrike.ReplaceAllString(text, "<s>$1</s>")

	for i, h := range held {
		text = strings.Replace(text, fmt.Sprintf("\x00%d\x00", i), h, 1)
	}
	return text
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
