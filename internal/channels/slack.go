package channels

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/config/channel"
)

const slackMaxLen = 3900

// slackAPI is the part of the Slack web client the channel uses.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackgo.MsgOption) (string, string, error)
	UploadFileV2Context(ctx context.Context, params slackgo.UploadFileV2Parameters) (*slackgo.FileSummary, error)
	GetFileContext(ctx context.Context, downloadURL string, writer io.Writer) error
	AddReaction(name string, item slackgo.ItemRef) error
}

// SlackChannel implements Slack via Socket Mode.
type SlackChannel struct {
	Base
	cfg       *channel.SlackConfig
	api       slackAPI
	smClient  *socketmode.Client
	botUserID string
}

func NewSlackChannel(cfg *channel.SlackConfig, b bus.Bus) *SlackChannel {
	return &SlackChannel{
		Base: NewBase(bus.ChannelSlack, b, nil), // Slack uses its own allow logic
		cfg:  cfg,
	}
}

func (s *SlackChannel) Name() string { return string(bus.ChannelSlack) }

func (s *SlackChannel) Start(ctx context.Context) error {
	if s.cfg.BotToken == "" || s.cfg.AppToken == "" {
		slog.Warn("slack: bot/app token not configured")
		<-ctx.Done()
		return ctx.Err()
	}

	webClient := slackgo.New(s.cfg.BotToken,
		slackgo.OptionAppLevelToken(s.cfg.AppToken))
	s.api = webClient

	if resp, err := webClient.AuthTestContext(ctx); err == nil {
		s.botUserID = resp.UserID
		slog.Info("slack: connected", "bot_user_id", s.botUserID)
	} else {
		slog.Warn("slack: auth test failed", "err", err)
	}

	s.smClient = socketmode.New(webClient)

	go s.smClient.RunContext(ctx) //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-s.smClient.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, evt)
		}
	}
}

func (s *SlackChannel) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnected:
		slog.Info("slack: socket mode connected")
	case socketmode.EventTypeEventsAPI:
		s.smClient.Ack(*evt.Request)
		cb, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if cb.InnerEvent.Type != "message" && cb.InnerEvent.Type != "app_mention" {
			return
		}
		go s.handleInnerEvent(ctx, cb.InnerEvent)
	}
}

// handleInnerEvent parses a message or app_mention payload. A file share
// with a resume document sets the session resume.
func (s *SlackChannel) handleInnerEvent(ctx context.Context, ev slackevents.EventsAPIInnerEvent) {
	data, ok := ev.Data.(map[string]interface{})
	if !ok {
		return
	}
	userID, _ := data["user"].(string)
	channelID, _ := data["channel"].(string)
	text, _ := data["text"].(string)
	subtype, _ := data["subtype"].(string)
	channelType, _ := data["channel_type"].(string)
	ts, _ := data["ts"].(string)
	threadTS, _ := data["thread_ts"].(string)

	if (subtype != "" && subtype != "file_share") || userID == "" || channelID == "" {
		return
	}
	if userID == s.botUserID {
		return
	}
	// Avoid double-processing mention + message events.
	if ev.Type == "message" && s.botUserID != "" && strings.Contains(text, "<@"+s.botUserID+">") {
		return
	}

	if !s.isAllowedSlack(userID, channelID, channelType) {
		return
	}
	if channelType != "im" && !s.shouldRespond(ev.Type, text, channelID) {
		return
	}

	text = s.stripMention(text)

	if s.cfg.ReplyInThread && threadTS == "" {
		threadTS = ts
	}

	if s.api != nil && ts != "" && s.cfg.ReactEmoji != "" {
		_ = s.api.AddReaction(s.cfg.ReactEmoji, slackgo.ItemRef{
			Channel:   channelID,
			Timestamp: ts,
		})
	}

	metadata := map[string]any{
		"slack": map[string]any{
			"thread_ts":    threadTS,
			"channel_type": channelType,
		},
	}

	var resume string
	if subtype == "file_share" {
		var err error
		resume, err = s.resumeFromFiles(ctx, data["files"])
		if err != nil {
			slog.Warn("slack: resume upload rejected", "user", userID, "err", err)
			s.postText(ctx, channelID, threadTS, channelType, fmt.Sprintf("Sorry, I couldn't read that file: %v", err))
			return
		}
	}
	if resume == "" && text == "" {
		return
	}

	s.HandleMessage(ctx, userID, channelID, text, resume, metadata)
}

// resumeFromFiles downloads the first shared file that looks like a resume.
func (s *SlackChannel) resumeFromFiles(ctx context.Context, raw any) (string, error) {
	files, _ := raw.([]interface{})
	for _, f := range files {
		file, ok := f.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := file["name"].(string)
		if !isResumeFile(name) {
			continue
		}
		url, _ := file["url_private_download"].(string)
		if url == "" {
			url, _ = file["url_private"].(string)
		}
		if url == "" || s.api == nil {
			return "", fmt.Errorf("no download link for %s", name)
		}
		var buf bytes.Buffer
		if err := s.api.GetFileContext(ctx, url, &buf); err != nil {
			return "", fmt.Errorf("download %s: %w", name, err)
		}
		return resumeText(name, buf.Bytes())
	}
	if len(files) > 0 {
		return "", fmt.Errorf("unsupported file type (use .txt, .md or .docx)")
	}
	return "", nil
}

func (s *SlackChannel) isAllowedSlack(user, channelID, channelType string) bool {
	if channelType == "im" {
		if !s.cfg.DM.Enabled {
			return false
		}
		if s.cfg.DM.Policy == "allowlist" {
			for _, a := range s.cfg.DM.AllowFrom {
				if a == user {
					return true
				}
			}
			return false
		}
		return true
	}
	if s.cfg.GroupPolicy == "allowlist" {
		for _, a := range s.cfg.GroupAllowFrom {
			if a == channelID {
				return true
			}
		}
		return false
	}
	return true
}

func (s *SlackChannel) shouldRespond(evType, text, channelID string) bool {
	switch s.cfg.GroupPolicy {
	case "open":
		return true
	case "mention":
		if evType == "app_mention" {
			return true
		}
		return s.botUserID != "" && strings.Contains(text, "<@"+s.botUserID+">")
	case "allowlist":
		for _, a := range s.cfg.GroupAllowFrom {
			if a == channelID {
				return true
			}
		}
		return false
	}
	return false
}

func (s *SlackChannel) stripMention(text string) string {
	if s.botUserID == "" {
		return strings.TrimSpace(text)
	}
	re := regexp.MustCompile(`<@` + regexp.QuoteMeta(s.botUserID) + `>\s*`)
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}

// Send posts the reply text, then uploads any attachments to the same
// conversation.
func (s *SlackChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if s.api == nil {
		return nil
	}
	meta := map[string]any{}
	if m, ok := msg.Metadata()["slack"].(map[string]any); ok {
		meta = m
	}
	threadTS, _ := meta["thread_ts"].(string)
	channelType, _ := meta["channel_type"].(string)

	if msg.Content() != "" {
		for _, chunk := range splitMessage(msg.Content(), slackMaxLen) {
			if err := s.postText(ctx, msg.ChatID(), threadTS, channelType, chunk); err != nil {
				return err
			}
		}
	}

	for _, a := range msg.Attachments() {
		params := slackgo.UploadFileV2Parameters{
			Channel:        msg.ChatID(),
			Filename:       a.Filename,
			Title:          a.Filename,
			FileSize:       len(a.Data),
			Reader:         bytes.NewReader(a.Data),
			InitialComment: a.Comment,
		}
		if threadTS != "" && channelType != "im" {
			params.ThreadTimestamp = threadTS
		}
		if _, err := s.api.UploadFileV2Context(ctx, params); err != nil {
			return fmt.Errorf("slack: upload %s: %w", a.Filename, err)
		}
	}
	return nil
}

func (s *SlackChannel) postText(ctx context.Context, channelID, threadTS, channelType, text string) error {
	if s.api == nil {
		return nil
	}
	options := []slackgo.MsgOption{slackgo.MsgOptionText(text, false)}
	if threadTS != "" && channelType != "im" {
		options = append(options, slackgo.MsgOptionTS(threadTS))
	}
	_, _, err := s.api.PostMessageContext(ctx, channelID, options...)
	return err
}
