package channels

import (
	"context"
	"io"
	"strings"
	"testing"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/config/channel"
)

type postedMessage struct {
	channel, text, threadTS string
}

type fakeSlackAPI struct {
	files     map[string]string
	posted    []postedMessage
	uploads   []slackgo.UploadFileV2Parameters
	reactions []string
}

func (f *fakeSlackAPI) PostMessageContext(_ context.Context, channelID string, options ...slackgo.MsgOption) (string, string, error) {
	_, vals, err := slackgo.UnsafeApplyMsgOptions("token", channelID, "https://slack.test/api/", options...)
	if err != nil {
		return "", "", err
	}
	f.posted = append(f.posted, postedMessage{channel: channelID, text: vals.Get("text"), threadTS: vals.Get("thread_ts")})
	return channelID, "2.0", nil
}

func (f *fakeSlackAPI) UploadFileV2Context(_ context.Context, params slackgo.UploadFileV2Parameters) (*slackgo.FileSummary, error) {
	f.uploads = append(f.uploads, params)
	return &slackgo.FileSummary{ID: "F1", Title: params.Title}, nil
}

func (f *fakeSlackAPI) GetFileContext(_ context.Context, url string, w io.Writer) error {
	_, err := io.WriteString(w, f.files[url])
	return err
}

func (f *fakeSlackAPI) AddReaction(name string, _ slackgo.ItemRef) error {
	f.reactions = append(f.reactions, name)
	return nil
}

func newTestSlack(t *testing.T) (*SlackChannel, *fakeSlackAPI, *bus.MessageBus) {
	t.Helper()
	cfg := channel.DefaultSlackConfig()
	b := bus.NewMessageBus(4)
	s := NewSlackChannel(&cfg, b)
	api := &fakeSlackAPI{files: map[string]string{}}
	s.api = api
	s.botUserID = "B1"
	return s, api, b
}

func nextInbound(t *testing.T, b *bus.MessageBus) (bus.InboundMessage, bool) {
	t.Helper()
	select {
	case msg := <-b.InboundChan():
		return msg, true
	default:
		return bus.InboundMessage{}, false
	}
}

func TestSlack_DirectMessage(t *testing.T) {
	s, api, b := newTestSlack(t)
	s.handleInnerEvent(context.Background(), slackevents.EventsAPIInnerEvent{
		Type: "message",
		Data: map[string]interface{}{
			"user": "U1", "channel": "D1", "text": "find go jobs", "channel_type": "im", "ts": "1.0",
		},
	})

	msg, ok := nextInbound(t, b)
	if !ok {
		t.Fatal("no inbound message")
	}
	if msg.Content() != "find go jobs" || msg.SessionKey() != "slack:D1" {
		t.Errorf("msg = %q %q", msg.Content(), msg.SessionKey())
	}
	meta := msg.Metadata()["slack"].(map[string]any)
	if meta["thread_ts"] != "1.0" {
		t.Errorf("thread_ts = %v", meta["thread_ts"])
	}
	if len(api.reactions) != 1 || api.reactions[0] != "eyes" {
		t.Errorf("reactions = %v", api.reactions)
	}
}

func TestSlack_GroupMentionPolicy(t *testing.T) {
	s, _, b := newTestSlack(t)
	ctx := context.Background()

	s.handleInnerEvent(ctx, slackevents.EventsAPIInnerEvent{
		Type: "message",
		Data: map[string]interface{}{"user": "U1", "channel": "C1", "text": "chatter", "channel_type": "channel", "ts": "1.0"},
	})
	if _, ok := nextInbound(t, b); ok {
		t.Error("group message without mention should be ignored")
	}

	s.handleInnerEvent(ctx, slackevents.EventsAPIInnerEvent{
		Type: "app_mention",
		Data: map[string]interface{}{"user": "U1", "channel": "C1", "text": "<@B1> remote rust roles", "channel_type": "channel", "ts": "2.0"},
	})
	msg, ok := nextInbound(t, b)
	if !ok || msg.Content() != "remote rust roles" {
		t.Errorf("mention = %q, %v", msg.Content(), ok)
	}
}

func TestSlack_FileShareSetsResume(t *testing.T) {
	s, _, b := newTestSlack(t)
	s.api.(*fakeSlackAPI).files["https://files.slack.test/resume.md"] = "Jane Doe\nGo engineer\n"

	s.handleInnerEvent(context.Background(), slackevents.EventsAPIInnerEvent{
		Type: "message",
		Data: map[string]interface{}{
			"user": "U1", "channel": "D1", "channel_type": "im", "ts": "1.0", "subtype": "file_share",
			"files": []interface{}{
				map[string]interface{}{"name": "resume.md", "url_private_download": "https://files.slack.test/resume.md"},
			},
		},
	})

	msg, ok := nextInbound(t, b)
	if !ok {
		t.Fatal("no inbound message")
	}
	if msg.Resume() != "Jane Doe\nGo engineer" || msg.Content() != "" {
		t.Errorf("resume = %q content = %q", msg.Resume(), msg.Content())
	}
}

func TestSlack_UnsupportedFileRejected(t *testing.T) {
	s, api, b := newTestSlack(t)

	s.handleInnerEvent(context.Background(), slackevents.EventsAPIInnerEvent{
		Type: "message",
		Data: map[string]interface{}{
			"user": "U1", "channel": "D1", "channel_type": "im", "ts": "1.0", "subtype": "file_share",
			"files": []interface{}{map[string]interface{}{"name": "resume.pdf", "url_private_download": "https://x"}},
		},
	})

	if _, ok := nextInbound(t, b); ok {
		t.Error("pdf upload should not reach the agent")
	}
	if len(api.posted) != 1 || !strings.Contains(api.posted[0].text, "couldn't read that file") {
		t.Errorf("posted = %+v", api.posted)
	}
}

func TestSlack_SendTextAndAttachment(t *testing.T) {
	s, api, _ := newTestSlack(t)

	out := bus.NewOutboundMessage(bus.ChannelSlack, "C1", "Here you go.")
	out.SetMetadata(map[string]any{"slack": map[string]any{"thread_ts": "1.0", "channel_type": "channel"}})
	out.AddAttachment(bus.Attachment{Filename: "tailored_resume.docx", Data: []byte("PK"), Comment: "Here is your downloadable document."})

	if err := s.Send(context.Background(), out); err != nil {
		t.Fatal(err)
	}
	if len(api.posted) != 1 || api.posted[0].text != "Here you go." || api.posted[0].threadTS != "1.0" {
		t.Errorf("posted = %+v", api.posted)
	}
	if len(api.uploads) != 1 {
		t.Fatalf("uploads = %d", len(api.uploads))
	}
	up := api.uploads[0]
	if up.Filename != "tailored_resume.docx" || up.FileSize != 2 || up.Channel != "C1" ||
		up.ThreadTimestamp != "1.0" || up.InitialComment != "Here is your downloadable document." {
		t.Errorf("upload = %+v", up)
	}
}
