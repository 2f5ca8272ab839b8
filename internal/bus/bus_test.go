package bus

import (
	"context"
	"errors"
	"testing"
)

func TestMessageBus_RoundTrip(t *testing.T) {
	b := NewMessageBus(1)
	ctx := context.Background()

	in := NewInboundMessage(ChannelSlack, "U1", "D1", "find jobs")
	in.SetResume("Jane Doe")
	if err := b.PublishInbound(ctx, in); err != nil {
		t.Fatal(err)
	}
	got := <-b.InboundChan()
	if got.SessionKey() != "slack:D1" || got.Resume() != "Jane Doe" {
		t.Errorf("inbound = %+v", got)
	}

	out := NewOutboundMessage(ChannelSlack, "D1", "done")
	out.AddAttachment(Attachment{Filename: "resume.docx", Data: []byte("PK")})
	if err := b.PublishOutbound(ctx, out); err != nil {
		t.Fatal(err)
	}
	o := <-b.OutboundChan()
	if len(o.Attachments()) != 1 || o.IsProgress() {
		t.Errorf("outbound = %+v", o)
	}
}

func TestMessageBus_PublishRespectsContext(t *testing.T) {
	b := NewMessageBus(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.PublishOutbound(ctx, NewProgressMessage(ChannelCLI, ChatIDDirect, "Thinking..."))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestRoutingKey(t *testing.T) {
	key := RoutingKey(ChannelTelegram, "42")
	ch, id := ParseRoutingKey(key)
	if ch != ChannelTelegram || id != "42" {
		t.Errorf("parsed %q %q", ch, id)
	}
	if RoutingKey(ChannelCLI, "") != "cli" {
		t.Error("empty chat id")
	}
}
