package channels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/config/channel"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	cases := map[string]string{
		"**Acme** <b>":            "<b>Acme</b> &lt;b&gt;",
		"use `a<b` here":          "use <code>a&lt;b</code> here",
		"# Top roles":             "<b>Top roles</b>",
		"- Go engineer":           "• Go engineer",
		"[apply](https://x.test)": `<a href="https://x.test">apply</a>`,
		"~~old~~ and _new_ pay":   "<s>old</s> and <i>new</i> pay",
		"a < b & c":               "a &lt; b &amp; c",
	}
	for in, want := range cases {
		if got := markdownToTelegramHTML(in); got != want {
			t.Errorf("markdownToTelegramHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseChatID(t *testing.T) {
	if id, err := parseChatID("-100123"); err != nil || id != -100123 {
		t.Errorf("parseChatID = %d, %v", id, err)
	}
	if _, err := parseChatID("abc"); err == nil {
		t.Error("expected error")
	}
}

func TestTelegram_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("Jane Doe"))
	}))
	defer srv.Close()

	cfg := channel.DefaultTelegramConfig()
	tg := NewTelegramChannel(&cfg, bus.NewMessageBus(1))

	data, err := tg.fetch(context.Background(), srv.URL+"/file")
	if err != nil || string(data) != "Jane Doe" {
		t.Errorf("fetch = %q, %v", data, err)
	}
	if _, err := tg.fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected HTTP error")
	}
}

func TestTelegram_SendWithoutBot(t *testing.T) {
	cfg := channel.DefaultTelegramConfig()
	tg := NewTelegramChannel(&cfg, bus.NewMessageBus(1))
	if err := tg.Send(context.Background(), bus.NewOutboundMessage(bus.ChannelTelegram, "1", "hi")); err == nil {
		t.Error("expected error when bot is not running")
	}
}
