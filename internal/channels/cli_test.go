package channels

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jobpilot/jobpilot/internal/bus"
)

type echoProcessor struct {
	got []bus.InboundMessage
}

func (e *echoProcessor) ProcessDirect(_ context.Context, msg bus.InboundMessage, onProgress func(string)) bus.OutboundMessage {
	e.got = append(e.got, msg)
	if msg.Content() == "" {
		return bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), "Resume stored.")
	}
	onProgress("Thinking... (Calling tailor_resume)")
	out := bus.NewOutboundMessage(msg.Channel(), msg.ChatID(), "echo: "+msg.Content())
	out.AddAttachment(bus.Attachment{Filename: "tailored_resume.docx", Data: []byte("PK"), Comment: "Here is your downloadable document."})
	return out
}

func TestCLI_RunSavesAttachments(t *testing.T) {
	dir := t.TempDir()
	proc := &echoProcessor{}
	var out bytes.Buffer
	c := NewCLIChannel(proc, strings.NewReader("tailor it\n\ntailor again\nexit\nignored\n"), &out, dir)

	if err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(proc.got) != 2 {
		t.Fatalf("processed %d messages", len(proc.got))
	}
	if proc.got[0].Channel() != bus.ChannelCLI || proc.got[0].ChatID() != bus.ChatIDDirect {
		t.Errorf("routing = %s %s", proc.got[0].Channel(), proc.got[0].ChatID())
	}

	text := out.String()
	for _, want := range []string{"echo: tailor it", "↳ Thinking... (Calling tailor_resume)", "Goodbye!"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	for _, name := range []string{"tailored_resume.docx", "tailored_resume-1.docx"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil || string(data) != "PK" {
			t.Errorf("%s: %q, %v", name, data, err)
		}
	}
}

func TestCLI_ResumeSentFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(path, []byte("Jane Doe\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	proc := &echoProcessor{}
	var out bytes.Buffer
	c := NewCLIChannel(proc, strings.NewReader(""), &out, dir)
	if err := c.LoadResume(path); err != nil {
		t.Fatal(err)
	}

	if err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(proc.got) != 1 || proc.got[0].Resume() != "Jane Doe" {
		t.Fatalf("got = %+v", proc.got)
	}
	if !strings.Contains(out.String(), "Resume stored.") {
		t.Errorf("output = %s", out.String())
	}
}

func TestCLI_LoadResumeRejectsPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewCLIChannel(&echoProcessor{}, strings.NewReader(""), &bytes.Buffer{}, "")
	if err := c.LoadResume(path); err == nil {
		t.Error("expected error for pdf resume")
	}
}
