package channels

import (
	"strings"
	"testing"

	"github.com/jobpilot/jobpilot/internal/bus"
	"github.com/jobpilot/jobpilot/internal/docx"
)

func TestBase_IsAllowed(t *testing.T) {
	open := NewBase(bus.ChannelTelegram, nil, nil)
	if !open.IsAllowed("42|jane") {
		t.Error("empty allowlist should allow everyone")
	}

	b := NewBase(bus.ChannelTelegram, nil, []string{"jane"})
	cases := map[string]bool{
		"jane":    true,
		"42|jane": true,
		"42":      false,
		"43|bob":  false,
	}
	for sender, want := range cases {
		if got := b.IsAllowed(sender); got != want {
			t.Errorf("IsAllowed(%q) = %v, want %v", sender, got, want)
		}
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short = %q", got)
	}

	chunks := splitMessage("line one\nline two\nline three", 12)
	for _, c := range chunks {
		if len(c) > 12 {
			t.Errorf("chunk %q longer than limit", c)
		}
	}
	if strings.Join(chunks, "\n") != "line one\nline two\nline three" {
		t.Errorf("chunks = %q", chunks)
	}

	hard := splitMessage(strings.Repeat("x", 25), 10)
	if len(hard) != 3 || hard[2] != "xxxxx" {
		t.Errorf("hard cut = %q", hard)
	}
}

func TestResumeText_Formats(t *testing.T) {
	got, err := resumeText("cv.md", []byte("  # Jane Doe\nGo engineer\n"))
	if err != nil || got != "# Jane Doe\nGo engineer" {
		t.Errorf("markdown = %q, %v", got, err)
	}

	data, err := docx.Render("# Jane Doe\n\nGo engineer")
	if err != nil {
		t.Fatal(err)
	}
	got, err = resumeText("CV.DOCX", data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Jane Doe") || !strings.Contains(got, "Go engineer") {
		t.Errorf("docx = %q", got)
	}

	if _, err := resumeText("cv.pdf", []byte("%PDF")); err == nil {
		t.Error("pdf should be rejected")
	}
	if _, err := resumeText("cv.txt", []byte{0xff, 0xfe}); err == nil {
		t.Error("invalid utf-8 should be rejected")
	}
}

func TestIsResumeFile(t *testing.T) {
	for name, want := range map[string]bool{
		"resume.txt": true, "Resume.MD": true, "cv.docx": true, "cv.pdf": false, "photo": false,
	} {
		if isResumeFile(name) != want {
			t.Errorf("isResumeFile(%q) != %v", name, want)
		}
	}
}
