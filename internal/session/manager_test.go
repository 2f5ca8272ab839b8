package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobpilot/jobpilot/internal/schema"
)

func TestManager_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	s := m.GetOrCreate("telegram:42")
	s.SetResume("Jane Doe")
	s.Commit(
		schema.NewUserMessage("find jobs in Austin"),
		schema.NewAssistantMessage("", []schema.ToolCall{{ID: "c1", Name: "search_jobs", Arguments: `{"location":"Austin"}`}}),
		schema.NewToolResultMessage("c1", "search_jobs", "1. Analyst"),
		schema.NewAssistantMessage("Found one.", nil),
	)
	if err := m.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sessions", "telegram_42.jsonl")); err != nil {
		t.Fatalf("session file missing: %v", err)
	}

	fresh, _ := NewManager(dir)
	got := fresh.GetOrCreate("telegram:42")
	if got.Resume() != "Jane Doe" {
		t.Errorf("resume = %q", got.Resume())
	}
	h := got.History(0)
	if len(h) != 4 {
		t.Fatalf("reloaded %d messages", len(h))
	}
	if tc := h[1].ToolCalls; len(tc) != 1 || tc[0].Arguments != `{"location":"Austin"}` || tc[0].ID != "c1" {
		t.Errorf("tool calls = %+v", tc)
	}
	if h[2].Role != schema.RoleTool || h[2].ToolCallID != "c1" || h[2].ToolName != "search_jobs" {
		t.Errorf("tool turn = %+v", h[2])
	}
}

func TestManager_ListNewestFirst(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	a := m.GetOrCreate("cli:a")
	b := m.GetOrCreate("cli:b")
	b.UpdatedAt = a.UpdatedAt.Add(time.Hour)
	if err := m.Save(a); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(b); err != nil {
		t.Fatal(err)
	}

	list := m.List()
	if len(list) != 2 || list[0].Key != "cli:b" {
		t.Errorf("list = %+v", list)
	}
}

func TestManager_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	m, _ := NewManager(dir)
	path := filepath.Join(dir, "sessions", "cli_x.jsonl")
	data := `{"_type":"metadata","key":"cli:x","created_at":"2026-01-02T03:04:05Z","metadata":{}}
not json
{"role":"user","content":"hello"}
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	s := m.GetOrCreate("cli:x")
	if s.Len() != 1 {
		t.Errorf("expected 1 message, got %d", s.Len())
	}
	if s.CreatedAt.Year() != 2026 {
		t.Errorf("created_at = %v", s.CreatedAt)
	}
}

func TestSafeFilename(t *testing.T) {
	if got := safeFilename(`a<b>c"d/e\f|g?h*`); got != "a_b_c_d_e_f_g_h_" {
		t.Errorf("got %q", got)
	}
}

func TestManager_Exists(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Exists("web:abc") {
		t.Fatal("unknown session reported as existing")
	}
	if err := m.Save(m.GetOrCreate("web:abc")); err != nil {
		t.Fatal(err)
	}

	fresh, _ := NewManager(dir)
	if !fresh.Exists("web:abc") {
		t.Error("saved session not found on disk")
	}
}
