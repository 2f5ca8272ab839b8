package artifact

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobpilot/jobpilot/internal/tools"
)

func structured(p tools.Payload) tools.ToolResult {
	return tools.ToolResult{CallID: "c1", ToolName: "tailor_resume", Payload: &p}
}

func TestExtract_FromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r1.docx")
	if err := os.WriteFile(path, []byte("PK-doc"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Extract(structured(tools.Payload{Preview: "Tailored for Acme", FilePath: path}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(a.Data) != "PK-doc" || a.Filename != "r1.docx" || a.Preview != "Tailored for Acme" {
		t.Errorf("unexpected artifact %+v", a)
	}
}

func TestExtract_InlineWinsOverPath(t *testing.T) {
	a, err := Extract(structured(tools.Payload{
		FileContent: base64.StdEncoding.EncodeToString([]byte("inline")),
		FilePath:    "/does/not/exist.docx",
		Filename:    "resume.docx",
	}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(a.Data) != "inline" || a.Filename != "resume.docx" || a.Path != "" {
		t.Errorf("unexpected artifact %+v", a)
	}
}

func TestExtract_BadBase64FallsBackToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.docx")
	if err := os.WriteFile(path, []byte("from disk"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Extract(structured(tools.Payload{FileContent: "!!not base64!!", FilePath: path}))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(a.Data) != "from disk" {
		t.Errorf("data = %q", a.Data)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.docx")
	a, err := Extract(structured(tools.Payload{Preview: "preview only", FilePath: missing}))
	var ue *ArtifactUnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected ArtifactUnavailableError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should be ErrNotExist: %v", err)
	}
	if a == nil || a.Preview != "preview only" || a.Data != nil {
		t.Errorf("expected preview-only artifact, got %+v", a)
	}
	if !IsUnavailable(err) {
		t.Error("IsUnavailable = false")
	}
}

func TestExtract_NoFile(t *testing.T) {
	a, err := Extract(structured(tools.Payload{Preview: "just text"}))
	if a != nil || err != nil {
		t.Errorf("got %+v, %v", a, err)
	}
	a, err = Extract(tools.ToolResult{Text: "plain"})
	if a != nil || err != nil {
		t.Errorf("got %+v, %v", a, err)
	}
}

func TestExtract_DefaultFilename(t *testing.T) {
	a, err := Extract(structured(tools.Payload{FileContent: base64.StdEncoding.EncodeToString([]byte("x"))}))
	if err != nil {
		t.Fatal(err)
	}
	if a.Filename != DefaultFilename {
		t.Errorf("filename = %q", a.Filename)
	}
}

func TestStore_IsolatedPerSession(t *testing.T) {
	s := NewStore()
	s.Put("slack:U1", &Artifact{CallID: "c1", Filename: "a.docx", Data: []byte("a")})
	s.Put("slack:U2", &Artifact{CallID: "c1", Filename: "b.docx", Data: []byte("b")})
	s.Put("slack:U1", &Artifact{CallID: "c2", Filename: "c.docx", Data: []byte("c")})
	s.Put("slack:U3", &Artifact{CallID: "c1", Filename: "empty.docx"})

	if a, ok := s.Last("slack:U1"); !ok || a.Filename != "c.docx" {
		t.Errorf("U1 = %+v", a)
	}
	if a, ok := s.Last("slack:U2"); !ok || a.Filename != "b.docx" {
		t.Errorf("U2 = %+v", a)
	}
	if a, ok := s.Get("slack:U1", "c1"); !ok || a.Filename != "a.docx" {
		t.Errorf("U1/c1 = %+v", a)
	}
	if a, ok := s.Get("slack:U2", "c1"); !ok || a.Filename != "b.docx" {
		t.Errorf("U2/c1 = %+v", a)
	}
	if _, ok := s.Get("slack:U2", "c2"); ok {
		t.Error("U2 saw U1's call")
	}
	if _, ok := s.Last("slack:U3"); ok {
		t.Error("empty artifacts are not stored")
	}
	s.Forget("slack:U1")
	if _, ok := s.Last("slack:U1"); ok {
		t.Error("Forget did not remove the entry")
	}
}

func TestStore_SameCallReplaces(t *testing.T) {
	s := NewStore()
	s.Put("k", &Artifact{CallID: "c1", Filename: "old.docx", Data: []byte("1")})
	s.Put("k", &Artifact{CallID: "c2", Filename: "other.docx", Data: []byte("2")})
	s.Put("k", &Artifact{CallID: "c1", Filename: "new.docx", Data: []byte("3")})

	if a, _ := s.Get("k", "c1"); a.Filename != "new.docx" {
		t.Errorf("c1 = %+v", a)
	}
	if a, _ := s.Last("k"); a.Filename != "new.docx" {
		t.Errorf("last = %+v", a)
	}
	if a, ok := s.Get("k", "c2"); !ok || a.Filename != "other.docx" {
		t.Errorf("c2 = %+v", a)
	}
}

func TestStore_BoundedPerSession(t *testing.T) {
	s := NewStore()
	for i := 0; i < maxPerSession+5; i++ {
		s.Put("k", &Artifact{CallID: fmt.Sprintf("c%d", i), Data: []byte("x")})
	}
	if _, ok := s.Get("k", "c0"); ok {
		t.Error("oldest artifact was kept")
	}
	if _, ok := s.Get("k", fmt.Sprintf("c%d", maxPerSession+4)); !ok {
		t.Error("newest artifact missing")
	}
}

func TestStore_Prune(t *testing.T) {
	s := NewStore()
	s.Put("k", &Artifact{Data: []byte("x")})
	if n := s.Prune(time.Hour); n != 0 {
		t.Errorf("pruned %d fresh entries", n)
	}
	if n := s.Prune(-time.Second); n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
