// Package artifact turns structured tool payloads into downloadable
// documents and keeps them per conversation, keyed by tool call.
package artifact

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jobpilot/jobpilot/internal/tools"
)

// DefaultFilename is used when a payload names neither a file nor a path.
const DefaultFilename = "document.docx"

// Artifact is a document produced during a turn, ready for delivery.
type Artifact struct {
	ToolName string
	CallID   string
	Preview  string
	Filename string
	Data     []byte
	Path     string // source path, empty for inline payloads
}

// Size returns the document length in bytes.
func (a *Artifact) Size() int { return len(a.Data) }

// ArtifactUnavailableError reports a payload whose file could not be read.
// The preview is still usable.
type ArtifactUnavailableError struct {
	Path string
	Err  error
}

func (e *ArtifactUnavailableError) Error() string {
	return fmt.Sprintf("artifact %s unavailable: %v", e.Path, e.Err)
}

func (e *ArtifactUnavailableError) Unwrap() error { return e.Err }

// Extract materialises the document carried by res.
//
// Inline base64 bytes win over a file path. When inline bytes fail to decode
// the path is tried. A payload with a preview but no file yields nil. When
// the file cannot be read, the returned artifact carries only the preview
// and err is an *ArtifactUnavailableError.
func Extract(res tools.ToolResult) (*Artifact, error) {
	p := res.Payload
	if p == nil || !p.HasFile() {
		return nil, nil
	}
	a := &Artifact{
		ToolName: res.ToolName,
		CallID:   res.CallID,
		Preview:  p.Preview,
		Filename: filename(p),
	}

	if p.FileContent != "" {
		data, err := decodeBase64(p.FileContent)
		if err == nil {
			a.Data = data
			return a, nil
		}
		slog.Warn("Inline document is not valid base64", "tool", res.ToolName, "call_id", res.CallID, "err", err)
		if p.FilePath == "" {
			return &Artifact{ToolName: a.ToolName, CallID: a.CallID, Preview: a.Preview, Filename: a.Filename},
				&ArtifactUnavailableError{Path: "<inline>", Err: err}
		}
	}

	a.Path = p.FilePath
	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		return &Artifact{ToolName: a.ToolName, CallID: a.CallID, Preview: a.Preview, Filename: a.Filename, Path: a.Path},
			&ArtifactUnavailableError{Path: p.FilePath, Err: err}
	}
	a.Data = data
	return a, nil
}

// IsUnavailable reports whether err is an *ArtifactUnavailableError.
func IsUnavailable(err error) bool {
	var ue *ArtifactUnavailableError
	return errors.As(err, &ue)
}

func filename(p *tools.Payload) string {
	if name := strings.TrimSpace(p.Filename); name != "" {
		return filepath.Base(name)
	}
	if p.FilePath != "" {
		return filepath.Base(p.FilePath)
	}
	return DefaultFilename
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	if raw, rerr := base64.RawStdEncoding.DecodeString(s); rerr == nil {
		return raw, nil
	}
	return nil, err
}
