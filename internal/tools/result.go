package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Payload is the structured reply of an artifact-producing tool:
// {"preview", "file_path" | "file_content" (base64), "filename"}.
type Payload struct {
	Preview     string `json:"preview,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	FileContent string `json:"file_content,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Error       string `json:"error,omitempty"`
}

// HasFile reports whether the payload references a document.
func (p *Payload) HasFile() bool {
	return p != nil && (p.FileContent != "" || p.FilePath != "")
}

// Encode renders the payload as its JSON wire form.
func (p Payload) Encode() string {
	data, _ := json.Marshal(p)
	return string(data)
}

var errNotPayload = errors.New("object carries none of preview, file_path, file_content, error")

// ParsePayload decodes text as a structured payload.
func ParsePayload(text string) (*Payload, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("reply is not a JSON object")
	}
	var p Payload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return nil, err
	}
	if p.Preview == "" && !p.HasFile() && p.Error == "" {
		return nil, errNotPayload
	}
	return &p, nil
}

// ToolResult is the outcome of one tool call. It is either plain text
// (Payload == nil) or a structured payload. Text always holds the raw
// normalised reply, or the error text for a recovered failure.
type ToolResult struct {
	CallID   string
	ToolName string
	Text     string
	Payload  *Payload
	Err      error // recovered failure, nil on success
}

// IsStructured reports whether the result carries a structured payload.
func (r ToolResult) IsStructured() bool { return r.Payload != nil }

// HistoryText is the content recorded in the tool turn. Inline document
// bytes are never sent back to the model.
func (r ToolResult) HistoryText() string {
	if r.Payload == nil {
		return r.Text
	}
	var sb strings.Builder
	if r.Payload.Preview != "" {
		sb.WriteString(r.Payload.Preview)
	}
	if r.Payload.HasFile() {
		name := r.Payload.Filename
		if name == "" {
			name = "document"
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Document %q was generated and is delivered to the user separately.]", name)
	}
	return sb.String()
}

func errorResult(callID, name string, err error) ToolResult {
	return ToolResult{
		CallID:   callID,
		ToolName: name,
		Text:     "Error: " + err.Error(),
		Err:      err,
	}
}
