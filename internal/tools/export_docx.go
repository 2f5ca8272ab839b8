package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jobpilot/jobpilot/internal/docx"
	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/shared/llmutils"
)

const previewChars = 1500

// ExportDocxTool renders Markdown the model wrote into a downloadable .docx.
// It runs in-process and replies with an inline-bytes payload.
type ExportDocxTool struct {
	hasResume bool
}

// NewExportDocxTool returns the tool for one turn. hasResume tunes the
// description to the conversation's current resume context.
func NewExportDocxTool(hasResume bool) *ExportDocxTool {
	return &ExportDocxTool{hasResume: hasResume}
}

func (t *ExportDocxTool) Name() string { return string(ToolExportDocx) }

func (t *ExportDocxTool) Description() string {
	desc := "Convert Markdown content (a resume, cover letter or notes) into a Microsoft Word .docx file the user can download."
	if t.hasResume {
		return desc + " The candidate's resume is on file; use it as the source when asked to format or revise it."
	}
	return desc + " No resume is on file yet; ask the user to share one before formatting a resume."
}

func (t *ExportDocxTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"markdown_content": {
				"type": "string",
				"description": "Document body in Markdown"
			},
			"filename": {
				"type": "string",
				"description": "File name for the download",
				"default": "resume.docx"
			}
		},
		"required": ["markdown_content"]
	}`)
}

func (t *ExportDocxTool) ProducesArtifact() bool { return true }

func (t *ExportDocxTool) Execute(_ context.Context, params map[string]any) (schema.Content, error) {
	md, _ := params["markdown_content"].(string)
	if strings.TrimSpace(md) == "" {
		return schema.Content{}, fmt.Errorf("markdown_content is empty")
	}
	filename, _ := params["filename"].(string)
	filename = DocxFilename(filename, "resume.docx")

	data, err := docx.Render(md)
	if err != nil {
		return schema.Content{}, fmt.Errorf("render docx: %w", err)
	}

	p := Payload{
		Preview:     Preview(md, previewChars),
		FileContent: base64.StdEncoding.EncodeToString(data),
		Filename:    filename,
	}
	return schema.TextContent(p.Encode()), nil
}

// DocxFilename sanitises name to a bare .docx file name, using fallback when empty.
func DocxFilename(name, fallback string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = fallback
	}
	if !strings.HasSuffix(strings.ToLower(name), ".docx") {
		name += ".docx"
	}
	return name
}

// Preview returns the first max characters of text, cut at a line break when possible.
func Preview(text string, max int) string {
	text = strings.TrimSpace(text)
	cut := llmutils.TruncateRunes(text, max)
	if cut == text {
		return text
	}
	if i := strings.LastIndex(cut, "\n"); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "\n..."
}
