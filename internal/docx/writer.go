package docx

import (
	"bytes"
	"fmt"
	"io"

	wml "github.com/fumiama/go-docx"
)

// MimeType is the media type of a .docx document.
const MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Run sizes are in half-points.
var styleSizes = map[string]string{
	"Heading1": "32",
	"Heading2": "28",
	"Heading3": "24",
}

const monoFont = "Consolas"

// Render converts Markdown to a .docx document.
func Render(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, md); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write converts Markdown to a .docx document written to w.
func Write(w io.Writer, md string) error {
	doc := wml.New().WithDefaultTheme()
	for _, p := range parseMarkdown(md) {
		para := doc.AddParagraph()
		for _, r := range p.runs {
			addRun(para, p.style, r)
		}
	}
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("docx: write document: %w", err)
	}
	return nil
}

func addRun(para *wml.Paragraph, style string, r run) {
	text := r.text
	if r.brk {
		text = "\n"
	}
	out := para.AddText(text)
	for _, c := range out.Children {
		if t, ok := c.(*wml.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	if size, ok := styleSizes[style]; ok {
		out.Size(size).Bold()
	}
	if r.bold {
		out.Bold()
	}
	if r.italic {
		out.Italic()
	}
	if r.mono {
		out.Font(monoFont, monoFont, monoFont, "")
	}
}
