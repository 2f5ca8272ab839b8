package docx

import (
	"bytes"
	"fmt"
	"strings"

	wml "github.com/fumiama/go-docx"
)

// ExtractText returns the plain text of a .docx document, one line per
// paragraph. Tables come out as Markdown-style rows.
func ExtractText(data []byte) (string, error) {
	doc, err := wml.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: parse document: %w", err)
	}
	lines := make([]string, 0, len(doc.Document.Body.Items))
	for _, it := range doc.Document.Body.Items {
		switch o := it.(type) {
		case *wml.Paragraph:
			lines = append(lines, o.String())
		case *wml.Table:
			lines = append(lines, o.String())
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}
