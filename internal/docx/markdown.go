// Package docx renders Markdown into .docx documents and extracts plain
// text back out of them.
package docx

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

type run struct {
	text   string
	bold   bool
	italic bool
	mono   bool
	brk    bool
}

type paragraph struct {
	style string
	runs  []run
}

type listState struct {
	ordered bool
	n       int
}

// builder flattens the Markdown AST into styled paragraphs.
type builder struct {
	paras   []paragraph
	cur     *paragraph
	bold    int
	italic  int
	lists   []listState
	pending string // list marker waiting for the item's first paragraph
}

// parseMarkdown parses md and returns the paragraphs of the document.
func parseMarkdown(md string) []paragraph {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := markdown.Parse([]byte(md), p)

	b := &builder{}
	ast.WalkFunc(doc, b.visit)
	b.close()
	return b.paras
}

func (b *builder) visit(node ast.Node, entering bool) ast.WalkStatus {
	switch n := node.(type) {
	case *ast.Heading:
		if entering {
			level := n.Level
			if level > 3 {
				level = 3
			}
			b.open(fmt.Sprintf("Heading%d", level))
		} else {
			b.close()
		}
	case *ast.Paragraph:
		if entering {
			style := "Normal"
			if len(b.lists) > 0 {
				style = "ListParagraph"
			}
			b.open(style)
		} else {
			b.close()
		}
	case *ast.List:
		if entering {
			b.lists = append(b.lists, listState{ordered: n.ListFlags&ast.ListTypeOrdered != 0})
		} else if len(b.lists) > 0 {
			b.lists = b.lists[:len(b.lists)-1]
		}
	case *ast.ListItem:
		if entering && len(b.lists) > 0 {
			top := &b.lists[len(b.lists)-1]
			top.n++
			indent := strings.Repeat("    ", len(b.lists)-1)
			if top.ordered {
				b.pending = fmt.Sprintf("%s%d. ", indent, top.n)
			} else {
				b.pending = indent + "• "
			}
		} else if !entering {
			b.close()
		}
	case *ast.CodeBlock:
		for _, line := range strings.Split(strings.TrimRight(string(n.Literal), "\n"), "\n") {
			b.open("Normal")
			b.add(run{text: line, mono: true})
			b.close()
		}
	case *ast.HorizontalRule:
		b.close()
		b.paras = append(b.paras, paragraph{style: "Normal"})
	case *ast.Text:
		if len(n.Literal) > 0 {
			b.add(run{text: string(n.Literal)})
		}
	case *ast.Code:
		b.add(run{text: string(n.Literal), mono: true})
	case *ast.Strong:
		if entering {
			b.bold++
		} else {
			b.bold--
		}
	case *ast.Emph:
		if entering {
			b.italic++
		} else {
			b.italic--
		}
	case *ast.Softbreak:
		b.add(run{text: " "})
	case *ast.Hardbreak:
		b.add(run{brk: true})
	}
	return ast.GoToNext
}

func (b *builder) open(style string) {
	b.close()
	b.cur = &paragraph{style: style}
	if b.pending != "" {
		b.cur.runs = append(b.cur.runs, run{text: b.pending})
		b.pending = ""
	}
}

func (b *builder) close() {
	if b.cur == nil {
		return
	}
	if len(b.cur.runs) > 0 {
		b.paras = append(b.paras, *b.cur)
	}
	b.cur = nil
}

func (b *builder) add(r run) {
	if b.cur == nil {
		b.open("Normal")
	}
	r.bold = r.bold || b.bold > 0
	r.italic = r.italic || b.italic > 0
	b.cur.runs = append(b.cur.runs, r)
}
