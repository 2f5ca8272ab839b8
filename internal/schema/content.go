package schema

import "strings"

// ContentKind tags the shape of a tool reply.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentParts
)

// PartKind tags one element of a multi-part reply.
type PartKind int

const (
	PartText PartKind = iota
	PartOther
)

// Part is one element of a multi-part reply. Other parts carry their
// string representation in Text.
type Part struct {
	Kind PartKind
	Text string
}

// TextPart returns a text part.
func TextPart(s string) Part { return Part{Kind: PartText, Text: s} }

// OtherPart returns a non-text part rendered as s.
func OtherPart(s string) Part { return Part{Kind: PartOther, Text: s} }

// Content is a tool reply: either a single string or an ordered sequence of parts.
type Content struct {
	kind  ContentKind
	text  string
	parts []Part
}

// TextContent returns a single-string reply.
func TextContent(s string) Content {
	return Content{kind: ContentText, text: s}
}

// PartsContent returns a multi-part reply.
func PartsContent(parts ...Part) Content {
	cp := make([]Part, len(parts))
	copy(cp, parts)
	return Content{kind: ContentParts, parts: cp}
}

// Kind returns the variant tag.
func (c Content) Kind() ContentKind { return c.kind }

// Parts returns the parts of a multi-part reply, or nil for a text reply.
func (c Content) Parts() []Part { return c.parts }

// String normalises the reply to text: a text reply is returned as is,
// parts are joined with newlines in order.
func (c Content) String() string {
	if c.kind == ContentText {
		return c.text
	}
	texts := make([]string, 0, len(c.parts))
	for _, p := range c.parts {
		if p.Text == "" {
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}
