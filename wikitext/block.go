package wikitext

import (
	"strings"

	"golang.org/x/net/html"
)

// Block is a node of the document tree. The set of implementations is closed:
// every variant implements each renderer method, so a missing case is a
// compile error rather than a silent fallthrough.
type Block interface {
	writeWiki(sb *strings.Builder, style wikiStyle)
	writeText(sb *strings.Builder)
	writeLatex(sb *strings.Builder, st *latexState) error
	contents() []Block
}

// Container is a Block that owns an ordered child sequence.
type Container interface {
	Block
	Children() []Block
	Closed() bool
}

// container is what the builder needs from an open node.
type container interface {
	Container
	add(Block)
	close()
}

// ========== Leaves ==========

// Text is a plain run of word-like characters, a space, or an entity.
type Text struct {
	Text string
}

// Debug is an opaque token preserved verbatim.
type Debug struct {
	Text string
}

// HTMLTag is one of the allow-listed inline tags.
type HTMLTag struct {
	Tag string
}

// htmlTagAllowList holds the only tags that become HTMLTag blocks.
var htmlTagAllowList = map[string]bool{
	"<sub>":   true,
	"</sub>":  true,
	"<sup>":   true,
	"</sup>":  true,
	"<math>":  true,
	"</math>": true,
}

// Bold is a "'''" marker.
type Bold struct{}

// Italic is a "''" marker.
type Italic struct{}

// BoldItalic is a "'''''" marker.
type BoldItalic struct{}

// Comment holds a raw "<!-- ... -->" run.
type Comment struct {
	Raw string
}

func (*Text) contents() []Block       { return nil }
func (*Debug) contents() []Block      { return nil }
func (*HTMLTag) contents() []Block    { return nil }
func (*Bold) contents() []Block       { return nil }
func (*Italic) contents() []Block     { return nil }
func (*BoldItalic) contents() []Block { return nil }
func (*Comment) contents() []Block    { return nil }

// isDebug reports whether b is the opaque token s.
func isDebug(b Block, s string) bool {
	d, ok := b.(*Debug)
	return ok && d.Text == s
}

// ========== Containers ==========

// Document is the tree root. It is also used for extracted sub-ranges.
type Document struct {
	Blocks []Block

	// Diagnostics collected while parsing; zero for synthesized documents.
	Diagnostics Diagnostics
}

// Diagnostics are non-fatal observations from a parse.
type Diagnostics struct {
	Unhandled      []rune // characters that matched no lexical rule
	MalformedLinks int    // links closed early by a paragraph break
	Tokens         int
}

func (d *Document) Children() []Block { return d.Blocks }
func (d *Document) Closed() bool      { return false }
func (d *Document) contents() []Block { return d.Blocks }
func (d *Document) add(b Block)       { d.Blocks = append(d.Blocks, b) }
func (d *Document) close()            {}

// Append adds blocks at the end of the document.
func (d *Document) Append(blocks ...Block) {
	d.Blocks = append(d.Blocks, blocks...)
}

// Heading is "==...==" with level equal to the delimiter run length.
type Heading struct {
	Level  int
	Blocks []Block
	closed bool
}

func (h *Heading) Children() []Block { return h.Blocks }
func (h *Heading) Closed() bool      { return h.closed }
func (h *Heading) contents() []Block { return h.Blocks }
func (h *Heading) add(b Block)       { h.Blocks = append(h.Blocks, b) }
func (h *Heading) close()            { h.closed = true }

// Link is the content between "[[" and "]]".
type Link struct {
	Blocks []Block

	// Malformed is set when a paragraph break closed the link before "]]".
	Malformed bool
	closed    bool
}

func (l *Link) Children() []Block { return l.Blocks }
func (l *Link) Closed() bool      { return l.closed }
func (l *Link) contents() []Block { return l.Blocks }
func (l *Link) add(b Block)       { l.Blocks = append(l.Blocks, b) }
func (l *Link) close()            { l.closed = true }

// pipeIndex returns the index of the first "|" child, or -1.
func (l *Link) pipeIndex() int {
	for i, b := range l.Blocks {
		if isDebug(b, "|") {
			return i
		}
	}
	return -1
}

// Anchor is the link target with its first letter capitalized, or "" for an
// empty target.
func (l *Link) Anchor() string {
	target := l.Blocks
	if idx := l.pipeIndex(); idx >= 0 {
		target = l.Blocks[:idx]
	}
	return capitalize(strings.TrimSpace(wikiString(target, styleExact)))
}

// Label is the display text: the part after the first "|" when present,
// otherwise the whole content.
func (l *Link) Label() string {
	display := l.Blocks
	if idx := l.pipeIndex(); idx >= 0 {
		display = l.Blocks[idx+1:]
	}
	return textString(display)
}

// isFile reports whether the link embeds a file rather than pointing at a page.
func (l *Link) isFile() bool {
	anchor := l.Anchor()
	return strings.HasPrefix(anchor, "File:") || strings.HasPrefix(anchor, "Image:")
}

// Table is the content between "{|" and "|}".
type Table struct {
	Blocks []Block
	closed bool
}

func (t *Table) Children() []Block { return t.Blocks }
func (t *Table) Closed() bool      { return t.closed }
func (t *Table) contents() []Block { return t.Blocks }
func (t *Table) add(b Block)       { t.Blocks = append(t.Blocks, b) }
func (t *Table) close()            { t.closed = true }

// Reference is "<ref ...>...</ref>" or a self-closing "<ref .../>".
type Reference struct {
	// Attributes is the trimmed text between "<ref" and ">" ("" for a bare <ref>).
	Attributes string

	// Tag is the opening tag exactly as written.
	Tag string

	// SelfClosing references carry no body.
	SelfClosing bool

	Blocks []Block
	closed bool
}

// newReference builds a Reference from its opening tag.
func newReference(tag string) *Reference {
	switch {
	case tag == "<ref>":
		return &Reference{Tag: tag}
	case strings.HasSuffix(tag, "/>"):
		attrs := strings.TrimSuffix(strings.TrimPrefix(tag, "<ref"), "/>")
		return &Reference{
			Attributes:  strings.TrimSpace(attrs),
			SelfClosing: true,
			Tag:         tag,
			closed:      true,
		}
	default:
		attrs := strings.TrimSuffix(strings.TrimPrefix(tag, "<ref"), ">")
		return &Reference{
			Attributes: strings.TrimSpace(attrs),
			Tag:        tag,
		}
	}
}

// isReferenceTag reports whether a raw tag opens a reference. Other tags
// sharing the prefix, like <references/>, are not references.
func isReferenceTag(tag string) bool {
	if !strings.HasSuffix(tag, ">") {
		return false
	}
	return tag == "<ref>" || strings.HasPrefix(tag, "<ref ") || strings.HasPrefix(tag, "<ref/")
}

func (r *Reference) Children() []Block { return r.Blocks }
func (r *Reference) Closed() bool      { return r.closed }
func (r *Reference) contents() []Block { return r.Blocks }
func (r *Reference) add(b Block)       { r.Blocks = append(r.Blocks, b) }
func (r *Reference) close()            { r.closed = true }

// Attrs parses the opening tag attributes, e.g. name and group.
func (r *Reference) Attrs() map[string]string {
	attrs := make(map[string]string)
	z := html.NewTokenizer(strings.NewReader(r.Tag))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return attrs
		case html.StartTagToken, html.SelfClosingTagToken:
			for {
				key, val, more := z.TagAttr()
				if len(key) > 0 {
					attrs[string(key)] = string(val)
				}
				if !more {
					break
				}
			}
			return attrs
		}
	}
}
