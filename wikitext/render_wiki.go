package wikitext

import "strings"

// wikiStyle selects between exact and normalized wikitext output.
type wikiStyle int

const (
	styleExact wikiStyle = iota
	styleNormalized
)

// Wiki writes b back as wikitext. For an unedited tree built from
// well-formed input this reproduces the source exactly, except that
// "&nbsp;" comes back as a plain space.
func Wiki(b Block) string {
	var sb strings.Builder
	b.writeWiki(&sb, styleExact)
	return sb.String()
}

// Normalized writes b as wikitext with references reformatted so their body
// sits on its own lines. Every other construct matches Wiki.
func Normalized(b Block) string {
	var sb strings.Builder
	b.writeWiki(&sb, styleNormalized)
	return sb.String()
}

func wikiString(blocks []Block, style wikiStyle) string {
	var sb strings.Builder
	writeWikiAll(&sb, blocks, style)
	return sb.String()
}

func writeWikiAll(sb *strings.Builder, blocks []Block, style wikiStyle) {
	for _, b := range blocks {
		b.writeWiki(sb, style)
	}
}

func (t *Text) writeWiki(sb *strings.Builder, _ wikiStyle)     { sb.WriteString(t.Text) }
func (d *Debug) writeWiki(sb *strings.Builder, _ wikiStyle)    { sb.WriteString(d.Text) }
func (h *HTMLTag) writeWiki(sb *strings.Builder, _ wikiStyle)  { sb.WriteString(h.Tag) }
func (*Bold) writeWiki(sb *strings.Builder, _ wikiStyle)       { sb.WriteString("'''") }
func (*Italic) writeWiki(sb *strings.Builder, _ wikiStyle)     { sb.WriteString("''") }
func (*BoldItalic) writeWiki(sb *strings.Builder, _ wikiStyle) { sb.WriteString("'''''") }
func (c *Comment) writeWiki(sb *strings.Builder, _ wikiStyle)  { sb.WriteString(c.Raw) }
func (d *Document) writeWiki(sb *strings.Builder, s wikiStyle) { writeWikiAll(sb, d.Blocks, s) }
func (t *Template) writeWiki(sb *strings.Builder, s wikiStyle) { t.form.writeWiki(t, sb, s) }

func (h *Heading) writeWiki(sb *strings.Builder, style wikiStyle) {
	tag := strings.Repeat("=", h.Level)
	sb.WriteString(tag)
	writeWikiAll(sb, h.Blocks, style)
	if h.closed {
		sb.WriteString(tag)
	}
}

func (l *Link) writeWiki(sb *strings.Builder, style wikiStyle) {
	sb.WriteString("[[")
	writeWikiAll(sb, l.Blocks, style)
	if l.closed {
		sb.WriteString("]]")
	}
}

func (t *Table) writeWiki(sb *strings.Builder, style wikiStyle) {
	sb.WriteString("{|")
	writeWikiAll(sb, t.Blocks, style)
	if t.closed {
		sb.WriteString("|}")
	}
}

func (r *Reference) writeWiki(sb *strings.Builder, style wikiStyle) {
	sb.WriteString(r.Tag)
	if r.SelfClosing {
		return
	}
	body := wikiString(r.Blocks, style)
	if style == styleNormalized {
		body = "\n" + strings.Trim(body, "\n") + "\n"
	}
	sb.WriteString(body)
	if r.closed {
		sb.WriteString("</ref>")
	}
}

func (originalForm) writeWiki(t *Template, sb *strings.Builder, style wikiStyle) {
	sb.WriteString("{{")
	writeWikiAll(sb, t.raw, style)
	if t.closed {
		sb.WriteString("}}")
	}
}

func (editedForm) writeWiki(t *Template, sb *strings.Builder, style wikiStyle) {
	args := t.Arguments()
	sb.WriteString("{{")
	sb.WriteString(args.Kind.String())
	for _, p := range args.Params {
		sb.WriteString("|")
		if p.Keyed {
			sb.WriteString(p.Key())
			sb.WriteString("=")
		}
		writeWikiAll(sb, p.Value, style)
	}
	if t.closed {
		sb.WriteString("}}")
	}
}
