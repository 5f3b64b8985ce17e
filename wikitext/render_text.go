package wikitext

import "strings"

// PlainText strips markup from b. Formatting markers, comments, references
// and embedded files vanish; links keep only their display text.
func PlainText(b Block) string {
	var sb strings.Builder
	b.writeText(&sb)
	return sb.String()
}

func textString(blocks []Block) string {
	var sb strings.Builder
	writeTextAll(&sb, blocks)
	return sb.String()
}

func writeTextAll(sb *strings.Builder, blocks []Block) {
	for _, b := range blocks {
		b.writeText(sb)
	}
}

func (t *Text) writeText(sb *strings.Builder)  { sb.WriteString(t.Text) }
func (d *Debug) writeText(sb *strings.Builder) { sb.WriteString(d.Text) }
func (*HTMLTag) writeText(*strings.Builder)    {}
func (*Bold) writeText(*strings.Builder)       {}
func (*Italic) writeText(*strings.Builder)     {}
func (*BoldItalic) writeText(*strings.Builder) {}
func (*Comment) writeText(*strings.Builder)    {}
func (*Reference) writeText(*strings.Builder)  {}

func (d *Document) writeText(sb *strings.Builder) { writeTextAll(sb, d.Blocks) }
func (h *Heading) writeText(sb *strings.Builder)  { writeTextAll(sb, h.Blocks) }
func (t *Table) writeText(sb *strings.Builder)    { writeTextAll(sb, t.Blocks) }
func (t *Template) writeText(sb *strings.Builder) { t.form.writeText(t, sb) }

func (l *Link) writeText(sb *strings.Builder) {
	switch {
	case l.isFile():
	case len(l.Blocks) == 1:
		l.Blocks[0].writeText(sb)
	default:
		sb.WriteString(l.Label())
	}
}

func (originalForm) writeText(t *Template, sb *strings.Builder) {
	writeTextAll(sb, t.raw)
}

func (editedForm) writeText(t *Template, sb *strings.Builder) {
	args := t.Arguments()
	sb.WriteString(args.Kind.Name)
	for _, p := range args.Params {
		sb.WriteString("|")
		if p.Keyed {
			sb.WriteString(p.Name)
			sb.WriteString("=")
		}
		writeTextAll(sb, p.Value)
	}
}
