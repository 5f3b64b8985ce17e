package wikitext

import (
	"fmt"
	"strings"
)

// latexState is threaded through one LaTeX render.
type latexState struct {
	mathMode bool
}

// Latex renders b as a LaTeX fragment. The output approximates the page; it
// is not a complete typesetting of it. Edited templates and raw tags outside
// the allow-list fail with *UnsupportedRenderError.
func Latex(b Block) (string, error) {
	var sb strings.Builder
	if err := b.writeLatex(&sb, &latexState{}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeLatexAll(sb *strings.Builder, blocks []Block, st *latexState) error {
	for _, b := range blocks {
		if err := b.writeLatex(sb, st); err != nil {
			return err
		}
	}
	return nil
}

func latexString(blocks []Block, st *latexState) (string, error) {
	var sb strings.Builder
	err := writeLatexAll(&sb, blocks, st)
	return sb.String(), err
}

// Reserved characters escaped in every mode.
var latexEscapes = map[string]string{
	"&": `\&`,
	"#": `\#`,
	"$": `\$`,
	"%": `\%`,
	`"`: `\texttt{"}`,
	"–": "-",
}

// Reserved characters escaped only outside math mode.
var latexTextEscapes = map[string]string{
	"_": `\_`,
	"~": `\textasciitilde{}`,
	"^": `\textasciicircum{}`,
	`\`: `\textbackslash{}`,
}

var latexEntities = map[string]string{
	"&ndash;": "-",
	"&mdash;": "-",
	"&minus;": "-",
	"&sdot;": `$\cdot{}$`,
	"&times;": "*",
}

func (d *Debug) writeLatex(sb *strings.Builder, st *latexState) error {
	if s, ok := latexEscapes[d.Text]; ok {
		sb.WriteString(s)
		return nil
	}
	if !st.mathMode {
		if s, ok := latexTextEscapes[d.Text]; ok {
			sb.WriteString(s)
			return nil
		}
	}
	if len(d.Text) > 1 && strings.HasPrefix(d.Text, "<") && strings.HasSuffix(d.Text, ">") {
		return &UnsupportedRenderError{Renderer: "latex", Construct: d.Text, Reason: "tag is not allow-listed"}
	}
	sb.WriteString(d.Text)
	return nil
}

func (t *Text) writeLatex(sb *strings.Builder, st *latexState) error {
	if s, ok := latexEntities[t.Text]; ok {
		sb.WriteString(s)
		return nil
	}
	switch {
	case t.Text == "&deg;":
		if st.mathMode {
			sb.WriteString(`^{\circ}`)
		} else {
			sb.WriteString(`\textdegree{}`)
		}
	case strings.HasPrefix(t.Text, "&"):
		sb.WriteString(`\` + t.Text)
	default:
		sb.WriteString(t.Text)
	}
	return nil
}

func (h *HTMLTag) writeLatex(sb *strings.Builder, st *latexState) error {
	switch h.Tag {
	case "<sub>":
		sb.WriteString(`\textsubscript{`)
	case "<sup>":
		sb.WriteString(`\textsuperscript{`)
	case "</sub>", "</sup>":
		sb.WriteString("}")
	case "<math>":
		st.mathMode = true
		sb.WriteString("$")
	case "</math>":
		st.mathMode = false
		sb.WriteString("$")
	default:
		return &UnsupportedRenderError{Renderer: "latex", Construct: h.Tag, Reason: "tag is not allow-listed"}
	}
	return nil
}

func (*Bold) writeLatex(*strings.Builder, *latexState) error       { return nil }
func (*Italic) writeLatex(*strings.Builder, *latexState) error     { return nil }
func (*BoldItalic) writeLatex(*strings.Builder, *latexState) error { return nil }
func (*Comment) writeLatex(*strings.Builder, *latexState) error    { return nil }
func (*Reference) writeLatex(*strings.Builder, *latexState) error  { return nil }

func (d *Document) writeLatex(sb *strings.Builder, st *latexState) error {
	return writeLatexAll(sb, d.Blocks, st)
}

func (h *Heading) writeLatex(sb *strings.Builder, st *latexState) error {
	return writeLatexAll(sb, h.Blocks, st)
}

func (t *Table) writeLatex(sb *strings.Builder, st *latexState) error {
	return writeLatexAll(sb, t.Blocks, st)
}

func (t *Template) writeLatex(sb *strings.Builder, st *latexState) error {
	return t.form.writeLatex(t, sb, st)
}

// Links render as emphasized display text.
func (l *Link) writeLatex(sb *strings.Builder, st *latexState) error {
	if l.isFile() {
		return nil
	}
	display := l.Blocks
	if idx := l.pipeIndex(); idx >= 0 {
		display = l.Blocks[idx+1:]
	}
	text, err := latexString(display, st)
	if err != nil {
		return err
	}
	sb.WriteString(`\emph{` + text + "}")
	return nil
}

// A few gloss templates are rewritten from their "|"-split rendered body.
// An argument that itself renders a "|" shifts the fields.
func (originalForm) writeLatex(t *Template, sb *strings.Builder, st *latexState) error {
	body, err := latexString(t.raw, st)
	if err != nil {
		return err
	}
	fields := strings.Split(body, "|")
	kind := t.Kind()

	need := func(n int) error {
		if len(fields) < n {
			return &UnsupportedRenderError{
				Renderer:  "latex",
				Construct: kind,
				Reason:    fmt.Sprintf("want at least %d fields, got %d", n, len(fields)),
			}
		}
		return nil
	}

	switch kind {
	case "Lang":
		if err := need(3); err != nil {
			return err
		}
		sb.WriteString(fields[2])
	case "Nihongo":
		if err := need(3); err != nil {
			return err
		}
		fmt.Fprintf(sb, "%s (%s)", fields[1], fields[2])
	case "Convert":
		if err := need(3); err != nil {
			return err
		}
		if fields[2] == "to" {
			if err := need(5); err != nil {
				return err
			}
			fmt.Fprintf(sb, "%s-%s %s", fields[1], fields[3], fields[4])
		} else {
			fmt.Fprintf(sb, "%s %s", fields[1], fields[2])
		}
	case "As of":
		if err := need(2); err != nil {
			return err
		}
		sb.WriteString("as of " + fields[1])
	case "Sc":
		if len(fields) == 2 {
			fmt.Fprintf(sb, `\textsc{%s}`, fields[1])
		} else {
			sb.WriteString(body)
		}
	default:
		sb.WriteString(body)
	}
	return nil
}

func (editedForm) writeLatex(t *Template, _ *strings.Builder, _ *latexState) error {
	return &UnsupportedRenderError{Renderer: "latex", Construct: t.Kind(), Reason: "template was edited"}
}
