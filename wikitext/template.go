package wikitext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// capitalize upper-cases the first letter and keeps the rest as written.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return upper.String(string(r)) + s[size:]
}

// NormalizeKind puts a template name in the form Kind() reports.
func NormalizeKind(kind string) string {
	return capitalize(strings.TrimSpace(kind))
}

// Kind is a template name plus the metadata needed to write it back exactly.
type Kind struct {
	Name         string // normalized: trimmed, first letter upper-cased
	WasLowercase bool   // first letter was written in lower case
	Leading      string // whitespace before the name
	Trailing     string // whitespace after the name, e.g. "\n" before the first "|"

	first string // first letter as written when WasLowercase
}

func parseKind(raw string) Kind {
	trimmedLeft := strings.TrimLeftFunc(raw, unicode.IsSpace)
	name := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	k := Kind{
		Leading:  raw[:len(raw)-len(trimmedLeft)],
		Trailing: trimmedLeft[len(name):],
	}
	if norm := capitalize(name); norm != name {
		_, size := utf8.DecodeRuneInString(name)
		k.WasLowercase = true
		k.first = name[:size]
		k.Name = norm
	} else {
		k.Name = name
	}
	return k
}

// String writes the kind back in its original form.
func (k Kind) String() string {
	name := k.Name
	if k.WasLowercase {
		first := k.first
		if first == "" {
			r, _ := utf8.DecodeRuneInString(name)
			first = string(unicode.ToLower(r))
		}
		name = first + name[len(capitalize(first)):]
	}
	return k.Leading + name + k.Trailing
}

// Param is one "|"-separated template argument.
type Param struct {
	// Name is the trimmed key; empty for positional arguments.
	Name  string
	Keyed bool
	Value []Block

	key []Block // key blocks as written, including surrounding whitespace
}

// Key returns the key as written, whitespace included.
func (p *Param) Key() string {
	if p.key == nil {
		return p.Name
	}
	return wikiString(p.key, styleExact)
}

// String returns the value as wikitext.
func (p *Param) String() string { return wikiString(p.Value, styleExact) }

// Arguments is the parsed form of a template body: the kind followed by its
// parameters in document order. Keyed lookups see the last occurrence of a key.
type Arguments struct {
	Kind   Kind
	Params []*Param
}

// parseArguments splits children on "|" tokens. The first group names the
// kind; a group holding "=" is keyed, any other group is positional.
func parseArguments(children []Block) *Arguments {
	var groups [][]Block
	group := []Block{}
	for _, b := range children {
		if isDebug(b, "|") {
			groups = append(groups, group)
			group = []Block{}
			continue
		}
		group = append(group, b)
	}
	groups = append(groups, group)

	args := &Arguments{Kind: parseKind(wikiString(groups[0], styleExact))}
	for _, g := range groups[1:] {
		p := &Param{Value: g}
		for i, b := range g {
			if isDebug(b, "=") {
				p.Keyed = true
				p.key = g[:i]
				p.Name = strings.TrimSpace(wikiString(g[:i], styleExact))
				p.Value = g[i+1:]
				break
			}
		}
		args.Params = append(args.Params, p)
	}
	return args
}

// lookup returns the last parameter with the given key.
func (a *Arguments) lookup(key string) (*Param, int) {
	for i := len(a.Params) - 1; i >= 0; i-- {
		if p := a.Params[i]; p.Keyed && p.Name == key {
			return p, i
		}
	}
	return nil, -1
}

// Template is the content between "{{" and "}}".
//
// A template starts in its original form and is written back from its raw
// children. The first SetParam, RemoveParam, Append on an edited template, or
// a removal inside RemoveTemplatesOfKind moves it to the edited form for good:
// from then on it is written from its Arguments, and LaTeX rendering fails.
type Template struct {
	raw    []Block
	args   *Arguments
	form   templateForm
	closed bool
}

// NewTemplate builds a closed template from a kind and keyed values, in order.
// The result is in edited form and serializes as {{kind|k1=v1|k2=v2}}.
func NewTemplate(kind string, params ...KeyValue) *Template {
	t := &Template{
		args:   &Arguments{Kind: parseKind(kind)},
		form:   editedForm{},
		closed: true,
	}
	for _, kv := range params {
		t.args.Params = append(t.args.Params, &Param{
			Name:  kv.Key,
			Keyed: true,
			Value: []Block{&Text{Text: kv.Value}},
		})
	}
	return t
}

// KeyValue is an ordered parameter assignment.
type KeyValue struct {
	Key   string
	Value string
}

func newTemplate() *Template {
	return &Template{form: originalForm{}}
}

func (t *Template) add(b Block) { t.raw = append(t.raw, b) }

func (t *Template) close() {
	t.closed = true
	t.args = parseArguments(t.raw)
}

// Closed reports whether "}}" was seen.
func (t *Template) Closed() bool { return t.closed }

// Children returns the raw child sequence as parsed. Once the template is
// edited, this no longer reflects what is written back; use Arguments.
func (t *Template) Children() []Block { return t.raw }

// Edited reports whether the template has left its original form.
func (t *Template) Edited() bool {
	_, ok := t.form.(editedForm)
	return ok
}

// Arguments returns the parsed argument model, parsing lazily if needed.
func (t *Template) Arguments() *Arguments {
	if t.args == nil {
		t.args = parseArguments(t.raw)
	}
	return t.args
}

// Kind returns the normalized template name.
func (t *Template) Kind() string { return t.Arguments().Kind.Name }

// HasParam reports whether key is present.
func (t *Template) HasParam(key string) bool {
	p, _ := t.Arguments().lookup(key)
	return p != nil
}

// Param returns the wikitext value of key, or *MissingParameterError.
func (t *Template) Param(key string) (string, error) {
	p, _ := t.Arguments().lookup(key)
	if p == nil {
		return "", &MissingParameterError{Template: t.Kind(), Key: key}
	}
	return p.String(), nil
}

// Keys returns the keyed parameter names in document order.
func (t *Template) Keys() []string {
	var keys []string
	for _, p := range t.Arguments().Params {
		if p.Keyed {
			keys = append(keys, p.Name)
		}
	}
	return keys
}

// Positional returns the positional argument values in order.
func (t *Template) Positional() []string {
	var values []string
	for _, p := range t.Arguments().Params {
		if !p.Keyed {
			values = append(values, p.String())
		}
	}
	return values
}

// Sections returns every argument as written, "key=value" or "value".
func (t *Template) Sections() []string {
	params := t.Arguments().Params
	sections := make([]string, 0, len(params))
	for _, p := range params {
		if p.Keyed {
			sections = append(sections, p.Key()+"="+p.String())
		} else {
			sections = append(sections, p.String())
		}
	}
	return sections
}

// SetParam overwrites key with a single text value, appending the key when
// absent. Whitespace around an existing value is kept. The template moves to
// its edited form.
func (t *Template) SetParam(key, value string) {
	args := t.Arguments()
	if p, _ := args.lookup(key); p != nil {
		old := p.String()
		trimmedLeft := strings.TrimLeftFunc(old, unicode.IsSpace)
		core := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
		lead, trail := old[:len(old)-len(trimmedLeft)], trimmedLeft[len(core):]
		p.Value = []Block{&Text{Text: lead + value + trail}}
	} else {
		args.Params = append(args.Params, &Param{
			Name:  key,
			Keyed: true,
			Value: []Block{&Text{Text: value}},
		})
	}
	t.form = editedForm{}
}

// RemoveParam deletes every occurrence of key. The template moves to its
// edited form whether or not the key was present.
func (t *Template) RemoveParam(key string) {
	args := t.Arguments()
	kept := args.Params[:0]
	for _, p := range args.Params {
		if p.Keyed && p.Name == key {
			continue
		}
		kept = append(kept, p)
	}
	args.Params = kept
	t.form = editedForm{}
}

// Append adds blocks to the end of the template body. An original-form
// template takes them as raw children and is re-parsed; an edited one adds
// them to its last argument, or to a new positional argument when it has none.
func (t *Template) Append(blocks ...Block) {
	if !t.Edited() {
		t.raw = append(t.raw, blocks...)
		t.args = parseArguments(t.raw)
		return
	}
	args := t.Arguments()
	if len(args.Params) == 0 {
		args.Params = append(args.Params, &Param{})
	}
	last := args.Params[len(args.Params)-1]
	last.Value = append(last.Value, blocks...)
}

// RemoveTemplatesOfKind deletes every nested template of the given kind at
// any depth below t, and reports whether anything was removed. Each template
// that lost a direct child moves to its edited form; the others keep theirs.
func (t *Template) RemoveTemplatesOfKind(kind string) bool {
	kind = NormalizeKind(kind)
	removed := false
	for _, p := range t.Arguments().Params {
		var n int
		p.Value, n = removeKind(p.Value, kind)
		if n > 0 {
			t.form = editedForm{}
			removed = true
		}
		if removeNested(p.Value, kind) {
			removed = true
		}
	}
	return removed
}

// removeKind drops direct children that are templates of kind.
func removeKind(blocks []Block, kind string) ([]Block, int) {
	kept := make([]Block, 0, len(blocks))
	n := 0
	for _, b := range blocks {
		if tpl, ok := b.(*Template); ok && tpl.Kind() == kind {
			n++
			continue
		}
		kept = append(kept, b)
	}
	return kept, n
}

// removeNested recurses into every container among blocks.
func removeNested(blocks []Block, kind string) bool {
	removed := false
	for _, b := range blocks {
		switch c := b.(type) {
		case *Template:
			if c.RemoveTemplatesOfKind(kind) {
				removed = true
			}
		case *Heading:
			if removeFrom(&c.Blocks, kind) {
				removed = true
			}
		case *Link:
			if removeFrom(&c.Blocks, kind) {
				removed = true
			}
		case *Table:
			if removeFrom(&c.Blocks, kind) {
				removed = true
			}
		case *Reference:
			if removeFrom(&c.Blocks, kind) {
				removed = true
			}
		case *Document:
			if removeFrom(&c.Blocks, kind) {
				removed = true
			}
		}
	}
	return removed
}

// removeFrom removes templates of kind from a non-template container's
// children and below.
func removeFrom(blocks *[]Block, kind string) bool {
	var n int
	*blocks, n = removeKind(*blocks, kind)
	nested := removeNested(*blocks, kind)
	return n > 0 || nested
}

// templateForm is the state of a Template: original or edited. Both forms
// implement every write path, so dispatch is total.
type templateForm interface {
	writeWiki(t *Template, sb *strings.Builder, style wikiStyle)
	writeText(t *Template, sb *strings.Builder)
	writeLatex(t *Template, sb *strings.Builder, st *latexState) error
	contents(t *Template) []Block
}

// originalForm writes the raw children back byte for byte.
type originalForm struct{}

// editedForm writes from the argument model.
type editedForm struct{}

func (originalForm) contents(t *Template) []Block { return t.raw }

func (editedForm) contents(t *Template) []Block {
	var out []Block
	for _, p := range t.Arguments().Params {
		out = append(out, p.key...)
		out = append(out, p.Value...)
	}
	return out
}

func (t *Template) contents() []Block { return t.form.contents(t) }
