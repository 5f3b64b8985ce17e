package wikitext

import (
	"slices"
	"strings"
)

// DefaultArticleClass is reported when a page carries no assessment.
const DefaultArticleClass = "Start"

// BannerShells are the templates that wrap project banners on talk pages,
// in the order UpsertTemplate tries them.
var BannerShells = []string{"WPBS", "WikiProjectBannerShell", "Banner holder"}

// inlineTemplates are kept in a lede; every other top-level template is page
// furniture.
var inlineTemplates = map[string]bool{
	"Lang":    true,
	"Nihongo": true,
	"Convert": true,
	"As of":   true,
	"Sc":      true,
}

var infoboxKinds = map[string]bool{
	"Speciesbox":    true,
	"Subspeciesbox": true,
	"Taxobox":       true,
}

// Templates returns every template under b, b included, in document order.
// Templates nested in arguments are found too.
func Templates(b Block) []*Template {
	var out []*Template
	var walk func(Block)
	walk = func(b Block) {
		if t, ok := b.(*Template); ok {
			out = append(out, t)
		}
		for _, c := range b.contents() {
			walk(c)
		}
	}
	walk(b)
	return out
}

// TemplatesOfKind returns the templates of kind under b, in document order.
func TemplatesOfKind(b Block, kind string) []*Template {
	kind = NormalizeKind(kind)
	var out []*Template
	for _, t := range Templates(b) {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// FirstTemplateOfKind returns the first template of kind under b, or nil.
func FirstTemplateOfKind(b Block, kind string) *Template {
	if all := TemplatesOfKind(b, kind); len(all) > 0 {
		return all[0]
	}
	return nil
}

// HasTemplateOfKind reports whether any template of kind occurs under b.
func HasTemplateOfKind(b Block, kind string) bool {
	return FirstTemplateOfKind(b, kind) != nil
}

// RemoveTemplatesOfKind deletes every template of kind from doc at any depth
// and reports whether anything was removed. Calling it again is a no-op.
func RemoveTemplatesOfKind(doc *Document, kind string) bool {
	return removeFrom(&doc.Blocks, NormalizeKind(kind))
}

// Lede returns the top-level blocks before the first heading, without
// references and without templates other than inline prose ones. It returns
// nil when nothing is left.
func Lede(doc *Document) *Document {
	var blocks []Block
	for _, b := range doc.Blocks {
		switch c := b.(type) {
		case *Heading:
			return ledeOf(blocks)
		case *Reference:
			continue
		case *Template:
			if !inlineTemplates[c.Kind()] {
				continue
			}
		}
		blocks = append(blocks, b)
	}
	return ledeOf(blocks)
}

func ledeOf(blocks []Block) *Document {
	if len(blocks) == 0 {
		return nil
	}
	return &Document{Blocks: blocks}
}

// Infobox returns the first top-level infobox template, or nil.
func Infobox(doc *Document) *Template {
	for _, b := range doc.Blocks {
		t, ok := b.(*Template)
		if !ok {
			continue
		}
		if kind := t.Kind(); strings.HasPrefix(kind, "Infobox") || infoboxKinds[kind] {
			return t
		}
	}
	return nil
}

// BotsAllowed applies the exclusion-compliance markers to bot: {{nobots}}
// denies everyone, and the first allow= or deny= list on a {{bots}}
// template decides. Pages without markers allow all bots.
func BotsAllowed(doc *Document, bot string) bool {
	if HasTemplateOfKind(doc, "Nobots") {
		return false
	}
	for _, t := range TemplatesOfKind(doc, "Bots") {
		for _, p := range t.Arguments().Params {
			if !p.Keyed {
				continue
			}
			switch p.Name {
			case "allow":
				names := botList(p.String())
				switch {
				case slices.Contains(names, "none"):
					return false
				case slices.Contains(names, "all"):
					return true
				}
				return slices.Contains(names, bot)
			case "deny":
				names := botList(p.String())
				switch {
				case slices.Contains(names, "none"):
					return true
				case slices.Contains(names, "all"):
					return false
				}
				return !slices.Contains(names, bot)
			}
		}
	}
	return true
}

func botList(value string) []string {
	names := strings.Split(value, ",")
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}
	return names
}

// ArticleClass returns the class= assessment of a talk page: from the first
// top-level template carrying one, or from a banner inside a shell. Pages
// without one are DefaultArticleClass.
func ArticleClass(doc *Document) string {
	for _, b := range doc.Blocks {
		t, ok := b.(*Template)
		if !ok {
			continue
		}
		if v, err := t.Param("class"); err == nil {
			return strings.TrimSpace(v)
		}
		if !slices.Contains(BannerShells, t.Kind()) {
			continue
		}
		for _, c := range t.contents() {
			if banner, ok := c.(*Template); ok {
				if v, err := banner.Param("class"); err == nil {
					return strings.TrimSpace(v)
				}
			}
		}
	}
	return DefaultArticleClass
}

// UpsertTemplate sets params on the first template of kind in doc. When there
// is none, it builds one and places it in the first banner shell found,
// trying shells in order (BannerShells when none are given), or else appends
// it to the end of the page on a new line. A param with an empty value is
// removed from an existing template and left out of a new one.
func UpsertTemplate(doc *Document, kind string, params []KeyValue, shells ...string) *Template {
	if t := FirstTemplateOfKind(doc, kind); t != nil {
		for _, kv := range params {
			if kv.Value == "" {
				t.RemoveParam(kv.Key)
			} else {
				t.SetParam(kv.Key, kv.Value)
			}
		}
		return t
	}

	var set []KeyValue
	for _, kv := range params {
		if kv.Value != "" {
			set = append(set, kv)
		}
	}
	t := NewTemplate(kind, set...)

	if len(shells) == 0 {
		shells = BannerShells
	}
	for _, shell := range shells {
		if parent := FirstTemplateOfKind(doc, shell); parent != nil {
			parent.Append(&Text{Text: "\n"}, t, &Text{Text: "\n"})
			return t
		}
	}
	doc.Append(&Debug{Text: "\n"}, t)
	return t
}
