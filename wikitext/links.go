package wikitext

import "strings"

// WeightedLink is a link anchor with its relevance weight.
type WeightedLink struct {
	Anchor string  `json:"anchor"`
	Weight float64 `json:"weight"`
}

const (
	leadBoost = 1.5
	tailDamp  = 0.7
)

// Links returns the anchor of every link under b in document order. Links
// with an empty target are skipped.
func Links(b Block) []string {
	var out []string
	walkLinks(b, func(l *Link) {
		if a := l.Anchor(); a != "" {
			out = append(out, a)
		}
	})
	return out
}

// ArticleLinks returns the distinct anchors under b that carry no namespace
// prefix, in order of first appearance.
func ArticleLinks(b Block) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range Links(b) {
		if IsArticleAnchor(a) && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// IsArticleAnchor reports whether anchor is in the article namespace.
func IsArticleAnchor(anchor string) bool { return !strings.Contains(anchor, ":") }

// TextAfterMarker returns the text between the first occurrence of marker
// and the next one, or the end of text. ok is false when marker is absent.
func TextAfterMarker(text, marker string) (section string, ok bool) {
	_, after, ok := strings.Cut(text, marker)
	if !ok {
		return "", false
	}
	section, _, _ = strings.Cut(after, marker)
	return section, true
}

func walkLinks(b Block, fn func(*Link)) {
	if l, ok := b.(*Link); ok {
		fn(l)
		return
	}
	for _, c := range b.contents() {
		walkLinks(c, fn)
	}
}

// WeightedLinks returns the links under b with a weight each. A direct link
// weighs 1 and every enclosing reference or template halves it. The first
// quarter of the result is then boosted and the last quarter damped; lists
// shorter than four entries keep their weights.
func WeightedLinks(b Block) []WeightedLink {
	links := collectWeighted(b)
	cutoff := len(links) / 4
	if cutoff == 0 {
		return links
	}
	for i := 0; i < cutoff; i++ {
		links[i].Weight *= leadBoost
		links[len(links)-1-i].Weight *= tailDamp
	}
	return links
}

func collectWeighted(b Block) []WeightedLink {
	if l, ok := b.(*Link); ok {
		if a := l.Anchor(); a != "" {
			return []WeightedLink{{Anchor: a, Weight: 1}}
		}
		return nil
	}
	var links []WeightedLink
	for _, c := range b.contents() {
		links = append(links, collectWeighted(c)...)
	}
	switch b.(type) {
	case *Reference, *Template:
		for i := range links {
			links[i].Weight /= 2
		}
	}
	return links
}
