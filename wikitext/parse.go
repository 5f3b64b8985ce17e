// Package wikitext tokenizes and parses wikitext into a Block tree, renders
// the tree back to exact or normalized wikitext, plain text, or LaTeX, and
// extracts weighted link lists from it.
//
// Parsing favors completing over strictness: constructs it does not know are
// kept verbatim as Debug blocks, and an unterminated link ends at the next
// paragraph break. The only fatal parse condition is a nested raw tag.
//
// A tree belongs to the caller that parsed it. Renders only read it; edits
// (SetParam, RemoveTemplatesOfKind, ...) must not run concurrently with them.
package wikitext

// Parse tokenizes and builds a document from raw page text.
func Parse(text string) (*Document, error) {
	tz := NewTokenizer()
	tokens, err := tz.Tokenize(text)
	if err != nil {
		return nil, err
	}
	doc := Build(tokens)
	doc.Diagnostics.Unhandled = tz.Unhandled()
	return doc, nil
}

// Build feeds tokens, in order, to a fresh Builder.
func Build(tokens []Token) *Document {
	b := NewBuilder()
	for _, tok := range tokens {
		b.Add(tok)
	}
	doc := b.Document()
	doc.Diagnostics.Tokens = len(tokens)
	doc.Diagnostics.MalformedLinks = b.Malformed()
	return doc
}
