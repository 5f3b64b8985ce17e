package wikitext

import "strings"

// Builder turns a token sequence into a Block tree. It keeps an explicit
// stack of open containers; stack[0] is the document and the top receives
// each token that no open container claims as its terminator.
type Builder struct {
	doc       *Document
	stack     []container
	malformed int
}

// NewBuilder returns a builder with an empty document.
func NewBuilder() *Builder {
	doc := &Document{}
	return &Builder{doc: doc, stack: []container{doc}}
}

// Document returns the tree built so far.
func (b *Builder) Document() *Document { return b.doc }

// Malformed returns the number of links closed early by a paragraph break.
func (b *Builder) Malformed() int { return b.malformed }

func (b *Builder) top() container { return b.stack[len(b.stack)-1] }

func (b *Builder) push(c container) {
	b.top().add(c)
	b.stack = append(b.stack, c)
}

// popTo closes the container at depth i and discards everything above it.
// Containers above i stay unterminated.
func (b *Builder) popTo(i int) {
	b.stack[i].close()
	b.stack = b.stack[:i]
}

// Add routes one token into the tree.
func (b *Builder) Add(tok Token) {
	// A reference ends at </ref> and a link at a paragraph break even when a
	// nested container is still open; the outermost such container wins.
	for i := 1; i < len(b.stack); i++ {
		switch c := b.stack[i].(type) {
		case *Reference:
			if tok.Kind == TokenTag && tok.Text == "</ref>" {
				b.popTo(i)
				return
			}
		case *Link:
			if isParagraphBreak(tok) {
				c.Malformed = true
				b.malformed++
				b.stack = b.stack[:i]
				b.dispatch(tok)
				return
			}
		}
	}

	if b.terminates(tok) {
		b.popTo(len(b.stack) - 1)
		return
	}
	b.dispatch(tok)
}

func isParagraphBreak(tok Token) bool {
	return tok.Kind == TokenRun && strings.HasPrefix(tok.Text, "\n\n")
}

// terminates reports whether tok closes the innermost open container.
func (b *Builder) terminates(tok Token) bool {
	switch c := b.top().(type) {
	case *Heading:
		return tok.Kind == TokenRun && tok.Text == strings.Repeat("=", c.Level)
	case *Link:
		return tok.Kind == TokenRun && tok.Text == "]]"
	case *Template:
		return tok.Kind == TokenRun && tok.Text == "}}"
	case *Table:
		return tok.Kind == TokenTableClose
	}
	return false
}

// dispatch appends a leaf to the innermost container or opens a new one.
func (b *Builder) dispatch(tok Token) {
	parent := b.top()
	switch tok.Kind {
	case TokenWord, TokenSpace:
		parent.add(&Text{Text: tok.Text})

	case TokenEntity:
		if tok.Text == "&nbsp;" {
			parent.add(&Text{Text: " "})
		} else {
			parent.add(&Text{Text: tok.Text})
		}

	case TokenComment:
		parent.add(&Comment{Raw: tok.Text})

	case TokenTag:
		switch {
		case isReferenceTag(tok.Text):
			ref := newReference(tok.Text)
			if ref.SelfClosing {
				parent.add(ref)
			} else {
				b.push(ref)
			}
		case htmlTagAllowList[tok.Text]:
			parent.add(&HTMLTag{Tag: tok.Text})
		default:
			parent.add(&Debug{Text: tok.Text})
		}

	case TokenTableOpen:
		b.push(&Table{})

	case TokenRun:
		b.dispatchRun(parent, tok.Text)

	default:
		parent.add(&Debug{Text: tok.Text})
	}
}

func (b *Builder) dispatchRun(parent container, run string) {
	switch run {
	case "[[":
		b.push(&Link{})
		return
	case "{{":
		b.push(newTemplate())
		return
	case "'''":
		parent.add(&Bold{})
		return
	case "''":
		parent.add(&Italic{})
		return
	case "'''''":
		parent.add(&BoldItalic{})
		return
	}
	// Longer quote runs keep their leading apostrophes as text:
	// "''''" is an apostrophe before bold, six or more end in bold italic.
	if n := len(run); n >= 4 && strings.Trim(run, "'") == "" {
		if n == 4 {
			parent.add(&Debug{Text: "'"})
			parent.add(&Bold{})
		} else {
			parent.add(&Debug{Text: run[:n-5]})
			parent.add(&BoldItalic{})
		}
		return
	}
	// Headings open only at document level; a lone "=" separates template keys.
	if _, atRoot := parent.(*Document); atRoot && len(run) >= 2 && len(run) <= 6 && strings.Trim(run, "=") == "" {
		b.push(&Heading{Level: len(run)})
		return
	}
	parent.add(&Debug{Text: run})
}
