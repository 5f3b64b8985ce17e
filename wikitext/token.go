package wikitext

import (
	"sort"
	"strings"
	"unicode"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenWord       TokenKind = iota // letters, digits and / . , : - ( )
	TokenEntity                      // "&name;" or an unterminated "&..." run
	TokenSpace                       // a single " "
	TokenTag                         // raw "<...>" text
	TokenComment                     // "<!-- ... -->"
	TokenRun                         // run of one of [ { = \n ' ] }
	TokenPipe                        // "|"
	TokenTableOpen                   // "{|"
	TokenTableRow                    // "|-"
	TokenTableClose                  // "|}"
	TokenOther                       // any other single character
)

var tokenKindNames = [...]string{
	TokenWord:       "word",
	TokenEntity:     "entity",
	TokenSpace:      "space",
	TokenTag:        "tag",
	TokenComment:    "comment",
	TokenRun:        "run",
	TokenPipe:       "pipe",
	TokenTableOpen:  "table-open",
	TokenTableRow:   "table-row",
	TokenTableClose: "table-close",
	TokenOther:      "other",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit of wikitext. Concatenating the Text of every
// token reproduces the input exactly.
type Token struct {
	Kind TokenKind
	Text string
}

// Tokenizer splits wikitext into tokens. It tracks four contextual modes:
// plain text, inside a raw tag, inside an HTML comment (nested in tag mode),
// and inside a table. A Tokenizer is meant for a single input.
type Tokenizer struct {
	cur     []rune
	curKind TokenKind
	tokens  []Token

	inText    bool
	inTag     bool
	inComment bool
	inTable   bool

	unhandled map[rune]struct{}
}

// NewTokenizer returns a tokenizer ready for one input.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{unhandled: make(map[rune]struct{})}
}

func isWordRune(c rune) bool {
	if unicode.IsLetter(c) || unicode.IsNumber(c) {
		return true
	}
	switch c {
	case '/', '.', ',', ':', '-', '(', ')':
		return true
	}
	return false
}

func isRunRune(c rune) bool {
	switch c {
	case '[', '{', '=', '\n', '\'':
		return true
	}
	return false
}

func (t *Tokenizer) current() string { return string(t.cur) }

func (t *Tokenizer) start(kind TokenKind, c rune) {
	t.flush()
	t.curKind = kind
	t.cur = append(t.cur, c)
}

func (t *Tokenizer) flush() {
	if len(t.cur) == 0 {
		return
	}
	t.tokens = append(t.tokens, Token{Kind: t.curKind, Text: string(t.cur)})
	t.cur = t.cur[:0]
}

func (t *Tokenizer) emit(kind TokenKind, text string) {
	t.flush()
	t.tokens = append(t.tokens, Token{Kind: kind, Text: text})
}

// Tokenize consumes text and returns its token sequence. The only fatal
// condition is a nested raw tag, reported as *NestedTagError.
func (t *Tokenizer) Tokenize(text string) ([]Token, error) {
	offset := -1
	for _, c := range text {
		offset++

		if t.inTag {
			if err := t.tagRune(c, offset); err != nil {
				return nil, err
			}
			continue
		}

		if t.inTable && (c == '|' || c == '-' || c == '}') {
			cur := t.current()
			if cur == "|" && c == '-' {
				t.cur = append(t.cur, c)
				t.curKind = TokenTableRow
				t.flush()
				continue
			}
			if cur == "|" && c == '}' {
				t.cur = append(t.cur, c)
				t.curKind = TokenTableClose
				t.flush()
				t.inTable = false
				continue
			}
			if c == '|' {
				t.start(TokenPipe, c)
				t.inText = false
				continue
			}
		}
		if t.inTable && t.current() == "|" {
			t.flush()
		}

		switch {
		case isWordRune(c):
			if t.inText {
				t.cur = append(t.cur, c)
			} else {
				t.start(TokenWord, c)
				t.inText = true
			}

		case c == ';':
			if t.inText && len(t.cur) > 0 && t.cur[0] == '&' {
				t.cur = append(t.cur, c)
				t.flush()
			} else {
				t.emit(TokenOther, ";")
			}
			t.inText = false

		case c == '&':
			t.start(TokenEntity, c)
			t.inText = true

		case c == '<':
			t.start(TokenTag, c)
			t.inText = false
			t.inTag = true

		case c == '|':
			if t.current() == "{" {
				t.cur = append(t.cur, c)
				t.curKind = TokenTableOpen
				t.flush()
				t.inTable = true
			} else {
				t.emit(TokenPipe, "|")
			}
			t.inText = false

		case c == ']' || c == '}':
			if t.current() == string(c) {
				t.cur = append(t.cur, c)
			} else {
				t.start(TokenRun, c)
				t.inText = false
			}

		case isRunRune(c):
			if len(t.cur) > 0 && t.curKind == TokenRun && t.cur[0] == c {
				t.cur = append(t.cur, c)
			} else {
				t.start(TokenRun, c)
				t.inText = false
			}

		case c == ' ':
			t.emit(TokenSpace, " ")
			t.inText = false

		default:
			t.unhandled[c] = struct{}{}
			t.emit(TokenOther, string(c))
			t.inText = false
		}
	}
	t.flush()
	return t.tokens, nil
}

// tagRune handles one rune while a raw tag is open.
func (t *Tokenizer) tagRune(c rune, offset int) error {
	if t.inComment {
		t.cur = append(t.cur, c)
		if c == '>' && strings.HasSuffix(string(t.cur), "-->") {
			t.flush()
			t.inTag = false
			t.inComment = false
		}
		return nil
	}
	if t.current() == "<!--" {
		t.curKind = TokenComment
		t.inComment = true
		t.cur = append(t.cur, c)
		return nil
	}
	if c == '<' {
		return &NestedTagError{Offset: offset, Open: t.current()}
	}
	t.cur = append(t.cur, c)
	if c == '>' {
		t.flush()
		t.inTag = false
	}
	return nil
}

// Unhandled returns the sorted set of characters that fell through every
// lexical rule. It is diagnostic only.
func (t *Tokenizer) Unhandled() []rune {
	out := make([]rune, 0, len(t.unhandled))
	for c := range t.unhandled {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
