package wikitext

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "bold and words",
			input: "'''Hello''' world",
			want: []Token{
				{TokenRun, "'''"}, {TokenWord, "Hello"}, {TokenRun, "'''"},
				{TokenSpace, " "}, {TokenWord, "world"},
			},
		},
		{
			name:  "template",
			input: "{{a|b=c}}",
			want: []Token{
				{TokenRun, "{{"}, {TokenWord, "a"}, {TokenPipe, "|"},
				{TokenWord, "b"}, {TokenRun, "="}, {TokenWord, "c"}, {TokenRun, "}}"},
			},
		},
		{
			name:  "entity closes on semicolon",
			input: "&nbsp;x",
			want:  []Token{{TokenEntity, "&nbsp;"}, {TokenWord, "x"}},
		},
		{
			name:  "bare semicolon",
			input: "a;b",
			want:  []Token{{TokenWord, "a"}, {TokenOther, ";"}, {TokenWord, "b"}},
		},
		{
			name:  "closing brackets group in pairs",
			input: "]]]",
			want:  []Token{{TokenRun, "]]"}, {TokenRun, "]"}},
		},
		{
			name:  "opening brackets group fully",
			input: "[[[",
			want:  []Token{{TokenRun, "[[["}},
		},
		{
			name:  "tag",
			input: `<ref name="x">`,
			want:  []Token{{TokenTag, `<ref name="x">`}},
		},
		{
			name:  "comment swallows markup",
			input: "<!-- [[x]] <b> -->y",
			want:  []Token{{TokenComment, "<!-- [[x]] <b> -->"}, {TokenWord, "y"}},
		},
		{
			name:  "table",
			input: "{|\n|-\n|a\n|}",
			want: []Token{
				{TokenTableOpen, "{|"}, {TokenRun, "\n"}, {TokenTableRow, "|-"},
				{TokenRun, "\n"}, {TokenPipe, "|"}, {TokenWord, "a"},
				{TokenRun, "\n"}, {TokenTableClose, "|}"},
			},
		},
		{
			name:  "paragraph break",
			input: "a\n\nb",
			want:  []Token{{TokenWord, "a"}, {TokenRun, "\n\n"}, {TokenWord, "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTokenizer().Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenize_Lossless(t *testing.T) {
	inputs := []string{
		"Plain ''text'' with [[links|labels]] and {{templates|k=v}}.",
		"== Heading ==\n{|\n|-\n| cell || cell\n|}\n",
		"x<ref name=\"a\">{{cite web|url=http://example.com}}</ref> y * z",
		"<!-- unterminated comment",
	}
	for _, in := range inputs {
		tokens, err := NewTokenizer().Tokenize(in)
		if err != nil {
			t.Fatalf("Tokenize(%q) error: %v", in, err)
		}
		var sb strings.Builder
		for _, tok := range tokens {
			sb.WriteString(tok.Text)
		}
		if sb.String() != in {
			t.Errorf("tokens of %q concatenate to %q", in, sb.String())
		}
	}
}

func TestTokenize_NestedTag(t *testing.T) {
	_, err := NewTokenizer().Tokenize("ab<span<b>")
	if err == nil {
		t.Fatal("expected error for nested tag")
	}

	var nested *NestedTagError
	if !errors.As(err, &nested) {
		t.Fatalf("expected *NestedTagError, got %T", err)
	}
	if nested.Offset != 7 {
		t.Errorf("Offset = %d, want 7", nested.Offset)
	}
	if nested.Open != "<span" {
		t.Errorf("Open = %q, want %q", nested.Open, "<span")
	}
	if nested.ErrorCode() != CodeNestedTag {
		t.Errorf("ErrorCode() = %s, want %s", nested.ErrorCode(), CodeNestedTag)
	}
}

func TestNestedTagError_TruncatesByRune(t *testing.T) {
	open := "<span" + strings.Repeat("é", 60)
	_, err := NewTokenizer().Tokenize(open + "<b>")

	var nested *NestedTagError
	if !errors.As(err, &nested) {
		t.Fatalf("expected *NestedTagError, got %v", err)
	}
	msg := nested.Error()
	if !utf8.ValidString(msg) {
		t.Errorf("Error() is not valid UTF-8: %q", msg)
	}
	want := string([]rune(open)[:40]) + "..."
	if !strings.Contains(msg, want) {
		t.Errorf("Error() = %q, want it to contain %q", msg, want)
	}
}

func TestTokenize_CommentMayContainTagOpeners(t *testing.T) {
	if _, err := NewTokenizer().Tokenize("<!-- a < b -->"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTokenizer_Unhandled(t *testing.T) {
	tz := NewTokenizer()
	if _, err := tz.Tokenize("a*b#c*"); err != nil {
		t.Fatal(err)
	}
	got := tz.Unhandled()
	if string(got) != "#*" {
		t.Errorf("Unhandled() = %q, want %q", string(got), "#*")
	}
}

func TestTokenKind_String(t *testing.T) {
	if TokenTableClose.String() != "table-close" {
		t.Errorf("got %q", TokenTableClose.String())
	}
	if TokenKind(99).String() != "unknown" {
		t.Errorf("got %q", TokenKind(99).String())
	}
}
