package wikitext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error codes for programmatic error handling
type ErrorCode string

const (
	// CodeNestedTag marks a raw tag opened while another is still open
	CodeNestedTag ErrorCode = "NESTED_TAG"

	// CodeUnsupportedRender marks a render path the model does not support
	CodeUnsupportedRender ErrorCode = "UNSUPPORTED_RENDER_PATH"

	// CodeMissingParameter marks a lookup of an absent template parameter
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
)

// NestedTagError is returned by the tokenizer when a second "<" arrives
// before the pending raw tag was closed with ">".
type NestedTagError struct {
	Offset int    // rune offset of the offending "<"
	Open   string // the unterminated tag text so far
}

func (e *NestedTagError) Error() string {
	return fmt.Sprintf("[%s] nested tag at offset %d while %q is still open", CodeNestedTag, e.Offset, truncate(e.Open, 40))
}

// truncate shortens s to maxRunes runes, adding "..." if truncated
func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes]) + "..."
}

// ErrorCode returns the structured error code for programmatic handling
func (e *NestedTagError) ErrorCode() ErrorCode { return CodeNestedTag }

// UnsupportedRenderError reports a construct a renderer refuses to handle.
type UnsupportedRenderError struct {
	Renderer  string // "latex", ...
	Construct string // offending text, e.g. "<br>" or a template kind
	Reason    string
}

func (e *UnsupportedRenderError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s renderer cannot handle", CodeUnsupportedRender, e.Renderer))
	if e.Construct != "" {
		sb.WriteString(fmt.Sprintf(" %q", e.Construct))
	}
	if e.Reason != "" {
		sb.WriteString(": " + e.Reason)
	}
	return sb.String()
}

// ErrorCode returns the structured error code for programmatic handling
func (e *UnsupportedRenderError) ErrorCode() ErrorCode { return CodeUnsupportedRender }

// MissingParameterError is returned by Template.Param for an absent key.
type MissingParameterError struct {
	Template string
	Key      string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("[%s] template %q has no parameter %q", CodeMissingParameter, e.Template, e.Key)
}

// ErrorCode returns the structured error code for programmatic handling
func (e *MissingParameterError) ErrorCode() ErrorCode { return CodeMissingParameter }
