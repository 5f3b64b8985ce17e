package engine

import (
	"fmt"
	"strings"

	wikierrors "github.com/powera/wiki-scripts/internal/errors"
)

// Format names a render target
type Format string

const (
	FormatWiki       Format = "wiki"
	FormatNormalized Format = "normalized"
	FormatText       Format = "text"
	FormatLatex      Format = "latex"
)

// Formats lists every accepted render format
var Formats = []Format{FormatWiki, FormatNormalized, FormatText, FormatLatex}

// ValidateText checks page text against the input size limit.
// Empty text is valid and parses to an empty document.
func ValidateText(text string, maxBytes int) error {
	if maxBytes > 0 && len(text) > maxBytes {
		return wikierrors.NewValidationError("text", "",
			fmt.Sprintf("page text is %d bytes, limit is %d", len(text), maxBytes))
	}
	return nil
}

// ParseFormat validates a render format. Empty selects wiki.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatWiki, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", wikierrors.NewValidationError("format", s, "must be one of wiki, normalized, text, latex")
}

// ValidateKind checks a template kind argument.
func ValidateKind(kind string) error {
	if strings.TrimSpace(kind) == "" {
		return wikierrors.NewValidationError("kind", "", "template kind is required")
	}
	if strings.ContainsAny(kind, "{}|") {
		return wikierrors.NewValidationError("kind", kind, "template kind cannot contain braces or pipes")
	}
	return nil
}

// ValidateKey checks a template parameter key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return wikierrors.NewValidationError("key", "", "parameter key is required")
	}
	if strings.ContainsAny(key, "{}|=") {
		return wikierrors.NewValidationError("key", key, "parameter key cannot contain braces, pipes or '='")
	}
	return nil
}

// ValidateOccurrence checks a zero-based template occurrence index.
func ValidateOccurrence(n int) error {
	if n < 0 {
		return wikierrors.NewValidationError("occurrence", fmt.Sprint(n), "cannot be negative")
	}
	return nil
}
