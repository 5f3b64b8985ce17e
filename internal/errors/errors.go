// Package errors provides shared error types for the wikitext service layer.
package errors

import (
	stderrors "errors"
	"fmt"
)

// NotFoundError indicates a page element an operation needs is absent.
type NotFoundError struct {
	EntityType string // "template", "infobox", "lede"
	Identifier string // template kind or other lookup key
}

func (e *NotFoundError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("%s not found in page: %s", e.EntityType, e.Identifier)
	}
	return fmt.Sprintf("%s not found in page", e.EntityType)
}

// NewNotFoundError creates a NotFoundError for a template lookup.
func NewNotFoundError(kind string) *NotFoundError {
	return &NotFoundError{
		EntityType: "template",
		Identifier: kind,
	}
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (empty for page text)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// coded is implemented by errors that carry a structured code.
type coded[C ~string] interface {
	error
	ErrorCode() C
}

// Code classifies err for metrics labels and tool results: the structured
// code when one is attached, "VALIDATION" and "NOT_FOUND" for the service
// errors, and "INTERNAL" otherwise. Codes are looked up through wrapping.
func Code[C ~string](err error) string {
	if err == nil {
		return ""
	}
	var c coded[C]
	if stderrors.As(err, &c) {
		return string(c.ErrorCode())
	}
	switch {
	case IsValidation(err):
		return "VALIDATION"
	case IsNotFound(err):
		return "NOT_FOUND"
	}
	return "INTERNAL"
}
