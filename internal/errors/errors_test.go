package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		expected string
	}{
		{
			name:     "template",
			err:      &NotFoundError{EntityType: "template", Identifier: "Vital article"},
			expected: "template not found in page: Vital article",
		},
		{
			name:     "without identifier",
			err:      &NotFoundError{EntityType: "infobox"},
			expected: "infobox not found in page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("NotFoundError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("Infobox person")

	if err.EntityType != "template" {
		t.Errorf("EntityType = %q, want %q", err.EntityType, "template")
	}
	if err.Identifier != "Infobox person" {
		t.Errorf("Identifier = %q, want %q", err.Identifier, "Infobox person")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "field and value",
			err:      &ValidationError{Field: "format", Value: "html", Message: "unknown format"},
			expected: `validation failed for format="html": unknown format`,
		},
		{
			name:     "field only",
			err:      &ValidationError{Field: "text", Message: "exceeds 10 bytes"},
			expected: "validation failed for text: exceeds 10 bytes",
		},
		{
			name:     "message only",
			err:      &ValidationError{Message: "empty request"},
			expected: "validation failed: empty request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("kind", "", "is required")
	if err.Field != "kind" || err.Value != "" || err.Message != "is required" {
		t.Errorf("unexpected ValidationError: %+v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct", NewNotFoundError("X"), true},
		{"wrapped", fmt.Errorf("set param: %w", NewNotFoundError("X")), true},
		{"validation", NewValidationError("a", "b", "c"), false},
		{"plain", errors.New("x"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("wrap: %w", NewValidationError("a", "", "b"))) {
		t.Error("wrapped ValidationError not detected")
	}
	if IsValidation(NewNotFoundError("X")) {
		t.Error("NotFoundError detected as validation")
	}
}

type testCode string

type codedError struct{}

func (codedError) Error() string       { return "coded" }
func (codedError) ErrorCode() testCode { return "NESTED_TAG" }

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"coded", codedError{}, "NESTED_TAG"},
		{"wrapped coded", fmt.Errorf("parse: %w", codedError{}), "NESTED_TAG"},
		{"validation", NewValidationError("a", "", "b"), "VALIDATION"},
		{"not found", NewNotFoundError("X"), "NOT_FOUND"},
		{"other", errors.New("boom"), "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code[testCode](tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}
