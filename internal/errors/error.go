package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig Category = "config"
	CategoryBench  Category = "bench"
	CategoryCLI    Category = "cli"
)

// LoadableError is a structured error with a code, detail, and fix suggestions.
type LoadableError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (config, bench, cli).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LoadableError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LoadableError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LoadableError) WithSuggestion(s string) *LoadableError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LoadableError) WithDetail(d string) *LoadableError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *LoadableError) WithDetailf(format string, args ...any) *LoadableError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *LoadableError) Wrap(err error) *LoadableError {
	e.Wrapped = err
	return e
}

// New creates a LoadableError from a registered error code.
func New(code string) *LoadableError {
	template, ok := registry[code]
	if !ok {
		return &LoadableError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LoadableError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new LoadableError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LoadableError {
	return &LoadableError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a LoadableError.
func FromError(err error, code string) *LoadableError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LoadableError); ok {
		return le
	}
	return New(code).Wrap(err)
}
