package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryZone       Category = "zone"
	CategoryUpload     Category = "upload"
	CategoryTransport  Category = "transport"
	CategoryValidation Category = "validation"
	CategoryCLI        Category = "cli"
)

// DeskError is a structured error with a code, a category and a hint.
type DeskError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (config, zone, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DeskError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DeskError) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *DeskError) WithDetail(d string) *DeskError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *DeskError) WithDetailf(format string, args ...any) *DeskError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DeskError) WithSuggestion(s string) *DeskError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *DeskError) Wrap(err error) *DeskError {
	e.Wrapped = err
	return e
}

// New creates a DeskError from a registered error code.
func New(code string) *DeskError {
	template, ok := registry[code]
	if !ok {
		return &DeskError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DeskError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new DeskError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DeskError {
	return &DeskError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DeskError.
// Errors that already are (or wrap) a DeskError are returned as is.
func FromError(err error, code string) *DeskError {
	if err == nil {
		return nil
	}
	var de *DeskError
	if stderrors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err, or any error it wraps, is a DeskError with
// the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		var de *DeskError
		if !stderrors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Wrapped
	}
	return false
}
