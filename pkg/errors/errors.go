// Package errors provides categorized application errors with stack traces
// and user-facing messages for the reconciliation service.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryParse         ErrorCategory = "parse"
	CategoryRepository    ErrorCategory = "repository"
	CategoryMatching      ErrorCategory = "matching"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ReconError is the base error type for all application errors
type ReconError struct {
	Category   ErrorCategory `json:"category"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
	Context    Context       `json:"context,omitempty"`
	Cause      error         `json:"-"`

	stack errors.StackTrace
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ReconError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap returns the underlying cause
func (e *ReconError) Unwrap() error {
	return e.Cause
}

// StackTrace returns the stack trace captured at construction
func (e *ReconError) StackTrace() errors.StackTrace {
	return e.stack
}

// WithSuggestion attaches a remediation hint shown to CLI users
func (e *ReconError) WithSuggestion(suggestion string) *ReconError {
	e.Suggestion = suggestion
	return e
}

// WithContext attaches a key-value pair of diagnostic context
func (e *ReconError) WithContext(key string, value interface{}) *ReconError {
	if e.Context == nil {
		e.Context = Context{}
	}
	e.Context[key] = value
	return e
}

// UserMessage renders a human-friendly, multi-line description of the error
func (e *ReconError) UserMessage() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if e.Cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", e.Cause)
	}
	for k, v := range e.Context {
		fmt.Fprintf(&b, "\n  %s: %v", k, v)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  suggestion: %s", e.Suggestion)
	}

	return b.String()
}

func newError(category ErrorCategory, message string, cause error) *ReconError {
	e := &ReconError{
		Category: category,
		Message:  message,
		Cause:    cause,
	}

	// Capture stack frames via pkg/errors; skip the constructor frames.
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := errors.New("").(stackTracer); ok {
		trace := st.StackTrace()
		if len(trace) > 2 {
			trace = trace[2:]
		}
		e.stack = trace
	}

	return e
}

// NewValidationError creates a validation-category error
func NewValidationError(message string, cause error) *ReconError {
	return newError(CategoryValidation, message, cause)
}

// NewParseError creates a parse-category error
func NewParseError(message string, cause error) *ReconError {
	return newError(CategoryParse, message, cause)
}

// NewRepositoryError creates a repository-category error
func NewRepositoryError(message string, cause error) *ReconError {
	return newError(CategoryRepository, message, cause)
}

// NewMatchingError creates a matching-category error
func NewMatchingError(message string, cause error) *ReconError {
	return newError(CategoryMatching, message, cause)
}

// NewConfigurationError creates a configuration-category error
func NewConfigurationError(message string, cause error) *ReconError {
	return newError(CategoryConfiguration, message, cause)
}

// NewInternalError creates an internal-category error
func NewInternalError(message string, cause error) *ReconError {
	return newError(CategoryInternal, message, cause)
}

// AsReconError extracts a ReconError from anywhere in the error chain
func AsReconError(err error) (*ReconError, bool) {
	var re *ReconError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// GetCategory extracts the category from an error, defaulting to internal
func GetCategory(err error) ErrorCategory {
	var re *ReconError
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryInternal
}

// IsCategory reports whether the error belongs to the given category
func IsCategory(err error, category ErrorCategory) bool {
	return GetCategory(err) == category
}
