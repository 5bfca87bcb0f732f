// Package errors provides structured error types for relaxplot.
// Errors include a code, context, causes, and actionable suggestions.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryConfig     Category = "config"     // Configuration loading/parsing errors
	CategoryTemplate   Category = "template"   // Backend template definition errors
	CategoryData       Category = "data"       // Input dataset shape and key errors
	CategoryLayout     Category = "layout"     // Subplot grid layout errors
	CategoryExport     Category = "export"     // Export pipeline state errors
	CategoryCommand    Category = "command"    // Shell and CLI command errors
	CategoryValidation Category = "validation" // Input validation errors
	CategoryNetwork    Category = "network"    // API server errors
	CategoryIO         Category = "io"         // File/IO errors
	CategoryInternal   Category = "internal"   // Internal/unexpected errors
)

// PlotError is a structured error with context and suggestions.
// It implements the error interface and supports error wrapping.
type PlotError struct {
	// Code is a unique identifier for this error type (e.g., "LAYOUT_OVERFLOW")
	Code string

	// Category classifies this error for consistent handling
	Category Category

	// Message is the primary error message describing what went wrong
	Message string

	// Context provides additional key-value details about the error,
	// such as the offending group id or composite key.
	Context map[string]string

	// Cause is the underlying error that triggered this error (for wrapping)
	Cause error

	// Suggestions are actionable remediation steps for the user
	Suggestions []string
}

// Error implements the error interface.
func (e *PlotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *PlotError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target for errors.Is() checks.
// Two PlotErrors match if they have the same Code.
func (e *PlotError) Is(target error) bool {
	if t, ok := target.(*PlotError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new PlotError with the given code, category, and message.
func New(code string, category Category, message string) *PlotError {
	return &PlotError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// Newf creates a new PlotError with a formatted message.
func Newf(code string, category Category, format string, args ...any) *PlotError {
	return New(code, category, fmt.Sprintf(format, args...))
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *PlotError) WithContext(key, value string) *PlotError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithCause wraps an underlying error and returns the error for chaining.
func (e *PlotError) WithCause(cause error) *PlotError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a remediation suggestion and returns the error for chaining.
func (e *PlotError) WithSuggestion(suggestion string) *PlotError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// HasContext returns true if the error has context information.
func (e *PlotError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *PlotError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries as key="value" pairs sorted by key.
func (e *PlotError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, e.Context[k])
	}
	return strings.Join(parts, ", ")
}

// Wrap wraps an existing error with a PlotError.
func Wrap(err error, code string, category Category, message string) *PlotError {
	return New(code, category, message).WithCause(err)
}

// AsPlotError finds the first PlotError in err's chain.
func AsPlotError(err error) (*PlotError, bool) {
	if err == nil {
		return nil, false
	}
	var pe *PlotError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCategory checks if an error is a PlotError with the given category.
func IsCategory(err error, category Category) bool {
	if pe, ok := AsPlotError(err); ok {
		return pe.Category == category
	}
	return false
}

// IsCode checks if an error is a PlotError with the given code.
func IsCode(err error, code string) bool {
	if pe, ok := AsPlotError(err); ok {
		return pe.Code == code
	}
	return false
}

// Flatten returns the individual errors of a joined error, or err itself.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// -----------------------------------------------------------------------------
// Sentinels
// -----------------------------------------------------------------------------
// Sentinels match any PlotError with the same code through errors.Is.

var (
	ErrMissingTemplateRole = &PlotError{Code: ErrTemplateMissingRole, Category: CategoryTemplate}
	ErrInvalidTemplate     = &PlotError{Code: ErrTemplateInvalid, Category: CategoryTemplate}
	ErrDataShape           = &PlotError{Code: ErrDataShapeMismatch, Category: CategoryData}
	ErrMalformedKey        = &PlotError{Code: ErrDataMalformedKey, Category: CategoryData}
	ErrLayoutOverflow      = &PlotError{Code: ErrLayoutTooManyGroups, Category: CategoryLayout}
	ErrInvalidState        = &PlotError{Code: ErrExportInvalidState, Category: CategoryExport}
)

// -----------------------------------------------------------------------------
// Helper Constructors for Common Error Types
// -----------------------------------------------------------------------------

// ConfigError creates a new configuration error.
func ConfigError(code, message string) *PlotError {
	return New(code, CategoryConfig, message)
}

// TemplateErrorf creates a template error with a formatted message.
func TemplateErrorf(code, format string, args ...any) *PlotError {
	return Newf(code, CategoryTemplate, format, args...)
}

// DataErrorf creates a dataset error with a formatted message.
func DataErrorf(code, format string, args ...any) *PlotError {
	return Newf(code, CategoryData, format, args...)
}

// LayoutErrorf creates a layout error with a formatted message.
func LayoutErrorf(code, format string, args ...any) *PlotError {
	return Newf(code, CategoryLayout, format, args...)
}

// ExportErrorf creates an export pipeline error with a formatted message.
func ExportErrorf(code, format string, args ...any) *PlotError {
	return Newf(code, CategoryExport, format, args...)
}

// CommandErrorf creates a command error with a formatted message.
func CommandErrorf(code, format string, args ...any) *PlotError {
	return Newf(code, CategoryCommand, format, args...)
}

// ValidationErrorf creates a validation error with a formatted message.
func ValidationErrorf(code, format string, args ...any) *PlotError {
	return Newf(code, CategoryValidation, format, args...)
}

// WrapConfig wraps an error as a configuration error.
func WrapConfig(err error, code, message string) *PlotError {
	return Wrap(err, code, CategoryConfig, message)
}

// WrapIO wraps an error as an IO error.
func WrapIO(err error, code, message string) *PlotError {
	return Wrap(err, code, CategoryIO, message)
}

// WrapNetwork wraps an error as a network error.
func WrapNetwork(err error, code, message string) *PlotError {
	return Wrap(err, code, CategoryNetwork, message)
}
