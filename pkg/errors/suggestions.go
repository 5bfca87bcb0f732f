// Package errors provides a suggestions registry for error remediation.
// Maps error codes to context-aware suggestions that help users fix issues.
package errors

import (
	"runtime"
	"sort"
)

// Context keys used to select appropriate suggestions.
const (
	// ContextOS is the operating system (e.g., "linux", "darwin", "windows")
	ContextOS = "os"

	// ContextBackend is the export backend (e.g., "macro", "stat", "general")
	ContextBackend = "backend"
)

// Suggestion represents a remediation suggestion with optional conditions.
type Suggestion struct {
	// Text is the suggestion message displayed to the user.
	Text string

	// Conditions are optional key-value pairs that must all match the error
	// context. If empty, the suggestion applies to all contexts.
	Conditions map[string]string

	// Priority determines order when multiple suggestions apply.
	// Higher priority suggestions are shown first.
	Priority int
}

// Matches returns true if this suggestion's conditions match the given context.
func (s *Suggestion) Matches(ctx map[string]string) bool {
	for key, value := range s.Conditions {
		if ctx[key] != value {
			return false
		}
	}
	return true
}

// Registry maps error codes to their remediation suggestions.
type Registry struct {
	suggestions map[string][]Suggestion
}

// NewRegistry creates a new suggestion registry.
func NewRegistry() *Registry {
	return &Registry{suggestions: make(map[string][]Suggestion)}
}

// Register adds a suggestion for an error code.
func (r *Registry) Register(code, text string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text})
}

// RegisterWithCondition adds a suggestion that applies only when the error
// context matches conditions.
func (r *Registry) RegisterWithCondition(code, text string, conditions map[string]string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Conditions: conditions})
}

// RegisterSuggestion adds a complete Suggestion struct.
func (r *Registry) RegisterSuggestion(code string, suggestion Suggestion) *Registry {
	r.suggestions[code] = append(r.suggestions[code], suggestion)
	return r
}

// Get returns all suggestions for an error code that match the given context,
// highest priority first.
func (r *Registry) Get(code string, ctx map[string]string) []string {
	var matching []Suggestion
	for _, s := range r.suggestions[code] {
		if s.Matches(ctx) {
			matching = append(matching, s)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Priority > matching[j].Priority
	})
	result := make([]string, len(matching))
	for i, s := range matching {
		result[i] = s.Text
	}
	return result
}

// HasSuggestions returns true if any suggestions exist for the error code.
func (r *Registry) HasSuggestions(code string) bool {
	return len(r.suggestions[code]) > 0
}

// defaultRegistry is the global registry with built-in suggestions.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// GetSuggestions returns suggestions for an error code using the default registry.
func GetSuggestions(code string) []string {
	return defaultRegistry.Get(code, map[string]string{ContextOS: runtime.GOOS})
}

func init() {
	r := defaultRegistry

	r.Register(ErrConfigNotFound, "Run 'relaxplot init' to create a default configuration")
	r.Register(ErrConfigParseFailed, "Check the file for YAML or TOML syntax errors")
	r.Register(ErrConfigUnknownBackend, "Use one of: macro, stat, general (aliases: grace, r, python)")
	r.Register(ErrConfigInvalid, "Axis ranges must satisfy xmin < xmax and ymin < ymax")

	r.RegisterSuggestion(ErrTemplateMissingRole, Suggestion{
		Text:     "Add the missing role to the backend's template file, or drop --templates to use the built-in set",
		Priority: 10,
	})
	r.Register(ErrTemplateInvalid, "Use explicit argument indexes like %[1]s and match the role's argument count")
	r.Register(ErrTemplateLoadFailed, "Check that the template file exists and is valid YAML")

	r.Register(ErrDataShapeMismatch, "Every series needs the same number of x, y and error values")
	r.Register(ErrDataMalformedKey, "Graph titles look like '<residue>:<suffix>'")
	r.RegisterWithCondition(ErrDataMalformedKey,
		"Bar keys look like '<fit>|<dataFitted>|<xLabel>|<yLabel>'",
		map[string]string{"kind": "bar"})
	r.Register(ErrDataUnsupportedFormat, "Supported dataset formats: .json, .yaml, .yml, .csv, .tsv, .xlsx")

	r.Register(ErrLayoutTooManyGroups, "Split the dataset so each export holds at most 81 residues")

	r.Register(ErrExportInvalidState, "Call Configure, Layout, Render and Write in that order")
	r.Register(ErrExportSkippedGroups, "Fix the reported groups, or pass --skip-invalid to write the remaining ones")
	r.Register(ErrExportNoData, "Load a dataset with at least one residue or bar group")

	r.Register(ErrIOWriteFailed, "Check that the destination directory exists and is writable")
	r.RegisterWithCondition(ErrIOWriteFailed, "Check permissions with: ls -ld <dir>",
		map[string]string{ContextOS: "linux"})
	r.Register(ErrIOFileNotFound, "Check the path and try again")

	r.Register(ErrNetworkListenFailed, "Choose a different port with --port")
	r.Register(ErrCommandNotFound, "Type /help to list available commands")
}

// AttachSuggestions adds suggestions from the registry to a PlotError.
// The error's own context takes part in conditional matching.
func AttachSuggestions(err *PlotError) *PlotError {
	if err == nil {
		return nil
	}
	ctx := map[string]string{ContextOS: runtime.GOOS}
	for k, v := range err.Context {
		ctx[k] = v
	}
	err.Suggestions = append(err.Suggestions, defaultRegistry.Get(err.Code, ctx)...)
	return err
}
