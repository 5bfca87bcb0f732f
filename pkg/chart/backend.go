// Package chart holds the export data model: chart configuration, residue
// and bar records, subplots, palettes and variable naming.
package chart

import (
	"strings"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Backend identifies a target script syntax.
type Backend int

const (
	// BackendUnknown is the zero value and never valid for export.
	BackendUnknown Backend = iota

	// BackendMacro is the Grace batch syntax: no variables, inline data blocks.
	BackendMacro

	// BackendStat is the R/ggplot2 syntax: named arrays and data frames.
	BackendStat

	// BackendGeneral is the Python/matplotlib syntax: named arrays, one
	// subplot call per panel.
	BackendGeneral
)

var backendNames = map[Backend]string{
	BackendMacro:   "macro",
	BackendStat:    "stat",
	BackendGeneral: "general",
}

// Aliases accepted by ParseBackend in addition to the canonical names.
var backendAliases = map[string]Backend{
	"grace":      BackendMacro,
	"agr":        BackendMacro,
	"r":          BackendStat,
	"ggplot":     BackendStat,
	"python":     BackendGeneral,
	"py":         BackendGeneral,
	"matplotlib": BackendGeneral,
}

// Default output file names, as used by the original menu actions.
var backendFiles = map[Backend]string{
	BackendMacro:   "ASCII.agr",
	BackendStat:    "graph.r",
	BackendGeneral: "graph.py",
}

// Backends returns all valid backends in declaration order.
func Backends() []Backend {
	return []Backend{BackendMacro, BackendStat, BackendGeneral}
}

// ParseBackend resolves a backend name or alias, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for b, n := range backendNames {
		if n == name {
			return b, nil
		}
	}
	if b, ok := backendAliases[name]; ok {
		return b, nil
	}
	return BackendUnknown, werrors.New(werrors.ErrConfigUnknownBackend, werrors.CategoryConfig,
		"unknown export type").
		WithContext("type", s).
		WithSuggestion("Use one of: macro, stat, general (aliases: grace, r, python)")
}

// String returns the canonical backend name.
func (b Backend) String() string {
	if n, ok := backendNames[b]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether b is one of the known backends.
func (b Backend) Valid() bool {
	_, ok := backendNames[b]
	return ok
}

// DefaultFile returns the conventional output file name for the backend.
func (b Backend) DefaultFile() string {
	return backendFiles[b]
}

// Inline reports whether the backend writes data inline instead of through
// named variables.
func (b Backend) Inline() bool {
	return b == BackendMacro
}

// MarshalText implements encoding.TextMarshaler.
func (b Backend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Backend) UnmarshalText(text []byte) error {
	parsed, err := ParseBackend(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
