package config

import (
	"regexp"
	"strconv"
	"strings"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

var (
	yamlLineCol = regexp.MustCompile(`line (\d+)(?::(\d+))?`)
	intoType    = regexp.MustCompile(`into \*?([\w.\[\]]+)`)
)

// parseError wraps a decoding error with its location when it can be found.
func parseError(err error, path string) *werrors.PlotError {
	pe := werrors.WrapConfig(err, werrors.ErrConfigParseFailed, "failed to parse config").
		WithContext("path", path)
	msg := err.Error()
	if line, col := extractYAMLErrorLocation(msg); line > 0 {
		pe.WithContext("line", strconv.Itoa(line))
		if col > 0 {
			pe.WithContext("column", strconv.Itoa(col))
		}
	}
	if typ := extractExpectedType(msg); typ != "" {
		pe.WithContext("expected_type", typ)
	}
	return werrors.AttachSuggestions(pe)
}

// extractYAMLErrorLocation finds "line N" or "line N:C" in a yaml error.
func extractYAMLErrorLocation(msg string) (line, col int) {
	m := yamlLineCol.FindStringSubmatch(msg)
	if m == nil {
		return 0, 0
	}
	line, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		col, _ = strconv.Atoi(m[2])
	}
	return line, col
}

// extractExpectedType finds the target type of an unmarshal error.
func extractExpectedType(msg string) string {
	if !strings.Contains(msg, "cannot unmarshal") {
		return ""
	}
	m := intoType.FindStringSubmatch(msg)
	if m == nil {
		return ""
	}
	return m[1]
}

func isValidOption(value string, options []string) bool {
	for _, o := range options {
		if value == o {
			return true
		}
	}
	return false
}

func invalidValue(field, value, options string) *werrors.PlotError {
	pe := werrors.ValidationErrorf(werrors.ErrConfigInvalid, "invalid value for %s: %q", field, value).
		WithContext("field", field).
		WithContext("value", value)
	pe.Category = werrors.CategoryConfig
	if options != "" {
		pe.WithContext("valid_options", options).
			WithSuggestion("Use one of: " + options)
	}
	return pe
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func formatInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatRanges(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
