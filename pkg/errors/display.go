// Package errors provides error formatting and display functions.
// Renders PlotErrors with color coding for TTY output.
package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ANSI color indices used for terminal output.
const (
	colorRed    = "1" // Error type/code
	colorYellow = "3" // Context information
	colorCyan   = "6" // Suggestions
)

// Formatter handles error display with optional color support.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	// When false, output is plain text suitable for logs.
	UseColor bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer

	// Indent is the prefix for context and suggestion lines.
	Indent string
}

// DefaultFormatter returns a Formatter configured for standard error output.
// Color is enabled if stderr is a TTY.
func DefaultFormatter() *Formatter {
	return &Formatter{
		UseColor: IsTTY(os.Stderr),
		Writer:   os.Stderr,
		Indent:   "  ",
	}
}

// IsTTY returns true if the given file is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Format renders an error with default settings.
func Format(err error) string {
	return DefaultFormatter().Format(err)
}

// Format renders an error with color coding based on formatter settings.
// For PlotError, displays code, message, context, cause, and suggestions.
// Joined errors are rendered one after another.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}
	if errs := Flatten(err); len(errs) > 1 {
		return f.FormatMultiple(errs)
	}

	pe, ok := AsPlotError(err)
	if !ok {
		return f.style("Error: ", colorRed, false, false) + err.Error()
	}
	return f.formatPlotError(pe)
}

// style applies a foreground color when color output is enabled.
func (f *Formatter) style(s, color string, bold, faint bool) string {
	if !f.UseColor {
		return s
	}
	out := termenv.NewOutput(io.Discard, termenv.WithProfile(termenv.ANSI))
	st := out.String(s)
	if color != "" {
		st = st.Foreground(out.Color(color))
	}
	if bold {
		st = st.Bold()
	}
	if faint {
		st = st.Faint()
	}
	return st.String()
}

func (f *Formatter) formatPlotError(pe *PlotError) string {
	var sb strings.Builder

	// ERROR [CODE]: Message
	sb.WriteString(f.style("ERROR", colorRed, true, false))
	sb.WriteString(f.style(" ["+pe.Code+"]: ", colorRed, false, false))
	sb.WriteString(pe.Message)
	sb.WriteString("\n")

	if pe.HasContext() {
		keys := make([]string, 0, len(pe.Context))
		for k := range pe.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(f.Indent)
			sb.WriteString(f.style(key+": ", colorYellow, false, false))
			sb.WriteString(pe.Context[key])
			sb.WriteString("\n")
		}
	}

	if pe.Cause != nil {
		sb.WriteString(f.Indent)
		sb.WriteString(f.style("cause: "+pe.Cause.Error(), "", false, true))
		sb.WriteString("\n")
	}

	if pe.HasSuggestions() {
		if pe.HasContext() || pe.Cause != nil {
			sb.WriteString("\n")
		}
		for i, s := range pe.Suggestions {
			sb.WriteString(f.Indent)
			sb.WriteString(f.style("→ "+s, colorCyan, false, false))
			if i < len(pe.Suggestions)-1 {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// Display writes a formatted error to the formatter's writer.
func (f *Formatter) Display(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(f.Writer, f.Format(err))
}

// Display writes a formatted error to stderr with default settings.
func Display(err error) {
	DefaultFormatter().Display(err)
}

// Sprint returns a formatted error string without colors.
// Useful for logging or non-TTY environments.
func Sprint(err error) string {
	f := &Formatter{Writer: io.Discard, Indent: "  "}
	return f.Format(err)
}

// Sprintc returns a formatted error string with colors.
func Sprintc(err error) string {
	f := &Formatter{UseColor: true, Writer: io.Discard, Indent: "  "}
	return f.Format(err)
}

// FormatMultiple formats multiple errors separated by blank lines.
func (f *Formatter) FormatMultiple(errs []error) string {
	var parts []string
	for _, err := range errs {
		if err == nil {
			continue
		}
		parts = append(parts, f.Format(err))
	}
	return strings.Join(parts, "\n\n")
}

// CategoryLabel returns a human-readable label for an error category.
func CategoryLabel(cat Category) string {
	switch cat {
	case CategoryConfig:
		return "Configuration Error"
	case CategoryTemplate:
		return "Template Error"
	case CategoryData:
		return "Data Error"
	case CategoryLayout:
		return "Layout Error"
	case CategoryExport:
		return "Export Error"
	case CategoryCommand:
		return "Command Error"
	case CategoryValidation:
		return "Validation Error"
	case CategoryNetwork:
		return "Network Error"
	case CategoryIO:
		return "I/O Error"
	case CategoryInternal:
		return "Internal Error"
	default:
		return "Error"
	}
}
