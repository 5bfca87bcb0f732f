package help

import "strings"

// Style wraps text in ANSI codes when Color is set and returns it unchanged
// otherwise.
type Style struct {
	Color bool
}

func (s Style) wrap(text string, codes ...string) string {
	if !s.Color || text == "" {
		return text
	}
	return strings.Join(codes, "") + text + ColorReset
}

// Header styles a section title.
func (s Style) Header(text string) string { return s.wrap(text, ColorBold, ColorCyan) }

// Category styles a category label.
func (s Style) Category(text string) string { return s.wrap(text, ColorBold, ColorGreen) }

// Command styles a command name.
func (s Style) Command(text string) string { return s.wrap(text, ColorCyan) }

// Argument styles command arguments and usage text.
func (s Style) Argument(text string) string { return s.wrap(text, ColorYellow) }

// Shortcut styles a key or alias.
func (s Style) Shortcut(text string) string { return s.wrap(text, ColorBold, ColorYellow) }

// Dim styles secondary text.
func (s Style) Dim(text string) string { return s.wrap(text, ColorGray) }

// Bold styles emphasised text.
func (s Style) Bold(text string) string { return s.wrap(text, ColorBold) }

// CommandWithShortcut formats "/help (or /h)".
func (s Style) CommandWithShortcut(cmd, shortcut string) string {
	if shortcut == "" {
		return s.Command(cmd)
	}
	return s.Command(cmd) + s.Dim(" (or ") + s.Shortcut(shortcut) + s.Dim(")")
}

// Example highlights an example line: the command in cyan and its
// arguments in yellow.
func (s Style) Example(line string) string {
	cmd, args, found := strings.Cut(line, " ")
	if !found {
		return s.Command(cmd)
	}
	return s.Command(cmd) + s.Argument(" "+strings.TrimLeft(args, " "))
}
