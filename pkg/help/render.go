package help

import (
	"fmt"
	"strings"
)

const (
	// commandColumnWidth fits "/quit (or /q)".
	commandColumnWidth = 16

	indentCategory = "  "
	indentCommand  = "    "
	indentExample  = "      "

	maxInlineExamples = 2
)

// RenderFull writes every category followed by the shortcuts section.
func (r *Renderer) RenderFull() {
	s := r.style
	r.writeln("")
	r.writeln(indentCategory + s.Header("relaxplot commands"))
	r.writeln("")
	for _, cat := range CategoryOrder {
		r.renderCategory(cat)
	}
	r.RenderShortcuts()
}

// RenderCommand writes usage and examples for one command. It returns
// false when name is unknown.
func (r *Renderer) RenderCommand(name string) bool {
	s := r.style
	cmd, ok := Lookup(name)
	if !ok {
		r.writeln(fmt.Sprintf(indentCategory+"Command '%s' not found. Use /help to see all commands.", name))
		return false
	}

	r.writeln("")
	r.writeln(indentCategory + s.CommandWithShortcut(cmd.Name, strings.Join(cmd.Aliases, ", ")))
	r.writeln(indentCategory + s.Dim(cmd.Description))
	r.writeln("")
	r.writeln(indentCategory + s.Bold("Usage:") + " " + s.Argument(cmd.Usage))
	r.writeln("")
	if len(cmd.Examples) > 0 {
		r.writeln(indentCategory + s.Bold("Examples:"))
		for _, ex := range cmd.Examples {
			r.writeln(indentCommand + s.Example(ex.Command) + s.Dim(" -> "+ex.Description))
		}
		r.writeln("")
	}
	return true
}

// RenderShortcuts writes the aliases and key bindings reference.
func (r *Renderer) RenderShortcuts() {
	s := r.style
	bar := indentCommand + s.Dim(BoxVertical+" ")

	r.writeln(indentCategory + s.Category("Shortcuts"))
	r.writeln(indentCategory + s.Dim(separator(commandColumnWidth+24)))
	r.writeln(bar + s.Dim("Aliases: ") +
		s.Shortcut("/h") + s.Dim(" help  ") +
		s.Shortcut("/q") + s.Dim(" quit  ") +
		s.Shortcut("/grace /r /python") + s.Dim(" export"))
	r.writeln(bar + s.Dim("Keys:    ") +
		s.Shortcut("Tab") + s.Dim(" complete  ") +
		s.Shortcut("Ctrl+D") + s.Dim(" exit  ") +
		s.Shortcut("↑↓") + s.Dim(" history"))
	r.writeln("")
}

func (r *Renderer) renderCategory(cat Category) {
	commands := ByCategory(cat)
	if len(commands) == 0 {
		return
	}
	s := r.style

	r.writeln(indentCategory + s.Category(cat.DisplayName()))
	r.writeln(indentCategory + s.Dim(separator(commandColumnWidth+24)))
	for _, cmd := range commands {
		short := ""
		if len(cmd.Aliases) > 0 {
			short = cmd.Aliases[0]
		}
		name := PadRight(s.CommandWithShortcut(cmd.Name, short), commandColumnWidth)
		r.writeln(indentCommand + s.Dim(BoxVertical+" ") + name + s.Dim(cmd.Description))

		for i, ex := range cmd.Examples {
			if i == maxInlineExamples {
				break
			}
			r.writeln(indentExample + s.Dim(BoxVertical+"   e.g. ") + s.Example(ex.Command))
		}
	}
	r.writeln("")
}

func (r *Renderer) writeln(s string) {
	fmt.Fprintln(r.w, s)
}
