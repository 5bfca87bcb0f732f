// Package help renders the command reference of the relaxplot shell.
//
// Commands are grouped by category in a box-drawn listing with inline
// examples:
//
//	r := help.NewRenderer(os.Stdout, true)
//	r.RenderFull()            // every category, then shortcuts
//	r.RenderCommand("export") // usage and examples for one command
//
// Styling uses ANSI escape codes and is dropped entirely when the renderer
// is created without color, so output written to files or test buffers is
// plain text.
package help

import "io"

// Box drawing characters.
const (
	BoxTopLeft     = "╭"
	BoxTopRight    = "╮"
	BoxBottomLeft  = "╰"
	BoxBottomRight = "╯"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
	BoxTeeLeft     = "├"
	BoxTeeRight    = "┤"
)

// ANSI color codes for styled output.
const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorGray   = "\033[90m"
)

// Renderer formats and writes help output.
type Renderer struct {
	w     io.Writer
	style Style
}

// NewRenderer creates a renderer writing to w. color enables ANSI styling.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, style: Style{Color: color}}
}
