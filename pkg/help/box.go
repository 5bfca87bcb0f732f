package help

import (
	"strings"

	"golang.org/x/text/width"
)

// visibleWidth returns the number of terminal cells s occupies, skipping
// ANSI escape sequences. East Asian wide and fullwidth runes count as two
// cells.
func visibleWidth(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// PadRight pads s with spaces to the given visible width.
func PadRight(s string, w int) string {
	if n := visibleWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

// separator returns "├───…" spanning n cells after the tee.
func separator(n int) string {
	return BoxTeeLeft + strings.Repeat(BoxHorizontal, n)
}
