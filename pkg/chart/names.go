package chart

import (
	"strconv"
	"strings"
)

// Column tags used in generated variable names.
const (
	TagRaw    = "raw"
	TagFitted = "fitted"
	TagX      = "X"
	TagY      = "Y"
	TagErr    = "Er"
)

// SeriesName identifies one series for variable naming. Index 0 means the
// series carries no index suffix.
type SeriesName struct {
	Base  string
	Index int
}

// VarNamer hands out script identifiers that are unique within one figure.
// The zero value is not usable; call NewVarNamer.
type VarNamer struct {
	used map[string]bool
}

// NewVarNamer returns an empty namer.
func NewVarNamer() *VarNamer {
	return &VarNamer{used: make(map[string]bool)}
}

// Name builds "<base>_<tag>_<column>[_<index>]", replaces characters that
// are not valid in identifiers and appends "_2", "_3", ... until unused.
func (n *VarNamer) Name(s SeriesName, tag, column string) string {
	parts := []string{s.Base, tag, column}
	if s.Index > 0 {
		parts = append(parts, strconv.Itoa(s.Index))
	}
	name := Sanitize(strings.Join(parts, "_"))
	candidate := name
	for i := 2; n.used[candidate]; i++ {
		candidate = name + "_" + strconv.Itoa(i)
	}
	n.used[candidate] = true
	return candidate
}

// Sanitize maps s onto [A-Za-z0-9_], prefixing "v" when the result would
// not start with a letter.
func Sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if out == "" || !isLetter(out[0]) {
		out = "v" + out
	}
	return out
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
