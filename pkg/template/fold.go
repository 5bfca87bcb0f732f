package template

import (
	"strconv"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldASCII decomposes s (NFKD), drops combining marks and removes every
// remaining non-ASCII rune. It reports whether the text changed.
func FoldASCII(s string) (string, bool) {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return asciiOnly(s), true
	}
	return out, out != s
}

func asciiOnly(s string) string {
	b := make([]rune, 0, len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII {
			b = append(b, r)
		}
	}
	return string(b)
}

func quoteStrconv(s string) string {
	return strconv.Quote(s)
}
