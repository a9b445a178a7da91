package matcher

import (
	"strings"
	"unicode"
)

// Normalize lower-cases a product name, replaces punctuation with
// spaces, and collapses runs of whitespace. This is the foundational
// form every scoring strategy compares on.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Compact is the normalized form with all spaces removed, used for
// prefix comparison where exports drop or mangle separators.
func Compact(s string) string {
	return strings.ReplaceAll(Normalize(s), " ", "")
}

// Words splits a normalized name into the words considered by the
// word-overlap strategy. Words of length <= 2 carry no signal
// ("of", "in", stray unit letters) and are dropped.
func Words(s string) []string {
	var words []string
	for _, w := range strings.Fields(Normalize(s)) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// NormalizeUnit canonicalizes a unit string for comparison
func NormalizeUnit(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
