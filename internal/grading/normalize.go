package grading

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

var apostrophes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"`", "'",
	"´", "'",
	"ʼ", "'",
	"′", "'",
)

// Normalize canonicalizes an answer for comparison: lowercase, surrounding
// whitespace and trailing periods removed, apostrophe variants mapped to '.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = strings.TrimSpace(s)
	// Whitespace is trimmed together with the periods so "word. ." and
	// "word." normalize to the same value.
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == '.' || unicode.IsSpace(r)
	})
	return apostrophes.Replace(s)
}

// EditDistance returns the Levenshtein distance between a and b, counting
// runes rather than bytes.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}
