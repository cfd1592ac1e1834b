package quizgen

import (
	"regexp"
	"strings"
)

var (
	nonCanonical = regexp.MustCompile(`[^a-z0-9\s.?!']`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes text for comparison: lowercase, drop everything
// but letters, digits, whitespace and .?!', collapse whitespace, trim.
// The result is only ever compared, never displayed.
//
// Characters are removed before whitespace is collapsed so that
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = nonCanonical.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
