// Package textnorm folds strings for accent and case insensitive matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, decomposes it, drops combining marks and trims
// surrounding whitespace. "  Récursivité " becomes "recursivite".
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(newFolder(), strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.TrimSpace(folded)
}

// transform.Chain keeps state, so each call gets its own chain.
// Only nonspacing marks (Mn) are removed; spacing modifier letters such as ˆ are kept.
func newFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
}
