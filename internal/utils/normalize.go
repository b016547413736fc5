package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold returns the canonical comparison form of s: trimmed, lowercased,
// with diacritical marks stripped. Every comparison in the engine goes
// through this so "Médecins" and "medecins" collide.
func Fold(s string) string {
	folded, _ := FoldMap(strings.TrimSpace(s))
	return folded
}

// FoldMap folds s without trimming and returns, for each rune of the
// folded form, the index of the original rune it was derived from.
// Match spans computed on the folded form are mapped back onto the
// original string through this index.
func FoldMap(s string) (string, []int) {
	var b strings.Builder
	var indexes []int
	origIdx := 0
	for _, r := range s {
		for _, d := range norm.NFD.String(string(r)) {
			if unicode.Is(unicode.Mn, d) {
				continue
			}
			b.WriteRune(unicode.ToLower(d))
			indexes = append(indexes, origIdx)
		}
		origIdx++
	}
	return b.String(), indexes
}

// FoldTokens splits the folded form of s on whitespace.
func FoldTokens(s string) []string {
	return strings.Fields(Fold(s))
}
