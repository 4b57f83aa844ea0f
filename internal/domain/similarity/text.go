// Package similarity provides the field-level comparison primitives used by
// the scoring strategies: text similarity, amount and date proximity, route
// comparison and reference extraction.
//
// Every function is pure and deterministic. An absent value on either side
// never produces a positive score.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Normalize lower-cases s, strips punctuation and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity scores two strings in [0,1].
//
//	1.0  normalized strings are equal
//	0.9  one contains the other
//	else 1 - editDistance/maxLen
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	maxLen := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	dist := levenshtein.ComputeDistance(na, nb)
	score := 1 - float64(dist)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

// BestTokenSimilarity compares needle against every whitespace token of
// haystack and returns the best score.
func BestTokenSimilarity(needle, haystack string) float64 {
	n := Normalize(needle)
	if n == "" {
		return 0
	}
	best := 0.0
	for _, tok := range strings.Fields(Normalize(haystack)) {
		if s := Similarity(n, tok); s > best {
			best = s
		}
	}
	return best
}
