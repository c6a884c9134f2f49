// Package suggest finds "did you mean" candidates for misspelled names.
package suggest

import "github.com/agext/levenshtein"

// String returns the candidate closest to want, or an empty string if no
// candidate is close enough. An exact match is always returned.
//
// Up to one edit per five characters of want is allowed, and at least one.
func String(want string, candidates []string) string {
	return Func(want, candidates, nil)
}

// Func is like String, but compares names after passing both sides through
// norm. The returned candidate is unchanged. A nil norm compares names as
// they are.
func Func(want string, candidates []string, norm func(string) string) string {
	if norm == nil {
		norm = func(s string) string { return s }
	}
	w := norm(want)

	maxDist := len(w) / 5
	if maxDist == 0 {
		maxDist = 1
	}

	best, bestDist := "", maxDist+1
	for _, cand := range candidates {
		c := norm(cand)
		if c == w {
			return cand
		}
		if d := levenshtein.Distance(w, c, nil); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}
