// Package text provides the normalized, phonetic, and prefix n-gram
// representations shared by the enrichment and query paths. All functions are
// pure; the same input always produces the same output, which the candidate
// aggregator relies on across index rebuilds.
package text

import "strings"

// Normalize lowercases s, deletes every rune outside the 7-bit ASCII range,
// and trims surrounding whitespace. Deletion, not replacement: "Heal Within®"
// becomes "heal within". Trimming happens after deletion, so whitespace
// exposed by a deleted rune ("Heal Within ®") is trimmed too. Empty input
// yields the empty string.
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
