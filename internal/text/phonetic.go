package text

import "strings"

// Phonetic derives a simplified Soundex-style code from s: normalize and
// uppercase, keep the first character verbatim, delete vowels and Y from the
// remainder, map the remaining consonants to digit classes, and collapse runs
// of identical adjacent characters. Adjacency is computed after the vowel
// deletion step, not before; this intentionally diverges from textbook Soundex
// and must stay bit-for-bit identical between the index and query paths.
// Empty input yields the empty string.
func Phonetic(s string) string {
	t := strings.ToUpper(Normalize(s))
	if t == "" {
		return ""
	}
	first := t[0]
	reduced := make([]byte, 0, len(t))
	var last byte
	for i := 1; i < len(t); i++ {
		c := t[i]
		switch c {
		case 'A', 'E', 'I', 'O', 'U', 'Y':
			continue
		}
		c = digitClass(c)
		if c != last {
			reduced = append(reduced, c)
		}
		last = c
	}
	return string(first) + string(reduced)
}

// digitClass maps a consonant to its sound group. Characters outside the six
// groups (H, W, digits, punctuation) pass through unchanged and still take
// part in duplicate collapsing.
func digitClass(c byte) byte {
	switch c {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	}
	return c
}
