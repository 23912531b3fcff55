package text

const (
	ngramMinLen = 3
	ngramMaxLen = 15
)

// Ngrams returns the growing prefixes of the normalized input, from length 3
// up to min(len, 15): "micro" yields ["mic", "micr", "micro"]. A non-empty
// input shorter than the minimum yields a single-element slice with the short
// text itself; an input that normalizes to empty yields nil. The prefixes let
// an index with array-membership search satisfy partial-name queries without a
// trailing-wildcard operator.
func Ngrams(s string) []string {
	t := Normalize(s)
	if t == "" {
		return nil
	}
	if len(t) < ngramMinLen {
		return []string{t}
	}
	end := len(t)
	if end > ngramMaxLen {
		end = ngramMaxLen
	}
	out := make([]string, 0, end-ngramMinLen+1)
	for i := ngramMinLen; i <= end; i++ {
		out = append(out, t[:i])
	}
	return out
}
