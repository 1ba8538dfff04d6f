package parjson

import (
	"slices"

	"github.com/cybergodev/parjson/internal"
)

// chunkRange is a half-open range of structural token indices
type chunkRange struct {
	start, end int
}

func (c chunkRange) len() int { return c.end - c.start }

// planChunks splits the token stream into at most threads grammar-safe
// ranges. Every range except the last ends with a comma that is top-level
// relative to the range's first token, so no range starts inside a
// compound value it cannot see the opening of.
func planChunks(tok *internal.Tokens, threads int) []chunkRange {
	n := tok.Len()
	if threads <= 1 || n < 2 {
		return []chunkRange{{0, n}}
	}

	cuts := make([]int, 0, threads-1)
	for k := 1; k < threads; k++ {
		candidate := k * n / threads
		if cut := nextTopLevelComma(tok, candidate); cut > 0 && cut < n {
			cuts = append(cuts, cut)
		}
	}
	return rangesFromCuts(n, cuts)
}

// rangesFromCuts turns cut positions into non-empty ranges. Cuts are sorted
// and deduplicated, adjacent candidates often converge on one comma.
func rangesFromCuts(n int, cuts []int) []chunkRange {
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	ranges := make([]chunkRange, 0, len(cuts)+1)
	prev := 0
	for _, cut := range cuts {
		if cut <= prev || cut >= n {
			continue
		}
		ranges = append(ranges, chunkRange{prev, cut})
		prev = cut
	}
	return append(ranges, chunkRange{prev, n})
}

// nextTopLevelComma returns the index just past the first comma at or after
// from that is not nested in a bracket opened at or after from. Closers of
// brackets opened earlier are stepped over. It returns -1 when there is no
// such comma.
func nextTopLevelComma(tok *internal.Tokens, from int) int {
	depth := 0
	for i := from; i < tok.Len(); i++ {
		switch tok.Byte(i) {
		case '{', '[':
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// cutAllowed reports whether a chunk may start at token i: right after a
// comma or an opening bracket, or right before a comma or closing bracket
// that follows a complete value
func cutAllowed(tok *internal.Tokens, i int) bool {
	if i <= 0 || i >= tok.Len() {
		return false
	}
	switch tok.Byte(i - 1) {
	case ',', '[', '{':
		return true
	case ':':
		return false
	}
	switch tok.Byte(i) {
	case ',', ']', '}':
		return true
	}
	return false
}
