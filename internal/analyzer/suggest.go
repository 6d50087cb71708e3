package analyzer

import (
	"strings"

	"github.com/electwix/sqlguard/internal/catalog"
)

// maxSuggestDistance bounds how far a typo suggestion may be from the
// requested name.
const maxSuggestDistance = 3

// similarColumn returns the closest column name of the table within the
// suggestion distance, or "" when nothing is close enough.
func similarColumn(table *catalog.Table, name string) string {
	want := strings.ToLower(name)
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, col := range table.Columns {
		dist := levenshtein(want, strings.ToLower(col.Name))
		if dist < bestDist {
			best = col.Name
			bestDist = dist
		}
	}
	return best
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}
