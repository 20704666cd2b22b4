package ranking

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the difflib matching ratio of a and b, compared rune by
// rune: twice the number of runes in matching blocks divided by the total
// rune count. The result is 1 for identical strings (including two empty
// ones) and 0 when no rune is shared. Comparison is case-sensitive.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
