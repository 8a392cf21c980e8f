package match

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// levenshtein is safe for concurrent use: Compare only reads the cost
// configuration.
var levenshtein = metrics.NewLevenshtein()

// ratio is the 0-100 similarity of two strings, derived from normalized
// Levenshtein edit distance.
func ratio(a, b string) int {
	return int(math.Round(strutil.Similarity(a, b, levenshtein) * 100))
}

// partialRatio is the best ratio of the shorter string against any
// equally long contiguous window of the longer one, tolerating prefix and
// suffix noise such as dotted class paths.
func partialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		s := ratio(string(shorter), string(longer[i:i+len(shorter)]))
		if s > best {
			best = s
		}
		if best == 100 {
			break
		}
	}
	return best
}

// tokenSortRatio case-folds both strings, tokenizes on whitespace, sorts the
// tokens, and compares the rejoined forms. Word-order differences score 100.
func tokenSortRatio(a, b string) int {
	return ratio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
