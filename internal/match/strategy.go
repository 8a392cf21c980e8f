package match

import "pointsync/internal/results"

// Strategy identifies which matching method produced a winning score.
type Strategy string

const (
	// StrategyCleanName compares the normalized title against each
	// record's clean name with the plain ratio.
	StrategyCleanName Strategy = "clean_name"
	// StrategyFullName compares against each record's dotted full name
	// with the substring-tolerant partial ratio.
	StrategyFullName Strategy = "full_name"
	// StrategyTokenSort compares token-sorted forms of the title and each
	// record's clean name, so word order does not matter.
	StrategyTokenSort Strategy = "token_sort"
)

// scorer is one entry in the ordered strategy list. score rates a record
// against a normalized title; key returns the record field the strategy
// matched on, used both for audit and to re-resolve the winning record.
type scorer struct {
	strategy Strategy
	score    func(title string, rec *results.Record) int
	key      func(rec *results.Record) string
}

// scorers is evaluated in order. A later strategy replaces the current best
// only on a strictly greater score, so on ties the earlier strategy wins.
// Adding a strategy means appending one entry here.
var scorers = []scorer{
	{
		strategy: StrategyCleanName,
		score:    func(t string, r *results.Record) int { return ratio(t, r.CleanName) },
		key:      func(r *results.Record) string { return r.CleanName },
	},
	{
		strategy: StrategyFullName,
		score:    func(t string, r *results.Record) int { return partialRatio(t, r.FullName) },
		key:      func(r *results.Record) string { return r.FullName },
	},
	{
		strategy: StrategyTokenSort,
		score:    func(t string, r *results.Record) int { return tokenSortRatio(t, r.CleanName) },
		key:      func(r *results.Record) string { return r.CleanName },
	},
}

// best returns the strategy's top-scoring record key. On equal scores the
// earliest record keeps the slot, which makes resolution deterministic when
// names repeat across suites.
func (sc scorer) best(title string, records []*results.Record) (name string, score int) {
	for _, r := range records {
		if s := sc.score(title, r); s > score {
			score = s
			name = sc.key(r)
		}
	}
	return name, score
}
