package match

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pointsync/internal/results"
)

// DefaultMinScore is the score threshold applied when the engine is built
// with a zero MinScore.
const DefaultMinScore = 80

// defaultWorkers bounds the scoring goroutines when Workers is zero.
const defaultWorkers = 8

// Candidate associates one remote point (by its index in the engine input)
// with the XML record that won the strategy evaluation.
type Candidate struct {
	// Index is the position of the point's title in the Match input.
	Index int
	// Record is the claimed XML record.
	Record *results.Record
	// Score is the winning 0-100 similarity.
	Score int
	// Strategy tags which method produced the winning score.
	Strategy Strategy
	// Title and MatchedName are the compared names, kept for audit output.
	Title       string
	MatchedName string
}

// Engine scores remote point titles against a fixed record set.
type Engine struct {
	// MinScore is the inclusive acceptance threshold (0-100).
	MinScore int
	// Workers bounds the parallel per-point evaluations.
	Workers int
}

// Match evaluates every title independently and returns a slice parallel to
// titles: a Candidate where a record scored at or above MinScore, nil where
// the point stays unmatched. Points share no state during scoring, so the
// evaluation runs on a bounded worker group; results are written to
// per-index slots, keeping the output deterministic.
func (e Engine) Match(ctx context.Context, titles []string, records []*results.Record) ([]*Candidate, error) {
	minScore := e.MinScore
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	workers := e.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	out := make([]*Candidate, len(titles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, title := range titles {
		i, title := i, title
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if c := matchOne(title, minScore, records); c != nil {
				c.Index = i
				out[i] = c
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// matchOne runs the ordered strategy list for a single point title.
func matchOne(title string, minScore int, records []*results.Record) *Candidate {
	norm := NormalizeTitle(title)

	bestScore := 0
	var bestStrategy Strategy
	var bestName string
	for _, sc := range scorers {
		// Strictly greater: ties keep the earlier strategy's pick.
		if name, score := sc.best(norm, records); score > bestScore {
			bestScore = score
			bestStrategy = sc.strategy
			bestName = name
		}
	}

	if bestScore < minScore || bestStrategy == "" {
		return nil
	}
	rec := resolve(bestStrategy, bestName, records)
	if rec == nil {
		// The winning name no longer resolves to a record; treat as unmatched.
		return nil
	}
	return &Candidate{
		Record:      rec,
		Score:       bestScore,
		Strategy:    bestStrategy,
		Title:       title,
		MatchedName: bestName,
	}
}

// resolve finds the first record whose strategy key equals the winning name.
func resolve(strategy Strategy, name string, records []*results.Record) *results.Record {
	for _, sc := range scorers {
		if sc.strategy != strategy {
			continue
		}
		for _, r := range records {
			if sc.key(r) == name {
				return r
			}
		}
	}
	return nil
}

// Unclaimed returns the records no candidate claims, compared by full name.
// A record may be claimed by several points; claiming is not exclusive.
func Unclaimed(candidates []*Candidate, records []*results.Record) []*results.Record {
	claimed := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c != nil {
			claimed[c.Record.FullName] = true
		}
	}
	var out []*results.Record
	for _, r := range records {
		if !claimed[r.FullName] {
			out = append(out, r)
		}
	}
	return out
}
