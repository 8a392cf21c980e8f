package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pointsync/internal/logging"
	"pointsync/internal/match"
	"pointsync/internal/results"
)

// Reconciler runs stateless reconciliation passes against one store. It
// keeps nothing between runs.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

// New returns a Reconciler over the given store.
func New(store Store) *Reconciler {
	return &Reconciler{store: store, logger: logging.New("reconcile")}
}

// SyncParams configures one sync-from-results run.
type SyncParams struct {
	PlanID int
	// SuiteID scopes the run to one suite; 0 means every suite in the plan.
	SuiteID     int
	ResultsPath string
	// MinScore is the match acceptance threshold; 0 means the default (80).
	MinScore int
	Comment  string
	// DryRun runs fetch/parse/match and reports would-be updates without
	// issuing any.
	DryRun bool
	// Workers bounds the parallel matching phase; 0 means the default.
	Workers int
}

// SyncFromResults fetches the plan's test points, parses the XML report,
// matches the two sets, and updates one outcome per match. Fetch and parse
// failures abort the run; per-update failures are recorded in the summary
// and never stop the batch. Zero matches is a normal summary, not an error.
func (r *Reconciler) SyncFromResults(ctx context.Context, p SyncParams) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.NewString(),
		PlanID:    p.PlanID,
		DryRun:    p.DryRun,
		ByOutcome: map[Outcome]int{},
	}
	log := r.logger.With("run_id", summary.RunID, "plan_id", p.PlanID)

	points, err := r.gatherPoints(ctx, p.PlanID, p.SuiteID)
	if err != nil {
		return nil, err
	}
	summary.TotalPoints = len(points)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := results.Parse(p.ResultsPath)
	if err != nil {
		return nil, err
	}
	records := set.Flatten()
	summary.TotalResults = len(records)
	log.Info("parsed results", "file", p.ResultsPath,
		"passed", len(set.Passed), "failed", len(set.Failed),
		"skipped", len(set.Skipped), "error", len(set.Errored))

	titles := make([]string, len(points))
	for i, pt := range points {
		titles[i] = pt.Title()
	}
	engine := match.Engine{MinScore: p.MinScore, Workers: p.Workers}
	candidates, err := engine.Match(ctx, titles, records)
	if err != nil {
		return nil, err
	}

	for i, c := range candidates {
		if c == nil {
			summary.UnmatchedPoints = append(summary.UnmatchedPoints, points[i])
			continue
		}
		summary.Matches = append(summary.Matches, Match{
			Point:       points[i],
			Record:      c.Record,
			Score:       c.Score,
			Strategy:    c.Strategy,
			MatchedName: c.MatchedName,
			Outcome:     MapOutcome(c.Record.Category),
		})
	}
	for _, rec := range match.Unclaimed(candidates, records) {
		summary.UnmatchedRecords = append(summary.UnmatchedRecords, rec.FullName)
	}
	summary.TotalMatches = len(summary.Matches)
	log.Info("matching complete", "matches", summary.TotalMatches,
		"unmatched_points", len(summary.UnmatchedPoints),
		"unmatched_records", len(summary.UnmatchedRecords))

	if summary.TotalMatches == 0 {
		return summary, nil
	}

	for _, m := range summary.Matches {
		summary.ByOutcome[m.Outcome]++
	}

	for _, m := range summary.Matches {
		if err := ctx.Err(); err != nil {
			// Mid-batch cancellation: the updates already applied are
			// individually recorded, so stopping here is safe.
			return summary, err
		}
		if p.DryRun {
			continue
		}
		_, err := r.store.UpdateOutcome(ctx, p.PlanID, m.Point.SuiteID, m.Point.PointID, m.Outcome, p.Comment)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("update point %d: %v", m.Point.PointID, err))
			log.Warn("update failed", "point_id", m.Point.PointID, "error", err)
			continue
		}
		summary.TotalUpdated++
	}

	log.Info("run complete", "updated", summary.TotalUpdated, "errors", len(summary.Errors))
	return summary, nil
}

// BulkUpdateParams configures one update-by-criteria run.
type BulkUpdateParams struct {
	PlanID  int
	SuiteID int // 0 means every suite in the plan
	Outcome Outcome
	Filter  Filter
	Comment string
	DryRun  bool
}

// BulkUpdate sets the given outcome on every point matching the filter.
// Per-point update failures are accumulated; a dry run reports the eligible
// points without updating.
func (r *Reconciler) BulkUpdate(ctx context.Context, p BulkUpdateParams) (*BulkSummary, error) {
	summary := &BulkSummary{
		RunID:   uuid.NewString(),
		PlanID:  p.PlanID,
		Outcome: p.Outcome,
		DryRun:  p.DryRun,
	}

	points, err := r.gatherPoints(ctx, p.PlanID, p.SuiteID)
	if err != nil {
		return nil, err
	}
	summary.TotalFound = len(points)

	for _, pt := range points {
		if p.Filter.Matches(pt) {
			summary.Eligible = append(summary.Eligible, pt)
		}
	}
	summary.TotalEligible = len(summary.Eligible)

	for _, pt := range summary.Eligible {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if p.DryRun {
			continue
		}
		_, err := r.store.UpdateOutcome(ctx, p.PlanID, pt.SuiteID, pt.PointID, p.Outcome, p.Comment)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("update point %d: %v", pt.PointID, err))
			continue
		}
		summary.TotalUpdated++
	}

	return summary, nil
}

// ListPoints returns the plan's points grouped by suite, for display.
// Suites with no points are omitted.
func (r *Reconciler) ListPoints(ctx context.Context, planID, suiteID int) ([]SuitePoints, error) {
	if suiteID != 0 {
		points, err := r.store.FetchPoints(ctx, planID, suiteID)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			return nil, nil
		}
		return []SuitePoints{{
			Suite:  Suite{ID: suiteID, Name: fmt.Sprintf("Suite %d", suiteID)},
			Points: points,
		}}, nil
	}

	suites, err := r.store.FetchSuites(ctx, planID)
	if err != nil {
		return nil, err
	}
	var out []SuitePoints
	for _, s := range suites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		points, err := r.store.FetchPoints(ctx, planID, s.ID)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			continue
		}
		out = append(out, SuitePoints{Suite: s, Points: points})
	}
	return out, nil
}

// gatherPoints flattens the plan's points across suites, or fetches one
// suite when scoped. Any fetch error is fatal for the run.
func (r *Reconciler) gatherPoints(ctx context.Context, planID, suiteID int) ([]TestPoint, error) {
	groups, err := r.ListPoints(ctx, planID, suiteID)
	if err != nil {
		return nil, err
	}
	var points []TestPoint
	for _, g := range groups {
		points = append(points, g.Points...)
	}
	return points, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
