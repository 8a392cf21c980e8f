// Package reconcile drives the end-to-end flow: fetch test points, parse an
// XML report, match the two sets, and push outcome updates back to the
// store, aggregating a summary.
package reconcile

import (
	"context"
	"fmt"

	"pointsync/internal/match"
	"pointsync/internal/results"
)

// Outcome is the remote service's result vocabulary.
type Outcome string

const (
	OutcomePassed        Outcome = "Passed"
	OutcomeFailed        Outcome = "Failed"
	OutcomeBlocked       Outcome = "Blocked"
	OutcomeNotApplicable Outcome = "NotApplicable"
	OutcomeInconclusive  Outcome = "Inconclusive"
	OutcomeTimeout       Outcome = "Timeout"
	OutcomeAborted       Outcome = "Aborted"
	OutcomeNone          Outcome = "None"
)

// Outcomes lists the full vocabulary, in the order the service documents it.
var Outcomes = []Outcome{
	OutcomePassed, OutcomeFailed, OutcomeBlocked, OutcomeNotApplicable,
	OutcomeInconclusive, OutcomeTimeout, OutcomeAborted, OutcomeNone,
}

// ParseOutcome validates a user-supplied outcome against the vocabulary.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range Outcomes {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown outcome %q (valid: %v)", s, Outcomes)
}

// outcomeByCategory is the fixed category-to-outcome table. Skipped maps to
// Blocked because the remote vocabulary has no skipped state.
var outcomeByCategory = map[results.Category]Outcome{
	results.CategoryFailed:  OutcomeFailed,
	results.CategoryError:   OutcomeFailed,
	results.CategorySkipped: OutcomeBlocked,
	results.CategoryPassed:  OutcomePassed,
}

// MapOutcome resolves an XML category to a remote outcome. Categories
// outside the table map to None.
func MapOutcome(c results.Category) Outcome {
	if o, ok := outcomeByCategory[c]; ok {
		return o
	}
	return OutcomeNone
}

// TestPoint is one remote test point, flattened from the nested API
// payload. It lives only for the duration of one run.
type TestPoint struct {
	PointID           int    `json:"point_id"`
	TestCaseID        int    `json:"test_case_id"`
	TestCaseName      string `json:"test_case_name"`
	DisplayTitle      string `json:"display_title,omitempty"`
	SuiteID           int    `json:"suite_id"`
	ConfigurationName string `json:"configuration_name"`
	State             string `json:"state"`
	Outcome           string `json:"outcome"`
	Automated         bool   `json:"automated"`
	AssignedTo        string `json:"assigned_to"`
}

// Title returns the richest name available for matching and display: the
// display title when present, the test case name otherwise.
func (p TestPoint) Title() string {
	if p.DisplayTitle != "" {
		return p.DisplayTitle
	}
	return p.TestCaseName
}

// Suite is the remote suite a batch of points came from.
type Suite struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	ParentID int    `json:"parent_id,omitempty"`
}

// SuitePoints groups a suite with its points for listing output.
type SuitePoints struct {
	Suite  Suite       `json:"suite"`
	Points []TestPoint `json:"points"`
}

// Store is the remote test point store the reconciler talks to. Fetch
// failures are fatal for a run; update failures are accumulated per point.
type Store interface {
	FetchSuites(ctx context.Context, planID int) ([]Suite, error)
	FetchPoints(ctx context.Context, planID, suiteID int) ([]TestPoint, error)
	UpdateOutcome(ctx context.Context, planID, suiteID, pointID int, outcome Outcome, comment string) (*TestPoint, error)
}

// Match pairs one test point with the XML record that claimed it. A point
// appears in at most one Match per run; a record may back several points.
type Match struct {
	Point       TestPoint       `json:"point"`
	Record      *results.Record `json:"record"`
	Score       int             `json:"score"`
	Strategy    match.Strategy  `json:"strategy"`
	MatchedName string          `json:"matched_name"`
	Outcome     Outcome         `json:"outcome"`
}

// Summary is the aggregate result of one sync run.
type Summary struct {
	RunID            string          `json:"run_id"`
	PlanID           int             `json:"plan_id"`
	DryRun           bool            `json:"dry_run,omitempty"`
	TotalResults     int             `json:"total_results"`
	TotalPoints      int             `json:"total_points"`
	TotalMatches     int             `json:"total_matches"`
	TotalUpdated     int             `json:"total_updated"`
	ByOutcome        map[Outcome]int `json:"by_outcome,omitempty"`
	Matches          []Match         `json:"matches,omitempty"`
	UnmatchedPoints  []TestPoint     `json:"unmatched_points,omitempty"`
	UnmatchedRecords []string        `json:"unmatched_records,omitempty"`
	Errors           []string        `json:"errors,omitempty"`
}

// Filter selects points for a bulk update. Zero-valued fields do not
// constrain; all set fields must hold.
type Filter struct {
	Outcome       string
	State         string
	Automated     *bool
	TitleContains string
}

// Matches reports whether the point satisfies every set criterion.
func (f Filter) Matches(p TestPoint) bool {
	if f.Outcome != "" && p.Outcome != f.Outcome {
		return false
	}
	if f.State != "" && p.State != f.State {
		return false
	}
	if f.Automated != nil && p.Automated != *f.Automated {
		return false
	}
	if f.TitleContains != "" && !containsFold(p.Title(), f.TitleContains) {
		return false
	}
	return true
}

// BulkSummary is the aggregate result of one update-by-criteria run.
type BulkSummary struct {
	RunID         string      `json:"run_id"`
	PlanID        int         `json:"plan_id"`
	Outcome       Outcome     `json:"outcome"`
	DryRun        bool        `json:"dry_run,omitempty"`
	TotalFound    int         `json:"total_found"`
	TotalEligible int         `json:"total_eligible"`
	TotalUpdated  int         `json:"total_updated"`
	Eligible      []TestPoint `json:"eligible,omitempty"`
	Errors        []string    `json:"errors,omitempty"`
}
