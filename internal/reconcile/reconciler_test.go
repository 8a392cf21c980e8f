package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pointsync/internal/match"
	"pointsync/internal/results"
)

// fakeStore is an in-memory Store with injectable per-point failures.
type fakeStore struct {
	suites  []Suite
	points  map[int][]TestPoint // keyed by suite ID
	failOn  map[int]error       // point ID -> error to return from UpdateOutcome
	updates []update
}

type update struct {
	PlanID, SuiteID, PointID int
	Outcome                  Outcome
	Comment                  string
}

func (f *fakeStore) FetchSuites(_ context.Context, _ int) ([]Suite, error) {
	return f.suites, nil
}

func (f *fakeStore) FetchPoints(_ context.Context, _ int, suiteID int) ([]TestPoint, error) {
	return f.points[suiteID], nil
}

func (f *fakeStore) UpdateOutcome(_ context.Context, planID, suiteID, pointID int, outcome Outcome, comment string) (*TestPoint, error) {
	if err, ok := f.failOn[pointID]; ok {
		return nil, err
	}
	f.updates = append(f.updates, update{planID, suiteID, pointID, outcome, comment})
	return &TestPoint{PointID: pointID, SuiteID: suiteID, Outcome: string(outcome)}, nil
}

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.xml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSyncFromResults_EndToEnd(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10, Name: "Smoke"}},
		points: map[int][]TestPoint{
			10: {{PointID: 1, TestCaseID: 100, TestCaseName: "Checkout Flow", SuiteID: 10}},
		},
	}
	path := writeReport(t, `<testsuite><testcase classname="tests" name="test_checkout_flow" time="0.5"/></testsuite>`)

	summary, err := New(store).SyncFromResults(context.Background(), SyncParams{
		PlanID:      7,
		ResultsPath: path,
		Comment:     "nightly run",
	})
	if err != nil {
		t.Fatalf("SyncFromResults: %v", err)
	}

	if summary.TotalMatches != 1 || summary.TotalUpdated != 1 {
		t.Fatalf("matches=%d updated=%d, want 1/1", summary.TotalMatches, summary.TotalUpdated)
	}
	m := summary.Matches[0]
	if m.Outcome != OutcomePassed {
		t.Errorf("resolved outcome = %q, want Passed", m.Outcome)
	}
	if m.Strategy != match.StrategyCleanName {
		t.Errorf("strategy = %q, want clean_name", m.Strategy)
	}
	if summary.ByOutcome[OutcomePassed] != 1 {
		t.Errorf("ByOutcome = %v", summary.ByOutcome)
	}
	if len(store.updates) != 1 {
		t.Fatalf("store updates = %d, want 1", len(store.updates))
	}
	u := store.updates[0]
	if u.PlanID != 7 || u.SuiteID != 10 || u.PointID != 1 || u.Outcome != OutcomePassed || u.Comment != "nightly run" {
		t.Errorf("unexpected update: %+v", u)
	}
	if summary.RunID == "" {
		t.Error("summary missing run id")
	}
}

func TestSyncFromResults_UpdateFailureDoesNotStopBatch(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10, Name: "Smoke"}},
		points: map[int][]TestPoint{
			10: {
				{PointID: 1, TestCaseName: "Checkout Flow", SuiteID: 10},
				{PointID: 2, TestCaseName: "Login Success", SuiteID: 10},
			},
		},
		failOn: map[int]error{1: fmt.Errorf("HTTP 500: server error")},
	}
	path := writeReport(t, `<testsuite>
  <testcase name="test_checkout_flow"/>
  <testcase name="test_login_success"><failure message="boom"/></testcase>
</testsuite>`)

	summary, err := New(store).SyncFromResults(context.Background(), SyncParams{PlanID: 7, ResultsPath: path})
	if err != nil {
		t.Fatalf("SyncFromResults: %v", err)
	}

	if summary.TotalMatches != 2 {
		t.Fatalf("matches = %d, want 2", summary.TotalMatches)
	}
	if summary.TotalUpdated != 1 {
		t.Errorf("updated = %d, want 1 (failure must not stop the batch)", summary.TotalUpdated)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("errors = %v, want one entry", summary.Errors)
	}
	if len(store.updates) != 1 || store.updates[0].PointID != 2 {
		t.Errorf("expected point 2 to still be updated: %+v", store.updates)
	}
	// Failed XML category resolves to Failed outcome for point 2.
	if store.updates[0].Outcome != OutcomeFailed {
		t.Errorf("outcome = %q, want Failed", store.updates[0].Outcome)
	}
}

func TestSyncFromResults_NoMatchesIsNormal(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10}},
		points: map[int][]TestPoint{
			10: {{PointID: 1, TestCaseName: "Entirely Different", SuiteID: 10}},
		},
	}
	path := writeReport(t, `<testsuite><testcase name="test_checkout_flow"/></testsuite>`)

	summary, err := New(store).SyncFromResults(context.Background(), SyncParams{
		PlanID:      7,
		ResultsPath: path,
		MinScore:    100,
	})
	if err != nil {
		t.Fatalf("zero matches must not be an error: %v", err)
	}
	if summary.TotalMatches != 0 || summary.TotalUpdated != 0 {
		t.Errorf("matches=%d updated=%d, want 0/0", summary.TotalMatches, summary.TotalUpdated)
	}
	if len(store.updates) != 0 {
		t.Errorf("no updates expected, got %+v", store.updates)
	}
	if len(summary.UnmatchedPoints) != 1 || len(summary.UnmatchedRecords) != 1 {
		t.Errorf("unmatched points=%d records=%d, want 1/1",
			len(summary.UnmatchedPoints), len(summary.UnmatchedRecords))
	}
}

func TestSyncFromResults_ParseFailureIsFatal(t *testing.T) {
	store := &fakeStore{suites: []Suite{{ID: 10}}, points: map[int][]TestPoint{10: {{PointID: 1, SuiteID: 10}}}}
	path := writeReport(t, `<testsuite><testcase`)

	_, err := New(store).SyncFromResults(context.Background(), SyncParams{PlanID: 7, ResultsPath: path})
	if err == nil {
		t.Fatal("expected fatal parse error")
	}
	if !results.IsParse(err) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestSyncFromResults_MissingFileIsFatal(t *testing.T) {
	store := &fakeStore{suites: []Suite{{ID: 10}}}

	_, err := New(store).SyncFromResults(context.Background(), SyncParams{
		PlanID:      7,
		ResultsPath: filepath.Join(t.TempDir(), "absent.xml"),
	})
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if !results.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestSyncFromResults_DryRun(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10}},
		points: map[int][]TestPoint{10: {{PointID: 1, TestCaseName: "Checkout Flow", SuiteID: 10}}},
	}
	path := writeReport(t, `<testsuite><testcase name="test_checkout_flow"/></testsuite>`)

	summary, err := New(store).SyncFromResults(context.Background(), SyncParams{
		PlanID: 7, ResultsPath: path, DryRun: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalMatches != 1 || summary.TotalUpdated != 0 {
		t.Errorf("matches=%d updated=%d, want 1/0", summary.TotalMatches, summary.TotalUpdated)
	}
	if len(store.updates) != 0 {
		t.Errorf("dry run must not update: %+v", store.updates)
	}
	if summary.ByOutcome[OutcomePassed] != 1 {
		t.Errorf("dry run still tallies matches by outcome: %v", summary.ByOutcome)
	}
}

func TestSyncFromResults_SuiteScope(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10}, {ID: 20}},
		points: map[int][]TestPoint{
			10: {{PointID: 1, TestCaseName: "Checkout Flow", SuiteID: 10}},
			20: {{PointID: 2, TestCaseName: "Checkout Flow", SuiteID: 20}},
		},
	}
	path := writeReport(t, `<testsuite><testcase name="test_checkout_flow"/></testsuite>`)

	summary, err := New(store).SyncFromResults(context.Background(), SyncParams{
		PlanID: 7, SuiteID: 20, ResultsPath: path,
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalPoints != 1 {
		t.Fatalf("points = %d, want only suite 20's point", summary.TotalPoints)
	}
	if len(store.updates) != 1 || store.updates[0].SuiteID != 20 {
		t.Errorf("expected update scoped to suite 20: %+v", store.updates)
	}
}

func TestMapOutcome(t *testing.T) {
	cases := []struct {
		in   results.Category
		want Outcome
	}{
		{results.CategoryFailed, OutcomeFailed},
		{results.CategoryError, OutcomeFailed},
		{results.CategorySkipped, OutcomeBlocked},
		{results.CategoryPassed, OutcomePassed},
		{results.Category("mystery"), OutcomeNone},
	}
	for _, tc := range cases {
		if got := MapOutcome(tc.in); got != tc.want {
			t.Errorf("MapOutcome(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseOutcome(t *testing.T) {
	if o, err := ParseOutcome("Blocked"); err != nil || o != OutcomeBlocked {
		t.Errorf("ParseOutcome(Blocked) = %q, %v", o, err)
	}
	if _, err := ParseOutcome("Maybe"); err == nil {
		t.Error("expected error for unknown outcome")
	}
}

func TestFilter_Matches(t *testing.T) {
	automated := true
	point := TestPoint{
		TestCaseName: "Login Success Test",
		State:        "Ready",
		Outcome:      "Failed",
		Automated:    true,
	}

	cases := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty filter matches", Filter{}, true},
		{"outcome match", Filter{Outcome: "Failed"}, true},
		{"outcome mismatch", Filter{Outcome: "Passed"}, false},
		{"state match", Filter{State: "Ready"}, true},
		{"automated match", Filter{Automated: &automated}, true},
		{"title substring case-insensitive", Filter{TitleContains: "login success"}, true},
		{"title substring miss", Filter{TitleContains: "checkout"}, false},
		{"all criteria", Filter{Outcome: "Failed", State: "Ready", TitleContains: "Test"}, true},
	}
	for _, tc := range cases {
		if got := tc.f.Matches(point); got != tc.want {
			t.Errorf("%s: Matches = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBulkUpdate(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10}},
		points: map[int][]TestPoint{
			10: {
				{PointID: 1, TestCaseName: "A", SuiteID: 10, Outcome: "Failed"},
				{PointID: 2, TestCaseName: "B", SuiteID: 10, Outcome: "Passed"},
				{PointID: 3, TestCaseName: "C", SuiteID: 10, Outcome: "Failed"},
			},
		},
		failOn: map[int]error{3: fmt.Errorf("HTTP 409: conflict")},
	}

	summary, err := New(store).BulkUpdate(context.Background(), BulkUpdateParams{
		PlanID:  7,
		Outcome: OutcomeBlocked,
		Filter:  Filter{Outcome: "Failed"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalFound != 3 || summary.TotalEligible != 2 {
		t.Errorf("found=%d eligible=%d, want 3/2", summary.TotalFound, summary.TotalEligible)
	}
	if summary.TotalUpdated != 1 || len(summary.Errors) != 1 {
		t.Errorf("updated=%d errors=%d, want 1/1", summary.TotalUpdated, len(summary.Errors))
	}
}

func TestBulkUpdate_DryRun(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10}},
		points: map[int][]TestPoint{10: {{PointID: 1, SuiteID: 10, Outcome: "Failed"}}},
	}

	summary, err := New(store).BulkUpdate(context.Background(), BulkUpdateParams{
		PlanID:  7,
		Outcome: OutcomePassed,
		DryRun:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalEligible != 1 || summary.TotalUpdated != 0 || len(store.updates) != 0 {
		t.Errorf("dry run leaked updates: %+v", summary)
	}
}

func TestListPoints_SkipsEmptySuites(t *testing.T) {
	store := &fakeStore{
		suites: []Suite{{ID: 10, Name: "Full"}, {ID: 20, Name: "Empty"}},
		points: map[int][]TestPoint{10: {{PointID: 1, SuiteID: 10}}},
	}

	groups, err := New(store).ListPoints(context.Background(), 7, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Suite.ID != 10 {
		t.Errorf("groups = %+v, want only suite 10", groups)
	}
}
