package azure

import (
	"context"
	"strconv"

	"pointsync/internal/reconcile"
)

// Store adapts the Client to the reconcile.Store interface, flattening the
// service's nested payloads into the orchestrator's records.
type Store struct {
	client *Client
}

// NewStore returns a Store over the given client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// FetchSuites implements reconcile.Store.
func (s *Store) FetchSuites(ctx context.Context, planID int) ([]reconcile.Suite, error) {
	suites, err := s.client.Plan(planID).Suites(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.Suite, 0, len(suites))
	for _, sr := range suites {
		suite := reconcile.Suite{
			ID:   sr.ID,
			Name: sr.Name,
			Type: sr.SuiteType,
		}
		if sr.ParentSuite != nil {
			suite.ParentID = sr.ParentSuite.ID
		}
		out = append(out, suite)
	}
	return out, nil
}

// FetchPoints implements reconcile.Store.
func (s *Store) FetchPoints(ctx context.Context, planID, suiteID int) ([]reconcile.TestPoint, error) {
	points, err := s.client.Plan(planID).Points(ctx, suiteID)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.TestPoint, 0, len(points))
	for _, pr := range points {
		out = append(out, flattenPoint(pr, suiteID))
	}
	return out, nil
}

// UpdateOutcome implements reconcile.Store.
func (s *Store) UpdateOutcome(ctx context.Context, planID, suiteID, pointID int, outcome reconcile.Outcome, comment string) (*reconcile.TestPoint, error) {
	pr, err := s.client.Plan(planID).UpdateOutcome(ctx, suiteID, pointID, string(outcome), comment)
	if err != nil {
		return nil, err
	}
	point := flattenPoint(*pr, suiteID)
	return &point, nil
}

// flattenPoint maps one raw point into the orchestrator's record. The
// payload's own suite id wins when present; suiteID covers responses that
// omit it.
func flattenPoint(pr TestPointResource, suiteID int) reconcile.TestPoint {
	if pr.SuiteID != 0 {
		suiteID = pr.SuiteID
	}

	// The test case id arrives as a JSON string; a malformed one flattens
	// to zero rather than failing the fetch.
	caseID, _ := strconv.Atoi(pr.TestCase.ID)

	configuration := pr.Configuration.Name
	if configuration == "" {
		configuration = "Default"
	}

	assignedTo := "Unassigned"
	if pr.AssignedTo != nil && pr.AssignedTo.DisplayName != "" {
		assignedTo = pr.AssignedTo.DisplayName
	}

	return reconcile.TestPoint{
		PointID:           pr.ID,
		TestCaseID:        caseID,
		TestCaseName:      pr.TestCase.Name,
		SuiteID:           suiteID,
		ConfigurationName: configuration,
		State:             pr.State,
		Outcome:           pr.Outcome,
		Automated:         pr.IsAutomated,
		AssignedTo:        assignedTo,
	}
}
