package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// PlanScope provides operations on one test plan.
type PlanScope struct {
	client *Client
	planID int
}

// Plan scopes subsequent calls to the given test plan.
func (c *Client) Plan(id int) *PlanScope {
	return &PlanScope{client: c, planID: id}
}

// Suites returns every test suite of the plan.
// Uses GET _apis/testplan/Plans/{plan}/suites.
func (s *PlanScope) Suites(ctx context.Context) ([]SuiteResource, error) {
	u := s.client.apiURL(fmt.Sprintf("testplan/Plans/%d/suites", s.planID))

	var paged pagedSuites
	if err := s.client.doJSON(ctx, "GET", u, "list suites", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Value, nil
}

// Points returns the test points of one suite.
// Uses GET _apis/test/Plans/{plan}/Suites/{suite}/points.
func (s *PlanScope) Points(ctx context.Context, suiteID int) ([]TestPointResource, error) {
	u := s.client.apiURL(fmt.Sprintf("test/Plans/%d/Suites/%d/points", s.planID, suiteID))

	var paged pagedPoints
	if err := s.client.doJSON(ctx, "GET", u, "list points", nil, &paged); err != nil {
		return nil, err
	}
	return paged.Value, nil
}

// UpdateOutcome patches one point's outcome, with an optional comment.
// Uses PATCH _apis/test/Plans/{plan}/Suites/{suite}/points/{point}.
func (s *PlanScope) UpdateOutcome(ctx context.Context, suiteID, pointID int, outcome, comment string) (*TestPointResource, error) {
	u := s.client.apiURL(fmt.Sprintf("test/Plans/%d/Suites/%d/points/%d", s.planID, suiteID, pointID))

	payload, err := json.Marshal(updateOutcomeRQ{Outcome: outcome, Comment: comment})
	if err != nil {
		return nil, fmt.Errorf("update outcome: marshal: %w", err)
	}

	var point TestPointResource
	if err := s.client.doJSON(ctx, "PATCH", u, "update outcome", bytes.NewReader(payload), &point); err != nil {
		return nil, err
	}
	return &point, nil
}
