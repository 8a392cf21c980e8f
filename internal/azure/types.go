package azure

// Hand-written payload types for the Azure DevOps test-management REST API
// (test plan suites, test points), limited to the fields this tool reads.

// SuiteResource is one entry of GET testplan/Plans/{plan}/suites.
type SuiteResource struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	SuiteType   string      `json:"suiteType,omitempty"`
	ParentSuite *ShallowRef `json:"parentSuite,omitempty"`
	Plan        *ShallowRef `json:"plan,omitempty"`
}

// ShallowRef is the id/name reference shape nested resources use.
type ShallowRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// TestPointResource is one entry of GET test/Plans/{plan}/Suites/{suite}/points.
type TestPointResource struct {
	ID            int          `json:"id"`
	TestCase      TestCaseRef  `json:"testCase"`
	Configuration NamedRef     `json:"configuration"`
	State         string       `json:"state,omitempty"`
	Outcome       string       `json:"outcome,omitempty"`
	IsAutomated   bool         `json:"isAutomated,omitempty"`
	SuiteID       int          `json:"suiteId,omitempty"`
	TestPlan      *ShallowRef  `json:"testPlan,omitempty"`
	LastTestRun   *NamedRef    `json:"lastTestRun,omitempty"`
	LastResult    *NamedRef    `json:"lastResult,omitempty"`
	AssignedTo    *IdentityRef `json:"assignedTo,omitempty"`
}

// TestCaseRef identifies the work item behind a point. The service returns
// the id as a JSON string here, unlike the numeric ids elsewhere.
type TestCaseRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// NamedRef is the string-id/name reference shape used by configurations
// and run links.
type NamedRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IdentityRef is the assignee shape.
type IdentityRef struct {
	DisplayName string `json:"displayName,omitempty"`
	UniqueName  string `json:"uniqueName,omitempty"`
}

// pagedSuites and pagedPoints wrap the service's list envelope.
type pagedSuites struct {
	Count int             `json:"count"`
	Value []SuiteResource `json:"value"`
}

type pagedPoints struct {
	Count int                 `json:"count"`
	Value []TestPointResource `json:"value"`
}

// errorRS is the service's error response body.
type errorRS struct {
	Message string `json:"message"`
	TypeKey string `json:"typeKey"`
}

// updateOutcomeRQ is the PATCH body for a point outcome update.
type updateOutcomeRQ struct {
	Outcome string `json:"outcome"`
	Comment string `json:"comment,omitempty"`
}
