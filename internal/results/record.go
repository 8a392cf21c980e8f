// Package results parses JUnit/pytest-style XML reports into a normalized,
// categorized result set.
package results

import "strings"

// Category classifies one test case. It is this tool's internal vocabulary,
// distinct from the remote outcome vocabulary until mapped.
type Category string

const (
	CategoryPassed  Category = "passed"
	CategoryFailed  Category = "failed"
	CategorySkipped Category = "skipped"
	CategoryError   Category = "error"
)

// cleanPrefix is stripped once from the front of a test name to derive the
// comparison-friendly clean name.
const cleanPrefix = "test_"

// Record is one parsed test case. Records are immutable after parsing.
type Record struct {
	ClassName string   `json:"classname"`
	Name      string   `json:"name"`
	FullName  string   `json:"full_name"`
	CleanName string   `json:"clean_name"`
	Duration  float64  `json:"duration"`
	Category  Category `json:"category"`
	// Message and Output carry the failure/error/skipped marker's message
	// attribute and body text. Empty for passed cases.
	Message string `json:"message,omitempty"`
	Output  string `json:"output,omitempty"`
}

// Set holds the parsed records partitioned by category, each slice in
// document order.
type Set struct {
	Passed  []*Record `json:"passed"`
	Failed  []*Record `json:"failed"`
	Skipped []*Record `json:"skipped"`
	Errored []*Record `json:"error"`
}

// Total returns the number of records across all categories.
func (s *Set) Total() int {
	return len(s.Passed) + len(s.Failed) + len(s.Skipped) + len(s.Errored)
}

// Flatten returns all records in one slice, category by category. Each
// record already carries its Category tag.
func (s *Set) Flatten() []*Record {
	out := make([]*Record, 0, s.Total())
	out = append(out, s.Passed...)
	out = append(out, s.Failed...)
	out = append(out, s.Skipped...)
	out = append(out, s.Errored...)
	return out
}

func newRecord(classname, name string, duration float64) *Record {
	full := name
	if classname != "" {
		full = classname + "." + name
	}
	return &Record{
		ClassName: classname,
		Name:      name,
		FullName:  full,
		CleanName: strings.TrimPrefix(name, cleanPrefix),
		Duration:  duration,
	}
}
