package results

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// testCase mirrors one <testcase> element. Suites may nest suites, so the
// parser walks the token stream and decodes testcase elements wherever they
// appear instead of binding the whole document to a fixed schema.
type testCase struct {
	ClassName string  `xml:"classname,attr"`
	Name      string  `xml:"name,attr"`
	Time      string  `xml:"time,attr"`
	Failure   *marker `xml:"failure"`
	Error     *marker `xml:"error"`
	Skipped   *marker `xml:"skipped"`
}

// marker is the failure/error/skipped child of a test case.
type marker struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// Parse reads a JUnit/pytest-style XML report and returns the records
// partitioned by category. It fails with a NotFoundError when the file does
// not exist and a ParseError when the document is malformed.
func Parse(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	set, err := parse(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return set, nil
}

func parse(r io.Reader) (*Set, error) {
	dec := xml.NewDecoder(r)
	set := &Set{}
	sawRoot := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != "testcase" {
			continue
		}

		var tc testCase
		if err := dec.DecodeElement(&tc, &start); err != nil {
			return nil, err
		}
		set.add(&tc)
	}

	if !sawRoot {
		return nil, errors.New("no root element")
	}
	return set, nil
}

// add classifies a test case and appends it to the matching category slice.
// Only the first matching marker counts: failure beats error beats skipped,
// so a case is never double-counted.
func (s *Set) add(tc *testCase) {
	rec := newRecord(tc.ClassName, tc.Name, parseDuration(tc.Time))

	switch {
	case tc.Failure != nil:
		rec.Category = CategoryFailed
		rec.Message = tc.Failure.Message
		rec.Output = strings.TrimSpace(tc.Failure.Body)
		s.Failed = append(s.Failed, rec)
	case tc.Error != nil:
		rec.Category = CategoryError
		rec.Message = tc.Error.Message
		rec.Output = strings.TrimSpace(tc.Error.Body)
		s.Errored = append(s.Errored, rec)
	case tc.Skipped != nil:
		rec.Category = CategorySkipped
		rec.Message = tc.Skipped.Message
		rec.Output = strings.TrimSpace(tc.Skipped.Body)
		s.Skipped = append(s.Skipped, rec)
	default:
		rec.Category = CategoryPassed
		s.Passed = append(s.Passed, rec)
	}
}

// parseDuration converts the time attribute to seconds. Absent, malformed,
// or negative values become 0.
func parseDuration(v string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
