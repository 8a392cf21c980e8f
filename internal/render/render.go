// Package render writes point listings and reconciliation summaries to a
// console table, JSON, or CSV.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"pointsync/internal/reconcile"
)

// Format selects the output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatConsole, FormatJSON, FormatCSV:
		return Format(s), nil
	case "":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: console, json, csv)", s)
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// Points renders suite-grouped test points in the chosen format.
func Points(w io.Writer, f Format, groups []reconcile.SuitePoints) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, groups)
	case FormatCSV:
		return pointsCSV(w, groups)
	default:
		pointsConsole(w, groups)
		return nil
	}
}

func pointsConsole(w io.Writer, groups []reconcile.SuitePoints) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No test points found.")
		return
	}

	total := 0
	for _, g := range groups {
		fmt.Fprintf(w, "Suite: %s (ID %d)\n", g.Suite.Name, g.Suite.ID)

		t := newTable(w)
		t.AppendHeader(table.Row{"Point", "Case", "Title", "State", "Outcome", "Configuration", "Assigned To", "Auto"})
		for _, p := range g.Points {
			t.AppendRow(table.Row{
				p.PointID, p.TestCaseID, truncate(p.Title(), 60),
				p.State, p.Outcome, p.ConfigurationName, p.AssignedTo, boolMark(p.Automated),
			})
		}
		t.Render()
		fmt.Fprintln(w)
		total += len(g.Points)
	}
	fmt.Fprintf(w, "Total: %d test points in %d suites\n", total, len(groups))
}

func pointsCSV(w io.Writer, groups []reconcile.SuitePoints) error {
	cw := csv.NewWriter(w)
	header := []string{
		"suite_id", "suite_name", "point_id", "test_case_id", "title",
		"state", "outcome", "configuration", "assigned_to", "automated",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, g := range groups {
		for _, p := range g.Points {
			row := []string{
				strconv.Itoa(g.Suite.ID), g.Suite.Name,
				strconv.Itoa(p.PointID), strconv.Itoa(p.TestCaseID), p.Title(),
				p.State, p.Outcome, p.ConfigurationName, p.AssignedTo,
				strconv.FormatBool(p.Automated),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SyncSummary renders one sync run's summary in the chosen format.
func SyncSummary(w io.Writer, f Format, s *reconcile.Summary) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatCSV:
		return syncSummaryCSV(w, s)
	default:
		syncSummaryConsole(w, s)
		return nil
	}
}

func syncSummaryConsole(w io.Writer, s *reconcile.Summary) {
	if s.DryRun {
		fmt.Fprintln(w, "Dry run: no updates were issued.")
	}
	fmt.Fprintf(w, "Run %s: plan %d, %d XML results, %d test points\n",
		s.RunID, s.PlanID, s.TotalResults, s.TotalPoints)

	if s.TotalMatches == 0 {
		fmt.Fprintln(w, "No matches found. Try lowering --min-score or check naming conventions.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Point", "Title", "Matched Test", "Score", "Strategy", "Outcome"})
	for _, m := range s.Matches {
		t.AppendRow(table.Row{
			m.Point.PointID, truncate(m.Point.Title(), 40), truncate(m.Record.Name, 40),
			m.Score, string(m.Strategy), string(m.Outcome),
		})
	}
	t.Render()

	fmt.Fprintf(w, "Matched %d, updated %d", s.TotalMatches, s.TotalUpdated)
	for _, o := range reconcile.Outcomes {
		if n := s.ByOutcome[o]; n > 0 {
			fmt.Fprintf(w, ", %s: %d", o, n)
		}
	}
	fmt.Fprintln(w)

	if n := len(s.UnmatchedPoints); n > 0 {
		fmt.Fprintf(w, "Unmatched test points: %d\n", n)
	}
	if n := len(s.UnmatchedRecords); n > 0 {
		fmt.Fprintf(w, "Unmatched XML results: %d\n", n)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "Error: %s\n", e)
	}
}

func syncSummaryCSV(w io.Writer, s *reconcile.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{"point_id", "title", "matched_test", "score", "strategy", "outcome"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range s.Matches {
		row := []string{
			strconv.Itoa(m.Point.PointID), m.Point.Title(), m.Record.Name,
			strconv.Itoa(m.Score), string(m.Strategy), string(m.Outcome),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// BulkSummary renders one update-by-criteria run's summary to the console.
func BulkSummary(w io.Writer, s *reconcile.BulkSummary) {
	mode := "Updated"
	if s.DryRun {
		mode = "Would update"
	}
	fmt.Fprintf(w, "Run %s: plan %d, found %d points, %d eligible\n",
		s.RunID, s.PlanID, s.TotalFound, s.TotalEligible)

	if s.TotalEligible > 0 {
		t := newTable(w)
		t.AppendHeader(table.Row{"Point", "Title", "State", "Current Outcome"})
		for _, p := range s.Eligible {
			t.AppendRow(table.Row{p.PointID, truncate(p.Title(), 60), p.State, p.Outcome})
		}
		t.Render()
	}

	if s.DryRun {
		fmt.Fprintf(w, "%s %d points to %s\n", mode, s.TotalEligible, s.Outcome)
	} else {
		fmt.Fprintf(w, "%s %d/%d points to %s\n", mode, s.TotalUpdated, s.TotalEligible, s.Outcome)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "Error: %s\n", e)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
