package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pointsync/internal/reconcile"
	"pointsync/internal/render"
)

var updateFlags struct {
	outcome         string
	filterOutcome   string
	filterState     string
	filterAutomated bool
	filterName      string
	comment         string
	dryRun          bool
}

var updateCmd = &cobra.Command{
	Use:   "update <plan-id> [suite-id]",
	Short: "Set an outcome on every test point matching the filters",
	Long: "Update fetches the plan's test points, keeps the ones matching every\n" +
		"given filter, and patches them all to the requested outcome. With no\n" +
		"filters every point in scope is updated.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpdate,
}

func init() {
	f := updateCmd.Flags()
	f.StringVar(&updateFlags.outcome, "outcome", "", "Outcome to set: "+strings.Join(outcomeNames(), ", ")+" (required)")
	f.StringVar(&updateFlags.filterOutcome, "filter-outcome", "", "Only points whose current outcome matches")
	f.StringVar(&updateFlags.filterState, "filter-state", "", "Only points whose state matches")
	f.BoolVar(&updateFlags.filterAutomated, "filter-automated", false, "Only points whose automation flag matches")
	f.StringVar(&updateFlags.filterName, "filter-name", "", "Only points whose title contains the substring")
	f.StringVar(&updateFlags.comment, "comment", "", "Comment to attach to each update")
	f.BoolVar(&updateFlags.dryRun, "dry-run", false, "Report eligible points without updating")

	_ = updateCmd.MarkFlagRequired("outcome")
}

func outcomeNames() []string {
	names := make([]string, len(reconcile.Outcomes))
	for i, o := range reconcile.Outcomes {
		names[i] = string(o)
	}
	return names
}

func runUpdate(cmd *cobra.Command, args []string) error {
	planID, suiteID, err := parsePlanArgs(args)
	if err != nil {
		return err
	}
	outcome, err := reconcile.ParseOutcome(updateFlags.outcome)
	if err != nil {
		return err
	}

	filter := reconcile.Filter{
		Outcome:       updateFlags.filterOutcome,
		State:         updateFlags.filterState,
		TitleContains: updateFlags.filterName,
	}
	// Only an explicitly set flag filters; the default false must not
	// exclude automated points.
	if cmd.Flags().Changed("filter-automated") {
		filter.Automated = &updateFlags.filterAutomated
	}

	rec, err := newReconciler()
	if err != nil {
		return err
	}
	summary, err := rec.BulkUpdate(cmd.Context(), reconcile.BulkUpdateParams{
		PlanID:  planID,
		SuiteID: suiteID,
		Outcome: outcome,
		Filter:  filter,
		Comment: updateFlags.comment,
		DryRun:  updateFlags.dryRun,
	})
	if err != nil {
		return err
	}
	render.BulkSummary(cmd.OutOrStdout(), summary)
	if len(summary.Errors) > 0 {
		return fmt.Errorf("%d of %d updates failed", len(summary.Errors), summary.TotalEligible)
	}
	return nil
}
