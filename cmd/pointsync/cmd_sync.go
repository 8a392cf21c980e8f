package main

import (
	"github.com/spf13/cobra"

	"pointsync/internal/match"
	"pointsync/internal/reconcile"
	"pointsync/internal/render"
)

var syncFlags struct {
	resultsPath string
	minScore    int
	comment     string
	dryRun      bool
	output      string
}

var syncCmd = &cobra.Command{
	Use:   "sync <plan-id> [suite-id]",
	Short: "Update test point outcomes from a JUnit XML report",
	Long: "Sync parses a JUnit/pytest XML report, fuzzy-matches each test point's\n" +
		"title against the parsed test names, and patches the matched points'\n" +
		"outcomes. Unmatched points and results are reported, not failed.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.StringVarP(&syncFlags.resultsPath, "results", "r", "", "Path to the XML results file (required)")
	f.IntVar(&syncFlags.minScore, "min-score", match.DefaultMinScore, "Minimum fuzzy match score (0-100)")
	f.StringVar(&syncFlags.comment, "comment", "", "Comment to attach to each update")
	f.BoolVar(&syncFlags.dryRun, "dry-run", false, "Match and report without updating")
	f.StringVarP(&syncFlags.output, "output", "o", "console", "Output format (console, json, csv)")

	_ = syncCmd.MarkFlagRequired("results")
}

func runSync(cmd *cobra.Command, args []string) error {
	planID, suiteID, err := parsePlanArgs(args)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(syncFlags.output)
	if err != nil {
		return err
	}

	rec, err := newReconciler()
	if err != nil {
		return err
	}
	summary, err := rec.SyncFromResults(cmd.Context(), reconcile.SyncParams{
		PlanID:      planID,
		SuiteID:     suiteID,
		ResultsPath: syncFlags.resultsPath,
		MinScore:    syncFlags.minScore,
		Comment:     syncFlags.comment,
		DryRun:      syncFlags.dryRun,
	})
	if err != nil {
		return err
	}
	return render.SyncSummary(cmd.OutOrStdout(), format, summary)
}
