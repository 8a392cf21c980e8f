package main

import (
	"github.com/spf13/cobra"

	"pointsync/internal/render"
)

var listFlags struct {
	output string
}

var listCmd = &cobra.Command{
	Use:   "list <plan-id> [suite-id]",
	Short: "List test points for a plan, grouped by suite",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listFlags.output, "output", "o", "console", "Output format (console, json, csv)")
}

func runList(cmd *cobra.Command, args []string) error {
	planID, suiteID, err := parsePlanArgs(args)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(listFlags.output)
	if err != nil {
		return err
	}

	rec, err := newReconciler()
	if err != nil {
		return err
	}
	groups, err := rec.ListPoints(cmd.Context(), planID, suiteID)
	if err != nil {
		return err
	}
	return render.Points(cmd.OutOrStdout(), format, groups)
}
