package main

import (
	"fmt"
	"strconv"

	"pointsync/internal/azure"
	"pointsync/internal/config"
	"pointsync/internal/logging"
	"pointsync/internal/reconcile"
)

// parsePlanArgs reads the positional "<plan-id> [suite-id]" arguments.
// A zero suite id means every suite in the plan.
func parsePlanArgs(args []string) (planID, suiteID int, err error) {
	planID, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid plan id %q", args[0])
	}
	if len(args) > 1 {
		suiteID, err = strconv.Atoi(args[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid suite id %q", args[1])
		}
	}
	return planID, suiteID, nil
}

// newReconciler builds the store-backed reconciler from the resolved
// configuration.
func newReconciler() (*reconcile.Reconciler, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return nil, err
	}

	client, err := azure.New(cfg.OrganizationURL, cfg.Project, cfg.Token,
		azure.WithAPIVersion(cfg.APIVersion),
		azure.WithLogger(logging.New("azure")),
	)
	if err != nil {
		return nil, err
	}
	return reconcile.New(azure.NewStore(client)), nil
}
