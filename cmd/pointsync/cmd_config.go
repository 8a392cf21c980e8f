package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pointsync/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved connection configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(rootFlags.configPath)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Organization: %s\n", cfg.OrganizationURL)
		fmt.Fprintf(w, "Project:      %s\n", cfg.Project)
		fmt.Fprintf(w, "Token:        %s\n", cfg.MaskedToken())
		fmt.Fprintf(w, "API version:  %s\n", cfg.APIVersion)
		return nil
	},
}
