package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"audit-backend/internal/progress"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the progress steps shown while an audit runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for i, label := range progress.Steps {
			fmt.Fprintf(out, "%d. %s\n", i+1, label)
		}
		fmt.Fprintf(out, "advances every %s\n", progress.Interval)
		return nil
	},
}
