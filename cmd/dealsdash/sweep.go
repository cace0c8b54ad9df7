// cmd/dealsdash/sweep.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Deactivate expired deals once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap(cmd.Context(), 3)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := a.Reconciler.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sweep %s deactivated %d deal(s) in %s\n", res.SweepID, res.Count(), res.Duration)
		return nil
	},
}
