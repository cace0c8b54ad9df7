// cmd/dealsdash/reindex.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Copy every vendor into the Elasticsearch vendor index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap(cmd.Context(), 3)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := a.Reindex(cmd.Context())
		if err != nil {
			return fmt.Errorf("reindex stopped after %d vendor(s): %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d vendor(s)\n", n)
		return nil
	},
}
