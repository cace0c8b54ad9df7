// cmd/dealsdash/migrate.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dealsdash/internal/common/database"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap(cmd.Context(), 5)
		if err != nil {
			return err
		}
		defer cleanup()

		m := database.NewMigrator(a.Postgres.DB, a.Logger)
		out := cmd.OutOrStdout()

		if migrateStatus {
			pending, err := m.Pending(cmd.Context())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending migrations")
				return nil
			}
			for _, mig := range pending {
				fmt.Fprintf(out, "pending  %s_%s\n", mig.Version, mig.Name)
			}
			return nil
		}

		n, err := m.Up(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Applied %d migration(s)\n", n)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list pending migrations without applying them")
}
