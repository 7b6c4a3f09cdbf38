package main

import (
	"fmt"

	"smart-store/internal/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			db, err := a.database()
			if err != nil {
				return err
			}
			defer db.Close()

			switch action {
			case "status":
				return database.GetMigrationStatus(db.DB())
			default:
				if err := database.RunMigrations(db.DB(), a.logger); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			}
		},
	}
	return cmd
}
