package main

import (
	"context"
	"fmt"
	"time"

	"smart-store/internal/repository"

	"github.com/spf13/cobra"
)

func newKeepAliveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keepalive",
		Short: "Touch the products table so an idle hosted database stays awake",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			if err := repository.NewProductRepository(db.DB()).Ping(ctx); err != nil {
				return fmt.Errorf("keepalive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "database reachable at %s\n", time.Now().UTC().Format(time.RFC3339))
			return nil
		},
	}
}
