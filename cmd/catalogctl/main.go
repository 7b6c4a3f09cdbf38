// Command catalogctl manages the store catalog from a terminal: schema
// migrations, listing products, bulk CSV import and keepalive pings.
package main

import (
	"fmt"
	"os"

	"smart-store/internal/config"
	"smart-store/internal/database"
	"smart-store/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand needs
type app struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
	// openDB is swapped out in tests
	openDB func(cfg config.DatabaseConfig) (database.Service, error)
}

func newApp() *app {
	return &app{openDB: database.New}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the store catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			a.logger = logger.NewCLI(a.verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newProductsCmd(a),
		newImportCmd(a),
		newKeepAliveCmd(a),
	)

	return rootCmd
}

func (a *app) database() (database.Service, error) {
	db, err := a.openDB(a.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
