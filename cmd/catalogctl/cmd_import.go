package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"smart-store/internal/checkout"
	"smart-store/internal/domain"
	"smart-store/internal/importer"
	"smart-store/internal/repository"
	"smart-store/internal/service"
	"smart-store/internal/session"
	"smart-store/internal/storage"

	"github.com/spf13/cobra"
)

const cliSessionID = "catalogctl"

func newImportCmd(a *app) *cobra.Command {
	var (
		dryRun  bool
		maxRows int
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import products from a CSV file with name and price columns",
		Long: `Reads a CSV file with a header row, keeps rows with a non-empty name and a
valid price, and adds them to the catalog one at a time. Only the first
--max-rows data rows are considered. When an add fails the import stops;
rows added before the failure stay in the catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxRows <= 0 {
				maxRows = a.cfg.Import.MaxRows
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()

			if dryRun {
				parsed, err := importer.Parse(f, maxRows)
				if err != nil {
					return err
				}
				printStaged(out, parsed.Rows)
				fmt.Fprintf(out, "%d of %d rows would be imported\n", len(parsed.Rows), parsed.Considered)
				if parsed.Truncated {
					fmt.Fprintf(out, "rows beyond the first %d were ignored\n", maxRows)
				}
				return nil
			}

			db, err := a.database()
			if err != nil {
				return err
			}
			defer db.Close()

			admin := service.NewAdminService(
				repository.NewProductRepository(db.DB()),
				storage.Disabled{},
				session.NewMemoryStore(0),
				"",
				maxRows,
				a.logger,
			)

			staged, err := admin.ImportCSV(cmd.Context(), cliSessionID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Loaded %d products from CSV\n", len(staged.Rows))
			if len(staged.Rows) == 0 {
				return nil
			}

			result, err := admin.SubmitStaged(cmd.Context(), cliSessionID)
			if err != nil {
				var submitErr *importer.SubmitError
				if result != nil && errors.As(err, &submitErr) {
					return fmt.Errorf("stopped at %s after adding %d products: %w", submitErr.TempID, result.Added, submitErr.Err)
				}
				return err
			}

			fmt.Fprintf(out, "Successfully added %d products!\n", result.Added)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print the rows without touching the database")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "rows to consider (default from IMPORT_MAX_ROWS)")

	return cmd
}

func printStaged(out io.Writer, rows []domain.StagedImportRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNAME\tPRICE")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.TempID, row.Name, checkout.FormatAmount(row.Price))
	}
	tw.Flush()
}
