package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"smart-store/internal/checkout"
	"smart-store/internal/domain"
	"smart-store/internal/repository"

	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect the catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			defer db.Close()

			products, err := repository.NewProductRepository(db.DB()).List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}

			return printProducts(cmd.OutOrStdout(), products)
		},
	})

	return cmd
}

func printProducts(out io.Writer, products []*domain.Product) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, checkout.FormatAmount(p.Price), p.ImageURL)
	}
	return tw.Flush()
}
