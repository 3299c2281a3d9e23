package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalgen/internal/signal"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog <eeg|ecg>",
		Short: "List the categories and patterns offered for a signal family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			family, err := signal.ParseFamily(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			cat, err := client.Catalog(cmd.Context(), family)
			if err != nil {
				return failed("load catalog", err)
			}
			if asJSON {
				return writeJSON(cmd, cat)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(cat))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}

func renderCatalog(cat signal.PatternCatalog) string {
	var rows [][]string
	for _, group := range cat.Categories {
		for _, p := range group.Patterns {
			rows = append(rows, []string{group.Category.Label(), p.DisplayName, p.ID})
		}
	}
	title := fmt.Sprintf("%s patterns", cat.Family.Label())
	return renderTable(title, []string{"Category", "Pattern", "ID"}, rows, nil)
}
