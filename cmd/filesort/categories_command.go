package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filesort/internal/category"
)

type categoryJSON struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the category table used to sort files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := cfg.CategoryTable()
			if err != nil {
				return err
			}
			if jsonOut {
				out := make([]categoryJSON, 0, len(table.Names()))
				for _, c := range table.Categories() {
					out = append(out, categoryJSON{Name: c.Name, Extensions: c.Extensions})
				}
				out = append(out, categoryJSON{Name: category.Others, Extensions: []string{}})
				return writeJSON(cmd, out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Category", "Extensions"},
				categoryRows(table),
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the table as JSON")
	return cmd
}
