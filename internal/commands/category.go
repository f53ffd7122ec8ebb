package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCategoryCommand(opts *rootOptions) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage transaction categories",
	}
	categoryCmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(a *app, args []string) error {
				ok, err := a.ledger.AddCategory(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("category %q not added: blank or already exists", args[0])
				}
				a.record("category.add", args[0], "")
				a.printf("Added category %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rename <from> <to>",
			Short: "Rename a category and relabel its transactions",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(opts, func(a *app, args []string) error {
				ok, err := a.ledger.RenameCategory(args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("category %q not renamed to %q", args[0], args[1])
				}
				a.record("category.rename", args[0]+" -> "+args[1], "")
				a.printf("Renamed category %s to %s\n", args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:     "rm <name>",
			Aliases: []string{"delete"},
			Short:   "Delete a category; its transactions become Uncategorized",
			Args:    cobra.ExactArgs(1),
			RunE: withApp(opts, func(a *app, args []string) error {
				ok, err := a.ledger.DeleteCategory(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("category %q cannot be deleted", args[0])
				}
				a.record("category.rm", args[0], "")
				a.printf("Deleted category %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List categories with transaction counts",
			Args:    cobra.NoArgs,
			RunE: withApp(opts, func(a *app, _ []string) error {
				counts := make(map[string]int)
				for _, t := range a.ledger.Transactions() {
					counts[t.Category]++
				}
				var rows [][]string
				for _, name := range a.ledger.Categories() {
					rows = append(rows, []string{name, strconv.Itoa(counts[name])})
				}
				renderTable(a.out, "No categories.", []string{"Category", "Transactions"}, rows)
				return nil
			}),
		},
	)
	return categoryCmd
}
