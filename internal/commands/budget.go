package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/budget"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
)

func newBudgetCommand(opts *rootOptions) *cobra.Command {
	budgetCmd := &cobra.Command{
		Use:   "budget",
		Short: "Recurring monthly budget items",
	}
	budgetCmd.AddCommand(
		newBudgetAddCommand(opts),
		newBudgetUpdateCommand(opts),
		newBudgetRemoveCommand(opts),
		newBudgetListCommand(opts),
		newBudgetInsertCommand(opts),
	)
	return budgetCmd
}

type budgetFlags struct {
	category    string
	description string
	amount      decimal.Decimal
	day         int
}

func (f *budgetFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.category, "category", "c", "", "category")
	fs.StringVarP(&f.description, "desc", "d", "", "description")
	decimalFlag(fs, &f.amount, "amount", "signed amount, negative for expenses")
	fs.IntVar(&f.day, "day", 1, "day of month (1-31)")
}

func (f *budgetFlags) apply(cmd *cobra.Command, item *model.BudgetItem) {
	fs := cmd.Flags()
	if fs.Changed("category") {
		item.Category = f.category
	}
	if fs.Changed("desc") {
		item.Description = f.description
	}
	if fs.Changed("amount") {
		item.Amount = f.amount
	}
	if fs.Changed("day") {
		item.DayOfMonth = f.day
	}
}

func newBudgetAddCommand(opts *rootOptions) *cobra.Command {
	var f budgetFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a budget item",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(a *app, _ []string) error {
		item := model.BudgetItem{DayOfMonth: f.day}
		f.apply(cmd, &item)
		itemID, err := a.ledger.AddBudgetItem(item)
		if err != nil {
			return err
		}
		a.record("budget.add", item.Description, itemID)
		a.printf("Added budget item %s\n", id.Short(itemID))
		return nil
	})
	f.register(cmd)
	return cmd
}

func newBudgetUpdateCommand(opts *rootOptions) *cobra.Command {
	var f budgetFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a budget item",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(opts, func(a *app, args []string) error {
		item, err := a.ledger.BudgetItem(args[0])
		if err != nil {
			return err
		}
		f.apply(cmd, &item)
		if err := a.ledger.UpdateBudgetItem(item); err != nil {
			return err
		}
		a.record("budget.update", item.Description, item.ID)
		a.printf("Updated budget item %s\n", id.Short(item.ID))
		return nil
	})
	f.register(cmd)
	return cmd
}

func newBudgetRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a budget item",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			item, err := a.ledger.BudgetItem(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.RemoveBudgetItem(item.ID); err != nil {
				return err
			}
			a.record("budget.rm", item.Description, item.ID)
			a.printf("Deleted budget item %s\n", id.Short(item.ID))
			return nil
		}),
	}
}

func newBudgetListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List budget items by day of month",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			items := a.ledger.BudgetItems()
			rows := make([][]string, 0, len(items))
			net := decimal.Zero
			for _, it := range items {
				rows = append(rows, []string{
					id.Short(it.ID), strconv.Itoa(it.DayOfMonth), it.Category, it.Description, signed(it.Amount),
				})
				net = net.Add(it.Amount)
			}
			renderTable(a.out, "No budget items.", []string{"ID", "Day", "Category", "Description", "Amount"}, rows)
			if len(items) > 0 {
				a.printf("Net per month: %s\n", signed(net))
			}
			return nil
		}),
	}
}

func newBudgetInsertCommand(opts *rootOptions) *cobra.Command {
	var month string
	var year int
	now := time.Now()

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Add one transaction per budget item for a month",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			m, err := budget.ParseMonth(month)
			if err != nil {
				return err
			}
			ids, err := a.ledger.InsertBudget(m, year)
			if err != nil {
				return err
			}
			a.record("budget.insert", fmt.Sprintf("%s %d: %d transactions", m, year, len(ids)), "")
			a.printf("Inserted %d transactions for %s %d\n", len(ids), m, year)
			return nil
		}),
	}
	cmd.Flags().StringVar(&month, "month", strconv.Itoa(int(now.Month())), "month (1-12 or name)")
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	return cmd
}
