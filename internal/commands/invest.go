package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/model"
)

func newInvestCommand(opts *rootOptions) *cobra.Command {
	investCmd := &cobra.Command{
		Use:     "invest",
		Aliases: []string{"trades"},
		Short:   "Manage investment trades",
	}
	investCmd.AddCommand(
		newInvestAddCommand(opts),
		newInvestEditCommand(opts),
		newInvestRemoveCommand(opts),
		newInvestListCommand(opts),
		newInvestImportCommand(opts),
		newInvestExportCommand(opts),
		newInvestClearCommand(opts),
	)
	return investCmd
}

// tradeFlags are the editable fields of a trade.
type tradeFlags struct {
	account   string
	ticker    string
	kind      string
	shares    decimal.Decimal
	price     decimal.Decimal
	date      string
	totalCost decimal.Decimal
}

func (f *tradeFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.account, "account", "", "account name")
	fs.StringVar(&f.ticker, "ticker", "", "ticker symbol")
	fs.StringVar(&f.kind, "type", string(model.TradeBuy), "BUY or SELL")
	decimalFlag(fs, &f.shares, "shares", "number of shares")
	decimalFlag(fs, &f.price, "price", "price per share")
	fs.StringVar(&f.date, "date", "", "trade date (default today)")
	decimalFlag(fs, &f.totalCost, "total", "total cost including fees (default shares*price)")
}

func (f *tradeFlags) apply(cmd *cobra.Command, t *model.InvestmentTransaction) {
	fs := cmd.Flags()
	if fs.Changed("account") {
		t.Account = f.account
	}
	if fs.Changed("ticker") {
		t.Ticker = f.ticker
	}
	if fs.Changed("type") {
		t.Kind = model.TradeKind(strings.ToUpper(f.kind))
	}
	if fs.Changed("shares") {
		t.Shares = f.shares
	}
	if fs.Changed("price") {
		t.Price = f.price
	}
	if fs.Changed("date") {
		t.Date = f.date
	}
	if fs.Changed("total") {
		t.TotalCost = decimal.NewNullDecimal(f.totalCost)
	}
}

func newInvestAddCommand(opts *rootOptions) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a BUY or SELL",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(a *app, _ []string) error {
		t := model.InvestmentTransaction{Kind: model.TradeBuy, Date: today().Format(model.DateFormat)}
		f.apply(cmd, &t)
		tid, err := a.ledger.AddInvestment(t)
		if err != nil {
			return err
		}
		a.record("invest.add", tradeSummary(t), tid)
		a.printf("Added trade %s\n", id.Short(tid))
		return nil
	})
	f.register(cmd)
	for _, name := range []string{"account", "ticker", "shares", "price"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newInvestEditCommand(opts *rootOptions) *cobra.Command {
	var f tradeFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a trade",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(opts, func(a *app, args []string) error {
		t, err := a.ledger.Investment(args[0])
		if err != nil {
			return err
		}
		f.apply(cmd, &t)
		if err := a.ledger.EditInvestment(t.ID, t); err != nil {
			return err
		}
		a.record("invest.edit", tradeSummary(t), t.ID)
		a.printf("Updated trade %s\n", id.Short(t.ID))
		return nil
	})
	f.register(cmd)
	return cmd
}

func newInvestRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a trade",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			t, err := a.ledger.Investment(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteInvestment(t.ID); err != nil {
				return err
			}
			a.record("invest.rm", tradeSummary(t), t.ID)
			a.printf("Deleted trade %s\n", id.Short(t.ID))
			return nil
		}),
	}
}

func newInvestListCommand(opts *rootOptions) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List trades in ledger order",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			var rows [][]string
			for _, t := range a.ledger.Investments() {
				if account != "" && t.Account != account {
					continue
				}
				rows = append(rows, []string{
					id.Short(t.ID), t.Date, t.Account, string(t.Kind), t.Ticker,
					t.Shares.String(), money(t.Price), money(t.Cost()),
				})
			}
			renderTable(a.out, "No trades.", []string{"ID", "Date", "Account", "Type", "Ticker", "Shares", "Price", "Total"}, rows)
			return nil
		}),
	}
	cmd.Flags().StringVar(&account, "account", "", "only trades in this account")
	return cmd
}

func newInvestImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv...>",
		Short: "Import Account,TransactionDate,TransactionType,Ticker,Shares,Price,TotalCost files",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			p := importer.DefaultRegistry().Get(importer.FormatInvestments)
			for _, path := range args {
				if err := importFile(a, p, path); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newInvestExportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export trades as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			trades := a.ledger.Investments()
			return writeOutput(a, args, func(w io.Writer) error {
				return importer.WriteInvestments(w, trades)
			})
		}),
	}
}

func newInvestClearCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every trade",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			n := len(a.ledger.Investments())
			if err := a.ledger.ClearInvestments(); err != nil {
				return err
			}
			a.record("invest.clear", fmt.Sprintf("%d trades", n), "")
			a.printf("Cleared %d trades\n", n)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func tradeSummary(t model.InvestmentTransaction) string {
	return fmt.Sprintf("%s %s %s %s@%s", t.Account, t.Kind, t.Ticker, t.Shares, t.Price)
}
