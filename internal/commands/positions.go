package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/portfolio"
)

type positionsFlags struct {
	sort      string
	desc      bool
	account   string
	byAccount bool
}

func newPositionsCommand(opts *rootOptions) *cobra.Command {
	var f positionsFlags
	cmd := &cobra.Command{
		Use:     "positions",
		Aliases: []string{"portfolio"},
		Short:   "Show open positions valued at stored prices",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			return runPositions(a, f)
		}),
	}
	cmd.Flags().StringVar(&f.sort, "sort", string(portfolio.SortTicker), fmt.Sprintf("sort column %v", portfolio.SortKeys))
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&f.account, "account", "", "only this account")
	cmd.Flags().BoolVar(&f.byAccount, "by-account", false, "one table per account")
	return cmd
}

func runPositions(a *app, f positionsFlags) error {
	key, ok := portfolio.ParseSortKey(f.sort)
	if !ok {
		return fmt.Errorf("unknown sort column %q, want one of %v", f.sort, portfolio.SortKeys)
	}
	by := portfolio.Sort{Key: key, Direction: portfolio.Asc}
	if f.desc {
		by.Direction = portfolio.Desc
	}

	prices := a.ledger.Prices()
	positions := portfolio.ComputePositions(a.ledger.Investments())
	if f.account != "" {
		var kept []model.Position
		for _, p := range positions {
			if p.Account == f.account {
				kept = append(kept, p)
			}
		}
		positions = kept
	}

	if !f.byAccount {
		all := portfolio.AggregatePortfolio(positions)
		v := portfolio.NewValuation(prices, all)
		printPositions(a, portfolio.SortPositions(all, by, v), v)
		return nil
	}

	// Portfolio share stays relative to the whole portfolio.
	v := portfolio.NewValuation(prices, positions)
	for _, group := range portfolio.PositionsByAccount(positions) {
		a.printf("%s\n", headerStyle.Render(group.Account))
		printPositions(a, portfolio.SortPositions(group.Positions, by, v), v)
	}
	return nil
}

func printPositions[H portfolio.Holding](a *app, holdings []H, v portfolio.Valuation) {
	rows := make([][]string, 0, len(holdings)+1)
	for _, h := range holdings {
		r := v.Value(h)
		rows = append(rows, []string{
			r.Ticker,
			r.Shares.String(),
			money(r.AvgCost),
			money(r.CurrentPrice),
			money(r.MarketValue),
			r.PortfolioShare.StringFixed(1) + "%",
			signed(r.UnrealizedPL),
		})
	}
	if len(rows) > 0 {
		t := portfolio.AccountTotals(holdings, v.Prices)
		rows = append(rows, []string{"Total", "", "", "", money(t.MarketValue), "", signed(t.UnrealizedPL)})
	}
	renderTable(a.out, "No open positions.",
		[]string{"Ticker", "Shares", "Avg Cost", "Price", "Market Value", "Portfolio", "Unrealized P/L"}, rows)
}
