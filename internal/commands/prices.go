package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/quotes"
)

func newPricesCommand(opts *rootOptions) *cobra.Command {
	pricesCmd := &cobra.Command{
		Use:   "prices",
		Short: "Stored ticker prices",
	}
	pricesCmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List stored prices",
			Args:    cobra.NoArgs,
			RunE: withApp(opts, func(a *app, _ []string) error {
				prices := a.ledger.Prices()
				tickers := make([]string, 0, len(prices))
				for t := range prices {
					tickers = append(tickers, t)
				}
				sort.Strings(tickers)

				rows := make([][]string, 0, len(tickers))
				for _, t := range tickers {
					rows = append(rows, []string{t, money(prices[t])})
				}
				renderTable(a.out, "No prices stored.", []string{"Ticker", "Price"}, rows)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <ticker> <price>",
			Short: "Set a custom price",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(opts, func(a *app, args []string) error {
				price, err := importer.ParseMoney(args[1])
				if err != nil {
					return err
				}
				if err := a.ledger.SetCustomPrice(args[0], price); err != nil {
					return err
				}
				a.record("prices.set", args[0]+" "+price.String(), "")
				a.printf("Set %s to %s\n", args[0], money(price))
				return nil
			}),
		},
		&cobra.Command{
			Use:     "rm <ticker>",
			Aliases: []string{"delete"},
			Short:   "Delete a stored price",
			Args:    cobra.ExactArgs(1),
			RunE: withApp(opts, func(a *app, args []string) error {
				ok, err := a.ledger.DeleteCustomPrice(args[0])
				if err != nil {
					return err
				}
				if !ok {
					a.printf("No price stored for %s\n", args[0])
					return nil
				}
				a.record("prices.rm", args[0], "")
				a.printf("Deleted price for %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Fetch live quotes for every held ticker",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(a *app, _ []string) error {
				return runRefresh(context.Background(), a)
			}),
		},
	)
	return pricesCmd
}

func newQuoter(cfg *config.Config) (quotes.Quoter, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	f, err := quotes.NewFinnhub(key, cfg.Quotes.Timeout)
	if err != nil {
		return nil, err
	}
	if cfg.Quotes.BaseURL != "" {
		f.BaseURL = cfg.Quotes.BaseURL
	}
	return f, nil
}

func runRefresh(ctx context.Context, a *app) error {
	tickers := a.ledger.Tickers()
	if len(tickers) == 0 {
		a.printf("No open positions to price.\n")
		return nil
	}
	q, err := newQuoter(a.cfg)
	if err != nil {
		return err
	}

	merged, err := quotes.NewRefresher(q, a.logger).Refresh(ctx, tickers, a.ledger.Prices())
	var batch *quotes.BatchError
	if err != nil && !errors.As(err, &batch) {
		return err
	}
	if err := a.ledger.MergePrices(merged); err != nil {
		return err
	}

	updated := len(tickers)
	if batch != nil {
		updated -= len(batch.Failed)
	}
	a.record("prices.refresh", fmt.Sprintf("%d of %d updated", updated, len(tickers)), "")
	a.printf("Updated %d of %d prices\n", updated, len(tickers))
	if batch != nil {
		return batch
	}
	return nil
}
