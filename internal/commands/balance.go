package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/balance"
	"github.com/tally-dev/tally/internal/importer"
)

func newBalanceCommand(opts *rootOptions) *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Starting and current checkbook balance",
	}
	balanceCmd.AddCommand(
		&cobra.Command{
			Use:   "set <amount>",
			Short: "Set the starting balance",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(opts, func(a *app, args []string) error {
				amount, err := importer.ParseMoney(args[0])
				if err != nil {
					return err
				}
				if err := a.ledger.SetStartingBalance(amount); err != nil {
					return err
				}
				a.record("balance.set", money(amount), "")
				a.printf("Starting balance set to %s\n", money(amount))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the starting and current balance",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(a *app, _ []string) error {
				txns := a.ledger.Transactions()
				start := a.ledger.StartingBalance()
				a.printf("Starting balance: %s\n", money(start))
				a.printf("Current balance:  %s\n", signed(balance.TotalBalance(txns, start)))
				a.printf("Transactions:     %d\n", len(txns))
				return nil
			}),
		},
	)
	return balanceCmd
}
