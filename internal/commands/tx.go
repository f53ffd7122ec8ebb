package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/balance"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/model"
)

func newTxCommand(opts *rootOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Manage checkbook transactions",
	}
	txCmd.AddCommand(
		newTxAddCommand(opts),
		newTxEditCommand(opts),
		newTxRemoveCommand(opts),
		newTxArchiveCommand(opts, true),
		newTxArchiveCommand(opts, false),
		newTxListCommand(opts),
		newTxImportCommand(opts),
		newTxExportCommand(opts),
		newTxClearCommand(opts),
	)
	return txCmd
}

// draftFlags are the editable fields of a cash transaction.
type draftFlags struct {
	date        time.Time
	category    string
	description string
	amount      decimal.Decimal
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	dateFlag(fs, &f.date, "date", "transaction date (default today)")
	fs.StringVarP(&f.category, "category", "c", "", "category")
	fs.StringVarP(&f.description, "desc", "d", "", "description")
	decimalFlag(fs, &f.amount, "amount", "signed amount, negative for expenses")
}

// apply copies the flags the user set onto d.
func (f *draftFlags) apply(cmd *cobra.Command, d *model.TransactionDraft) {
	fs := cmd.Flags()
	if fs.Changed("date") {
		d.Date = f.date
	}
	if fs.Changed("category") {
		d.Category = f.category
	}
	if fs.Changed("desc") {
		d.Description = f.description
	}
	if fs.Changed("amount") {
		d.Amount = f.amount
	}
}

func newTxAddCommand(opts *rootOptions) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(a *app, _ []string) error {
		d := model.TransactionDraft{Date: today()}
		f.apply(cmd, &d)
		return runTxAdd(a, d)
	})
	f.register(cmd)
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runTxAdd(a *app, d model.TransactionDraft) error {
	txnID, err := a.ledger.AddTransaction(d)
	if err != nil {
		return err
	}
	a.record("tx.add", fmt.Sprintf("%s %s %s", d.Date.Format(model.DateFormat), d.Description, money(d.Amount)), txnID)
	a.printf("Added transaction %s\n", id.Short(txnID))
	return nil
}

func newTxEditCommand(opts *rootOptions) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(opts, func(a *app, args []string) error {
		cur, err := a.ledger.Transaction(args[0])
		if err != nil {
			return err
		}
		d := model.TransactionDraft{
			Date:        cur.Date,
			Category:    cur.Category,
			Description: cur.Description,
			Amount:      cur.Signed(),
		}
		f.apply(cmd, &d)
		if err := a.ledger.EditTransaction(cur.ID, d); err != nil {
			return err
		}
		a.record("tx.edit", d.Description, cur.ID)
		a.printf("Updated transaction %s\n", id.Short(cur.ID))
		return nil
	})
	f.register(cmd)
	return cmd
}

func newTxRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			cur, err := a.ledger.Transaction(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.DeleteTransaction(cur.ID); err != nil {
				return err
			}
			a.record("tx.rm", cur.Description, cur.ID)
			a.printf("Deleted transaction %s\n", id.Short(cur.ID))
			return nil
		}),
	}
}

func newTxArchiveCommand(opts *rootOptions, archive bool) *cobra.Command {
	use, short, action, verb := "archive <id>", "Archive a transaction", "tx.archive", "Archived"
	if !archive {
		use, short, action, verb = "unarchive <id>", "Restore an archived transaction", "tx.unarchive", "Unarchived"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			cur, err := a.ledger.Transaction(args[0])
			if err != nil {
				return err
			}
			if archive {
				err = a.ledger.ArchiveTransaction(cur.ID)
			} else {
				err = a.ledger.UnarchiveTransaction(cur.ID)
			}
			if err != nil {
				return err
			}
			a.record(action, cur.Description, cur.ID)
			a.printf("%s transaction %s\n", verb, id.Short(cur.ID))
			return nil
		}),
	}
}

// listFlags select and order cash transactions.
type listFlags struct {
	month    string
	year     string
	category string
	sort     string
}

func (f *listFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.month, "month", balance.All, "month filter (Jan..Dec or All)")
	fs.StringVar(&f.year, "year", balance.All, "year filter")
	fs.StringVar(&f.category, "category", balance.All, "category filter")
	fs.StringVar(&f.sort, "sort", string(balance.Asc), "date order: asc or desc")
}

func (f *listFlags) view(txns []model.CashTransaction) []model.CashTransaction {
	sorted := balance.SortTransactions(txns, balance.ParseDirection(f.sort))
	return balance.FilterTransactions(sorted, balance.Filter{Month: f.month, Year: f.year, Category: f.category})
}

func newTxListCommand(opts *rootOptions) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions with running balance",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			return runTxList(a, f.view(a.ledger.Transactions()))
		}),
	}
	f.register(cmd)
	return cmd
}

func runTxList(a *app, txns []model.CashTransaction) error {
	start := a.ledger.StartingBalance()
	running := balance.RunningBalance(txns, start)

	rows := make([][]string, 0, len(txns))
	for i, t := range txns {
		desc := t.Description
		if t.Archived {
			desc = faint.Sprint(desc + " (archived)")
		}
		rows = append(rows, []string{
			id.Short(t.ID),
			t.Date.Format(model.DateFormat),
			t.Category,
			desc,
			signed(t.Signed()),
			money(running[i]),
		})
	}
	renderTable(a.out, "No transactions.", []string{"ID", "Date", "Category", "Description", "Amount", "Balance"}, rows)
	a.printf("Starting balance: %s\n", money(start))
	a.printf("Total balance:    %s\n", signed(balance.TotalBalance(txns, start)))
	return nil
}

func newTxImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv...]",
		Short: "Import checkbook CSV files",
		Long: "Import Date,Category,Description,Amount,Balance files. With no arguments, every CSV\n" +
			"in <data-dir>/import/ is imported, cash or trades by header, and moved to import/processed/.",
		RunE: withApp(opts, func(a *app, args []string) error {
			reg := importer.DefaultRegistry()
			if len(args) > 0 {
				for _, path := range args {
					if err := importFile(a, reg.Get(importer.FormatCash), path); err != nil {
						return err
					}
				}
				return nil
			}
			return importPending(a, reg)
		}),
	}
}

// importPending imports every file waiting in the import directory.
func importPending(a *app, reg *importer.Registry) error {
	files, err := importer.Scan(a.cfg.DataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.printf("No CSV files in %s\n", filepath.Join(a.cfg.DataDir, importer.ImportDir))
		return nil
	}
	for _, f := range files {
		res, err := reg.ParseFile(f.Path)
		if err != nil {
			a.logger.Warn("file not imported", "file", f.Name, "err", err)
			continue
		}
		if err := applyImport(a, f.Name, res); err != nil {
			return err
		}
		if err := importer.MarkProcessed(a.cfg.DataDir, f.Name); err != nil {
			return err
		}
	}
	return nil
}

// importFile parses path with p and applies the result.
func importFile(a *app, p importer.Parser, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return applyImport(a, filepath.Base(path), res)
}

func applyImport(a *app, name string, res *importer.Result) error {
	for _, s := range res.Skips {
		a.logger.Warn("skipped row", "file", name, "line", s.Line, "reason", s.Reason)
	}

	var (
		added int
		err   error
	)
	switch res.Format {
	case importer.FormatCash:
		added, err = a.ledger.ImportTransactions(res.Drafts(), res.OpeningBalance)
	case importer.FormatInvestments:
		added, err = a.ledger.ImportInvestments(res.Investments())
	default:
		err = fmt.Errorf("%s: unknown format %q", name, res.Format)
	}
	if err != nil {
		return err
	}

	a.record(string(res.Format)+".import", fmt.Sprintf("%s: %d added, %d skipped", name, added, len(res.Skips)), "")
	a.printf("Imported %d %s rows from %s (%d skipped)\n", added, res.Format, name, len(res.Skips))
	return nil
}

func newTxExportCommand(opts *rootOptions) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export transactions as CSV with running balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(opts, func(a *app, args []string) error {
			txns := f.view(a.ledger.Transactions())
			return writeOutput(a, args, func(w io.Writer) error {
				return importer.WriteCash(w, txns, a.ledger.StartingBalance())
			})
		}),
	}
	f.register(cmd)
	return cmd
}

// writeOutput runs write against the file named in args, or stdout.
func writeOutput(a *app, args []string, write func(io.Writer) error) error {
	if len(args) == 0 {
		return write(a.out)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[0], err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", args[0], err)
	}
	a.printf("Wrote %s\n", args[0])
	return nil
}

var errNotConfirmed = errors.New("refusing to clear without --yes")

func newTxClearCommand(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction and reset the starting balance",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(a *app, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			n := len(a.ledger.Transactions())
			if err := a.ledger.ClearTransactions(); err != nil {
				return err
			}
			a.record("tx.clear", fmt.Sprintf("%d transactions", n), "")
			a.printf("Cleared %d transactions\n", n)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
