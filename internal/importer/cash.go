package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/balance"
	"github.com/tally-dev/tally/internal/model"
)

// Cash CSV columns, matched case-insensitively.
const (
	colDate        = "date"
	colCategory    = "category"
	colDescription = "description"
	colAmount      = "amount"
	colBalance     = "balance"
)

// CashHeader is the header written by WriteCash.
var CashHeader = []string{"Date", "Category", "Description", "Amount", "Balance"}

const defaultDescription = "Imported"

// CashParser reads Date,Category,Description,Amount,Balance checkbook files.
type CashParser struct{}

func (CashParser) Format() Format { return FormatCash }

// OpeningRowReason marks the first data row, which only seeds the balance.
const OpeningRowReason = "opening balance row"

// Parse keeps every row after the first with a usable date and amount. The
// first data row is the opening-balance row: its Balance already includes its
// own Amount, so it seeds OpeningBalance and is not imported as a transaction.
func (CashParser) Parse(r io.Reader) (*Result, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if !t.has(colDate, colAmount) {
		return nil, fmt.Errorf("cash CSV needs Date and Amount columns")
	}

	res := &Result{Format: FormatCash}
	for i, row := range t.rows {
		if i == 0 {
			if b, err := ParseMoney(t.get(row.fields, colBalance)); err == nil {
				res.OpeningBalance = decimal.NewNullDecimal(b)
			}
			res.Skips = append(res.Skips, Skip{Line: row.num, Reason: OpeningRowReason})
			continue
		}

		draft, err := parseCashRow(t, row.fields)
		if err != nil {
			res.Skips = append(res.Skips, Skip{Line: row.num, Reason: err.Error()})
			continue
		}
		res.Cash = append(res.Cash, Row[model.TransactionDraft]{Line: row.num, Record: draft})
	}
	return res, nil
}

func parseCashRow(t *table, rec []string) (model.TransactionDraft, error) {
	rawDate := t.get(rec, colDate)
	if rawDate == "" {
		return model.TransactionDraft{}, fmt.Errorf("missing date")
	}
	when, err := model.ParseDate(rawDate)
	if err != nil {
		return model.TransactionDraft{}, err
	}

	amount, err := ParseMoney(t.get(rec, colAmount))
	if err != nil {
		return model.TransactionDraft{}, err
	}

	category := t.get(rec, colCategory)
	if category == "" {
		category = model.Uncategorized
	}
	desc := t.get(rec, colDescription)
	if desc == "" {
		desc = defaultDescription
	}

	return model.TransactionDraft{
		Date:        when,
		Category:    category,
		Description: desc,
		Amount:      amount,
	}, nil
}

// WriteCash writes txns in the given order with signed amounts and running
// balances. The first data row carries only the starting balance, which is
// what Parse expects of an opening-balance row.
func WriteCash(w io.Writer, txns []model.CashTransaction, start decimal.Decimal) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CashHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.Write([]string{"", "", "Starting balance", "", start.StringFixed(2)}); err != nil {
		return fmt.Errorf("writing starting balance: %w", err)
	}

	running := balance.RunningBalance(txns, start)
	for i, t := range txns {
		row := []string{
			t.Date.Format(model.DateFormat),
			t.Category,
			t.Description,
			t.Signed().StringFixed(2),
			running[i].StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+3, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
