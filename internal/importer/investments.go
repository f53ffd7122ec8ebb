package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Investment CSV columns, matched case-insensitively.
const (
	colAccount   = "account"
	colTradeDate = "transactiondate"
	colTradeType = "transactiontype"
	colTicker    = "ticker"
	colShares    = "shares"
	colPrice     = "price"
	colTotalCost = "totalcost"
)

var investmentColumns = []string{colAccount, colTicker, colShares, colPrice}

// InvestmentHeader is the header read and written for trade files.
var InvestmentHeader = []string{"Account", "TransactionDate", "TransactionType", "Ticker", "Shares", "Price", "TotalCost"}

// InvestmentParser reads brokerage trade files.
type InvestmentParser struct{}

func (InvestmentParser) Format() Format { return FormatInvestments }

// Parse keeps BUY and SELL rows with an account, a ticker and positive
// shares and price. A missing or non-numeric TotalCost is stored as zero.
func (InvestmentParser) Parse(r io.Reader) (*Result, error) {
	t, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if !t.has(investmentColumns...) {
		return nil, fmt.Errorf("investment CSV needs Account, Ticker, Shares and Price columns")
	}

	res := &Result{Format: FormatInvestments}
	for _, row := range t.rows {
		trade, err := parseTradeRow(t, row.fields)
		if err != nil {
			res.Skips = append(res.Skips, Skip{Line: row.num, Reason: err.Error()})
			continue
		}
		res.Trades = append(res.Trades, Row[model.InvestmentTransaction]{Line: row.num, Record: trade})
	}
	return res, nil
}

func parseTradeRow(t *table, rec []string) (model.InvestmentTransaction, error) {
	account := t.get(rec, colAccount)
	if account == "" {
		return model.InvestmentTransaction{}, fmt.Errorf("missing account")
	}
	ticker := strings.ToUpper(t.get(rec, colTicker))
	if ticker == "" {
		return model.InvestmentTransaction{}, fmt.Errorf("missing ticker")
	}

	shares, err := ParseMoney(t.get(rec, colShares))
	if err != nil {
		return model.InvestmentTransaction{}, fmt.Errorf("shares: %w", err)
	}
	if !shares.IsPositive() {
		return model.InvestmentTransaction{}, fmt.Errorf("shares must be positive, got %s", shares)
	}
	price, err := ParseMoney(t.get(rec, colPrice))
	if err != nil {
		return model.InvestmentTransaction{}, fmt.Errorf("price: %w", err)
	}
	if !price.IsPositive() {
		return model.InvestmentTransaction{}, fmt.Errorf("price must be positive, got %s", price)
	}

	rawKind := t.get(rec, colTradeType)
	kind, ok := model.ParseTradeKind(rawKind)
	if !ok {
		return model.InvestmentTransaction{}, fmt.Errorf("unsupported transaction type %q", rawKind)
	}

	total := decimal.Zero
	if d, err := ParseMoney(t.get(rec, colTotalCost)); err == nil {
		total = d
	}

	return model.InvestmentTransaction{
		Account:   account,
		Ticker:    ticker,
		Shares:    shares,
		Price:     price,
		Date:      t.get(rec, colTradeDate),
		Kind:      kind,
		TotalCost: decimal.NewNullDecimal(total),
	}, nil
}

// WriteInvestments writes trades in ledger order. TotalCost is the stored
// value when non-zero, otherwise shares times price.
func WriteInvestments(w io.Writer, trades []model.InvestmentTransaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(InvestmentHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tr := range trades {
		row := []string{
			tr.Account,
			tr.Date,
			string(tr.Kind),
			tr.Ticker,
			tr.Shares.String(),
			tr.Price.String(),
			tr.Cost().String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
