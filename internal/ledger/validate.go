package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the given ID.
	ErrNotFound = errors.New("record not found")
	// ErrArchived is returned when editing or deleting an archived transaction.
	ErrArchived = errors.New("transaction is archived")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Description)
}

func validateDraft(d model.TransactionDraft) error {
	if d.Date.IsZero() {
		return ValidationError{Field: "date", Description: "required"}
	}
	return nil
}

// normalizeTrade trims and uppercases the identifying fields of t and
// checks the rest.
func normalizeTrade(t model.InvestmentTransaction) (model.InvestmentTransaction, error) {
	t.Account = strings.TrimSpace(t.Account)
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	t.Date = strings.TrimSpace(t.Date)

	switch {
	case t.Account == "":
		return t, ValidationError{Field: "account", Description: "required"}
	case t.Ticker == "":
		return t, ValidationError{Field: "ticker", Description: "required"}
	case !t.Shares.IsPositive():
		return t, ValidationError{Field: "shares", Description: fmt.Sprintf("must be positive, got %s", t.Shares)}
	case !t.Price.IsPositive():
		return t, ValidationError{Field: "price", Description: fmt.Sprintf("must be positive, got %s", t.Price)}
	}
	kind, ok := model.ParseTradeKind(string(t.Kind))
	if !ok {
		return t, ValidationError{Field: "transactionType", Description: fmt.Sprintf("%q is not BUY or SELL", t.Kind)}
	}
	t.Kind = kind
	return t, nil
}
