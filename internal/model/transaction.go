package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind carries the sign of a cash transaction.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Uncategorized is the category that always exists in the registry.
const Uncategorized = "Uncategorized"

// CashTransaction is one checkbook entry.
type CashTransaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // magnitude, never negative
	Kind        Kind            `json:"kind"`
	Archived    bool            `json:"archived"`
}

// Signed returns Amount with the sign implied by Kind.
func (t CashTransaction) Signed() decimal.Decimal {
	if t.Kind == KindIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}

// TransactionDraft is a cash transaction before the ledger assigns an ID
// and splits the signed Amount into magnitude and Kind.
type TransactionDraft struct {
	Date        time.Time
	Category    string
	Description string
	Amount      decimal.Decimal // negative = expense, positive = income
}

// Normalize turns a draft into a transaction: zero and positive amounts
// are income, negative amounts are expenses.
func (d TransactionDraft) Normalize(id string) CashTransaction {
	kind := KindIncome
	if d.Amount.IsNegative() {
		kind = KindExpense
	}
	return CashTransaction{
		ID:          id,
		Date:        d.Date,
		Category:    d.Category,
		Description: d.Description,
		Amount:      d.Amount.Abs(),
		Kind:        kind,
	}
}

// BudgetItem is a recurring monthly line item.
type BudgetItem struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // signed
	DayOfMonth  int             `json:"day"`
}
