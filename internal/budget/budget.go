// Package budget expands recurring monthly line items into dated
// transactions.
package budget

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/model"
)

// ItemError describes why a budget item was rejected.
type ItemError struct {
	Field       string
	Description string
}

func (e ItemError) Error() string {
	return fmt.Sprintf("budget item %s: %s", e.Field, e.Description)
}

// Validate checks the fields a budget item needs before it is scheduled.
func Validate(item model.BudgetItem) error {
	switch {
	case strings.TrimSpace(item.Category) == "":
		return ItemError{Field: "category", Description: "required"}
	case strings.TrimSpace(item.Description) == "":
		return ItemError{Field: "description", Description: "required"}
	case item.Amount.IsZero():
		return ItemError{Field: "amount", Description: "must not be zero"}
	case item.DayOfMonth < 1 || item.DayOfMonth > 31:
		return ItemError{Field: "day", Description: fmt.Sprintf("%d not in 1..31", item.DayOfMonth)}
	}
	return nil
}

// sortByDay orders items by day of month; equal days keep their order.
func sortByDay(items []model.BudgetItem) []model.BudgetItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DayOfMonth < items[j].DayOfMonth
	})
	return items
}

// Insert returns a copy of items with item added, ordered by day.
func Insert(items []model.BudgetItem, item model.BudgetItem) []model.BudgetItem {
	out := append(append([]model.BudgetItem(nil), items...), item)
	return sortByDay(out)
}

// Update returns a copy of items with the item of the same ID replaced,
// ordered by day. ok is false when no item has that ID.
func Update(items []model.BudgetItem, item model.BudgetItem) (out []model.BudgetItem, ok bool) {
	out = append([]model.BudgetItem(nil), items...)
	for i := range out {
		if out[i].ID == item.ID {
			out[i] = item
			ok = true
		}
	}
	return sortByDay(out), ok
}

// Remove returns a copy of items without the item with id.
func Remove(items []model.BudgetItem, id string) (out []model.BudgetItem, ok bool) {
	for _, it := range items {
		if it.ID == id {
			ok = true
			continue
		}
		out = append(out, it)
	}
	return out, ok
}

// Expand produces one draft per item dated year-month-day. Amount signs are
// kept; the ledger derives income or expense. Days past the end of the
// month roll into the next month, the way time.Date normalizes them
// (31 February 2025 becomes 3 March 2025).
func Expand(items []model.BudgetItem, month time.Month, year int) []model.TransactionDraft {
	out := make([]model.TransactionDraft, 0, len(items))
	for _, it := range items {
		out = append(out, model.TransactionDraft{
			Date:        time.Date(year, month, it.DayOfMonth, 0, 0, 0, 0, time.UTC),
			Category:    it.Category,
			Description: it.Description,
			Amount:      it.Amount,
		})
	}
	return out
}

// ParseMonth accepts "1".."12", "01".."12" or a month name prefix of at
// least three letters.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), nil
		}
		return 0, fmt.Errorf("month %q out of range", s)
	}
	if len(s) >= 3 {
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), strings.ToLower(s)) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("unrecognized month %q", s)
}
