// Package balance sorts, filters and sums cash transactions.
package balance

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Direction orders transactions by date.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection defaults to ascending for anything but "desc".
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// All is the filter value meaning "no filter".
const All = "All"

// Months are the month labels accepted by Filter.Month.
var Months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Filter narrows the displayed transactions. Empty fields match everything.
type Filter struct {
	Month    string // "01".."12" or "Jan".."Dec"; "", "All" or "All Months" = any
	Year     string // "2025"; "" or "All" = any
	Category string // exact match; "" or "All" = any
}

// SortTransactions returns a copy sorted by date. Equal dates keep ledger order.
func SortTransactions(txns []model.CashTransaction, dir Direction) []model.CashTransaction {
	out := append([]model.CashTransaction(nil), txns...)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Desc {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// FilterTransactions keeps the transactions matching every set field of f.
func FilterTransactions(sorted []model.CashTransaction, f Filter) []model.CashTransaction {
	month := monthNumber(f.Month)
	year := strings.TrimSpace(f.Year)
	if year == All {
		year = ""
	}
	category := f.Category
	if category == All {
		category = ""
	}

	var out []model.CashTransaction
	for _, t := range sorted {
		if month != 0 && int(t.Date.Month()) != month {
			continue
		}
		if year != "" && strconv.Itoa(t.Date.Year()) != year {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

// monthNumber returns 1..12, or 0 for "any month". Unrecognized values
// match nothing.
func monthNumber(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) || strings.EqualFold(s, "All Months") {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return -1
	}
	for i, m := range Months {
		if strings.EqualFold(m, s) {
			return i + 1
		}
	}
	return -1
}

// SignedAmount is +Amount for income and -Amount for expenses.
func SignedAmount(t model.CashTransaction) decimal.Decimal {
	return t.Signed()
}

// RunningBalance returns the balance after each transaction in the given
// order, starting from start. It sums only what it is given, so filtering
// changes the balances shown.
func RunningBalance(txns []model.CashTransaction, start decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(txns))
	bal := start
	for _, t := range txns {
		bal = bal.Add(SignedAmount(t))
		out = append(out, bal)
	}
	return out
}

// TotalBalance is the last running balance, or start when txns is empty.
func TotalBalance(txns []model.CashTransaction, start decimal.Decimal) decimal.Decimal {
	bal := start
	for _, t := range txns {
		bal = bal.Add(SignedAmount(t))
	}
	return bal
}

// Years lists the distinct years of sorted, in order of appearance.
func Years(sorted []model.CashTransaction) []string {
	seen := make(map[int]bool)
	var out []string
	for _, t := range sorted {
		y := t.Date.Year()
		if !seen[y] {
			seen[y] = true
			out = append(out, strconv.Itoa(y))
		}
	}
	return out
}
