package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TradeKind classifies investment transactions.
type TradeKind string

const (
	TradeBuy  TradeKind = "BUY"
	TradeSell TradeKind = "SELL"
)

// ParseTradeKind accepts BUY or SELL in any case.
func ParseTradeKind(s string) (TradeKind, bool) {
	switch TradeKind(strings.ToUpper(strings.TrimSpace(s))) {
	case TradeBuy:
		return TradeBuy, true
	case TradeSell:
		return TradeSell, true
	}
	return "", false
}

// InvestmentTransaction is one trade in the investment ledger.
type InvestmentTransaction struct {
	ID        string              `json:"id"`
	Account   string              `json:"account"`
	Ticker    string              `json:"ticker"`
	Shares    decimal.Decimal     `json:"shares"`
	Price     decimal.Decimal     `json:"price"`
	Date      string              `json:"date"` // as entered, not necessarily ISO
	Kind      TradeKind           `json:"transactionType"`
	TotalCost decimal.NullDecimal `json:"totalCost"`
}

// Cost returns the stored total cost, or Shares*Price when none is stored
// or the stored value is zero.
func (t InvestmentTransaction) Cost() decimal.Decimal {
	if t.TotalCost.Valid && !t.TotalCost.Decimal.IsZero() {
		return t.TotalCost.Decimal
	}
	return t.Shares.Mul(t.Price)
}

// Position is the net holding of one ticker in one account.
type Position struct {
	Account   string
	Ticker    string
	Shares    decimal.Decimal
	CostBasis decimal.Decimal
}

// PortfolioPosition is the holding of one ticker across all accounts.
type PortfolioPosition struct {
	Ticker    string
	Shares    decimal.Decimal
	CostBasis decimal.Decimal
}

// Symbol returns the ticker.
func (p Position) Symbol() string { return p.Ticker }

// Quantity returns the net share count.
func (p Position) Quantity() decimal.Decimal { return p.Shares }

// Cost returns the cost basis.
func (p Position) Cost() decimal.Decimal { return p.CostBasis }

func (p PortfolioPosition) Symbol() string             { return p.Ticker }
func (p PortfolioPosition) Quantity() decimal.Decimal { return p.Shares }
func (p PortfolioPosition) Cost() decimal.Decimal     { return p.CostBasis }

// PriceMap maps tickers to their latest known price.
type PriceMap map[string]decimal.Decimal

// Price returns the price for ticker, or zero when no quote is known.
func (m PriceMap) Price(ticker string) decimal.Decimal {
	if p, ok := m[ticker]; ok {
		return p
	}
	return decimal.Zero
}

// Clone returns a shallow copy of m.
func (m PriceMap) Clone() PriceMap {
	out := make(PriceMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
