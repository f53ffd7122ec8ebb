// Package portfolio derives positions and their valuation from the
// investment ledger.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// ComputePositions folds the ledger, in ledger order, into one position per
// account and ticker. A SELL removes shares*price from the cost basis, not
// the average cost of the shares sold. Only positions with shares > 0 are
// returned, in order of first appearance.
func ComputePositions(txns []model.InvestmentTransaction) []model.Position {
	byKey := make(map[string]*model.Position)
	var order []string

	for _, t := range txns {
		key := t.Account + "|" + t.Ticker
		pos, ok := byKey[key]
		if !ok {
			pos = &model.Position{Account: t.Account, Ticker: t.Ticker}
			byKey[key] = pos
			order = append(order, key)
		}

		cost := t.Shares.Mul(t.Price)
		switch t.Kind {
		case model.TradeBuy:
			pos.Shares = pos.Shares.Add(t.Shares)
			pos.CostBasis = pos.CostBasis.Add(cost)
		case model.TradeSell:
			pos.Shares = pos.Shares.Sub(t.Shares)
			pos.CostBasis = pos.CostBasis.Sub(cost)
		}
	}

	var out []model.Position
	for _, key := range order {
		if pos := byKey[key]; pos.Shares.IsPositive() {
			out = append(out, *pos)
		}
	}
	return out
}

// AggregatePortfolio sums positions across accounts per ticker, in order of
// first appearance.
func AggregatePortfolio(positions []model.Position) []model.PortfolioPosition {
	byTicker := make(map[string]int)
	var out []model.PortfolioPosition

	for _, p := range positions {
		i, ok := byTicker[p.Ticker]
		if !ok {
			i = len(out)
			byTicker[p.Ticker] = i
			out = append(out, model.PortfolioPosition{Ticker: p.Ticker})
		}
		out[i].Shares = out[i].Shares.Add(p.Shares)
		out[i].CostBasis = out[i].CostBasis.Add(p.CostBasis)
	}
	return out
}

// AccountPositions is the set of positions held in one account.
type AccountPositions struct {
	Account   string
	Positions []model.Position
}

// PositionsByAccount groups positions per account, accounts in order of
// first appearance.
func PositionsByAccount(positions []model.Position) []AccountPositions {
	byAccount := make(map[string]int)
	var out []AccountPositions

	for _, p := range positions {
		i, ok := byAccount[p.Account]
		if !ok {
			i = len(out)
			byAccount[p.Account] = i
			out = append(out, AccountPositions{Account: p.Account})
		}
		out[i].Positions = append(out[i].Positions, p)
	}
	return out
}

// Totals is the market value and unrealized P/L of a set of positions.
type Totals struct {
	MarketValue  decimal.Decimal
	CostBasis    decimal.Decimal
	UnrealizedPL decimal.Decimal
}

// AccountTotals values positions at prices; a missing quote counts as zero.
func AccountTotals[H Holding](positions []H, prices model.PriceMap) Totals {
	var tot Totals
	for _, p := range positions {
		tot.MarketValue = tot.MarketValue.Add(p.Quantity().Mul(prices.Price(p.Symbol())))
		tot.CostBasis = tot.CostBasis.Add(p.Cost())
	}
	tot.UnrealizedPL = tot.MarketValue.Sub(tot.CostBasis)
	return tot
}
