package portfolio

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func trade(account, ticker string, kind model.TradeKind, shares, price string) model.InvestmentTransaction {
	return model.InvestmentTransaction{
		Account: account,
		Ticker:  ticker,
		Kind:    kind,
		Shares:  dec(shares),
		Price:   dec(price),
	}
}

func TestComputePositions_BuyThenSell(t *testing.T) {
	txns := []model.InvestmentTransaction{
		trade("A", "X", model.TradeBuy, "10", "100"),
		trade("A", "X", model.TradeSell, "4", "120"),
	}

	positions := ComputePositions(txns)
	require.Len(t, positions, 1)
	pos := positions[0]
	assert.Equal(t, "A", pos.Account)
	assert.Equal(t, "X", pos.Ticker)
	assert.True(t, pos.Shares.Equal(dec("6")), "shares: %s", pos.Shares)
	assert.True(t, pos.CostBasis.Equal(dec("520")), "cost basis: %s", pos.CostBasis)

	v := Valuation{Prices: model.PriceMap{"X": dec("150")}}
	row := v.Value(pos)
	assert.Equal(t, "86.67", row.AvgCost.StringFixed(2))

	tot := AccountTotals(positions, v.Prices)
	assert.True(t, tot.MarketValue.Equal(dec("900")))
	assert.True(t, tot.UnrealizedPL.Equal(dec("380")))
}

func TestComputePositions_HidesClosedAndShort(t *testing.T) {
	txns := []model.InvestmentTransaction{
		trade("A", "CLOSED", model.TradeBuy, "5", "10"),
		trade("A", "CLOSED", model.TradeSell, "5", "12"),
		trade("A", "SHORT", model.TradeSell, "3", "10"),
		trade("A", "OPEN", model.TradeBuy, "1", "10"),
	}

	positions := ComputePositions(txns)
	require.Len(t, positions, 1)
	assert.Equal(t, "OPEN", positions[0].Ticker)
}

func TestComputePositions_NegativeIntermediateNotClamped(t *testing.T) {
	// The sell exceeds holdings before the later buy restores them.
	txns := []model.InvestmentTransaction{
		trade("A", "X", model.TradeBuy, "2", "10"),
		trade("A", "X", model.TradeSell, "5", "10"),
		trade("A", "X", model.TradeBuy, "4", "10"),
	}

	positions := ComputePositions(txns)
	require.Len(t, positions, 1)
	assert.True(t, positions[0].Shares.Equal(dec("1")))
	assert.True(t, positions[0].CostBasis.Equal(dec("10")))
}

func TestComputePositions_LedgerOrderNotDateOrder(t *testing.T) {
	txns := []model.InvestmentTransaction{
		trade("A", "Y", model.TradeBuy, "1", "1"),
		trade("B", "X", model.TradeBuy, "1", "1"),
		trade("A", "X", model.TradeBuy, "1", "1"),
	}
	txns[0].Date = "2025-03-01"
	txns[1].Date = "2024-01-01"

	positions := ComputePositions(txns)
	require.Len(t, positions, 3)
	assert.Equal(t, "Y", positions[0].Ticker)
	assert.Equal(t, "B", positions[1].Account)
	assert.Equal(t, "A", positions[2].Account)
}

func TestComputePositions_FoldProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		var txns []model.InvestmentTransaction
		wantShares := decimal.Zero
		wantCost := decimal.Zero
		for i := 0; i < 1+rng.Intn(20); i++ {
			shares := decimal.NewFromInt(int64(1 + rng.Intn(50)))
			price := decimal.New(int64(1+rng.Intn(100000)), -2)
			kind := model.TradeBuy
			if rng.Intn(3) == 0 {
				kind = model.TradeSell
			}
			txns = append(txns, model.InvestmentTransaction{Account: "A", Ticker: "T", Kind: kind, Shares: shares, Price: price})
			if kind == model.TradeBuy {
				wantShares = wantShares.Add(shares)
				wantCost = wantCost.Add(shares.Mul(price))
			} else {
				wantShares = wantShares.Sub(shares)
				wantCost = wantCost.Sub(shares.Mul(price))
			}
		}

		positions := ComputePositions(txns)
		if !wantShares.IsPositive() {
			assert.Empty(t, positions, "run %d", run)
			continue
		}
		require.Len(t, positions, 1, "run %d", run)
		assert.True(t, positions[0].Shares.Equal(wantShares), "run %d shares", run)
		assert.True(t, positions[0].CostBasis.Equal(wantCost), "run %d cost", run)
	}
}

func TestAggregatePortfolio(t *testing.T) {
	txns := []model.InvestmentTransaction{
		trade("Brokerage", "VTI", model.TradeBuy, "10", "200"),
		trade("IRA", "BND", model.TradeBuy, "5", "70"),
		trade("IRA", "VTI", model.TradeBuy, "3", "210"),
	}

	positions := ComputePositions(txns)
	agg := AggregatePortfolio(positions)
	require.Len(t, agg, 2)

	assert.Equal(t, "VTI", agg[0].Ticker)
	assert.True(t, agg[0].Shares.Equal(dec("13")))
	assert.True(t, agg[0].CostBasis.Equal(dec("2630")))
	assert.Equal(t, "BND", agg[1].Ticker)

	// Portfolio shares equal the sum of per-account shares.
	sum := decimal.Zero
	for _, p := range positions {
		if p.Ticker == "VTI" {
			sum = sum.Add(p.Shares)
		}
	}
	assert.True(t, agg[0].Shares.Equal(sum))
}

func TestPositionsByAccount(t *testing.T) {
	positions := []model.Position{
		{Account: "IRA", Ticker: "A", Shares: dec("1")},
		{Account: "Brokerage", Ticker: "B", Shares: dec("1")},
		{Account: "IRA", Ticker: "C", Shares: dec("1")},
	}
	groups := PositionsByAccount(positions)
	require.Len(t, groups, 2)
	assert.Equal(t, "IRA", groups[0].Account)
	assert.Len(t, groups[0].Positions, 2)
	assert.Equal(t, "Brokerage", groups[1].Account)
}

func TestAccountTotals_MissingQuoteIsZero(t *testing.T) {
	positions := []model.Position{
		{Ticker: "X", Shares: dec("2"), CostBasis: dec("50")},
		{Ticker: "NOQUOTE", Shares: dec("1"), CostBasis: dec("30")},
	}
	tot := AccountTotals(positions, model.PriceMap{"X": dec("40")})
	assert.True(t, tot.MarketValue.Equal(dec("80")))
	assert.True(t, tot.CostBasis.Equal(dec("80")))
	assert.True(t, tot.UnrealizedPL.IsZero())
}

func TestAccountTotals_Empty(t *testing.T) {
	tot := AccountTotals([]model.Position(nil), nil)
	assert.True(t, tot.MarketValue.IsZero())
	assert.True(t, tot.UnrealizedPL.IsZero())
}
