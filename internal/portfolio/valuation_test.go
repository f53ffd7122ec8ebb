package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

func tickers[H Holding](hs []H) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Symbol()
	}
	return out
}

func samplePositions() []model.Position {
	return []model.Position{
		{Account: "A", Ticker: "MSFT", Shares: dec("10"), CostBasis: dec("3000")},
		{Account: "A", Ticker: "AAPL", Shares: dec("20"), CostBasis: dec("3000")},
		{Account: "A", Ticker: "VTI", Shares: dec("5"), CostBasis: dec("1100")},
	}
}

func samplePrices() model.PriceMap {
	return model.PriceMap{"MSFT": dec("400"), "AAPL": dec("150"), "VTI": dec("200")}
}

func TestSortPositions_Keys(t *testing.T) {
	positions := samplePositions()
	v := NewValuation(samplePrices(), positions)

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortTicker, []string{"AAPL", "MSFT", "VTI"}},
		{SortShares, []string{"VTI", "MSFT", "AAPL"}},
		{SortAvgCost, []string{"AAPL", "VTI", "MSFT"}},
		{SortCurrentPrice, []string{"AAPL", "VTI", "MSFT"}},
		{SortMarketValue, []string{"VTI", "AAPL", "MSFT"}},
		{SortPortfolioShare, []string{"VTI", "AAPL", "MSFT"}},
		{SortUnrealizedPL, []string{"VTI", "AAPL", "MSFT"}},
	}
	for _, tt := range tests {
		got := SortPositions(positions, Sort{Key: tt.key, Direction: Asc}, v)
		assert.Equal(t, tt.want, tickers(got), "asc %s", tt.key)
	}

	got := SortPositions(positions, Sort{Key: SortMarketValue, Direction: Desc}, v)
	assert.Equal(t, []string{"MSFT", "AAPL", "VTI"}, tickers(got))

	// The input is not mutated.
	assert.Equal(t, []string{"MSFT", "AAPL", "VTI"}, tickers(positions))
}

func TestSortPositions_StableBothDirections(t *testing.T) {
	positions := []model.Position{
		{Account: "A", Ticker: "ONE", Shares: dec("5"), CostBasis: dec("10")},
		{Account: "B", Ticker: "TWO", Shares: dec("5"), CostBasis: dec("20")},
		{Account: "C", Ticker: "BIG", Shares: dec("9"), CostBasis: dec("30")},
		{Account: "D", Ticker: "THREE", Shares: dec("5"), CostBasis: dec("40")},
	}
	v := NewValuation(model.PriceMap{}, positions)

	asc := SortPositions(positions, Sort{Key: SortShares, Direction: Asc}, v)
	assert.Equal(t, []string{"ONE", "TWO", "THREE", "BIG"}, tickers(asc))

	desc := SortPositions(positions, Sort{Key: SortShares, Direction: Desc}, v)
	assert.Equal(t, []string{"BIG", "ONE", "TWO", "THREE"}, tickers(desc))

	// Without quotes every market value is zero: input order is kept.
	mv := SortPositions(positions, Sort{Key: SortMarketValue, Direction: Desc}, v)
	assert.Equal(t, tickers(positions), tickers(mv))
}

func TestSortPositions_TickerCaseSensitive(t *testing.T) {
	positions := []model.PortfolioPosition{
		{Ticker: "b", Shares: dec("1")},
		{Ticker: "B", Shares: dec("1")},
		{Ticker: "a", Shares: dec("1")},
	}
	got := SortPositions(positions, Sort{Key: SortTicker, Direction: Asc}, Valuation{})
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Ticker)
	assert.NotEqual(t, got[1].Ticker, got[2].Ticker, "b and B are distinct keys")

	desc := SortPositions(positions, Sort{Key: SortTicker, Direction: Desc}, Valuation{})
	assert.Equal(t, "a", desc[2].Ticker)
}

func TestSortPositions_UnknownKey(t *testing.T) {
	positions := samplePositions()
	got := SortPositions(positions, Sort{Key: "nope", Direction: Desc}, Valuation{})
	assert.Equal(t, tickers(positions), tickers(got))
}

func TestPortfolioShare(t *testing.T) {
	positions := samplePositions()
	v := NewValuation(samplePrices(), positions)
	// 4000 + 3000 + 1000
	assert.True(t, v.TotalMarketValue.Equal(dec("8000")))

	row := v.Value(positions[0])
	assert.True(t, row.PortfolioShare.Equal(dec("50")), "got %s", row.PortfolioShare)

	zero := NewValuation(model.PriceMap{}, positions)
	assert.True(t, zero.Value(positions[0]).PortfolioShare.IsZero())
}

func TestSortToggle(t *testing.T) {
	s := Sort{}
	s = s.Toggle(SortShares)
	assert.Equal(t, Sort{Key: SortShares, Direction: Asc}, s)
	s = s.Toggle(SortShares)
	assert.Equal(t, Sort{Key: SortShares, Direction: Desc}, s)
	s = s.Toggle(SortShares)
	assert.Equal(t, Asc, s.Direction)
	s = s.Toggle(SortTicker)
	assert.Equal(t, Sort{Key: SortTicker, Direction: Asc}, s)
}

func TestParseSortKey(t *testing.T) {
	k, ok := ParseSortKey("marketvalue")
	assert.True(t, ok)
	assert.Equal(t, SortMarketValue, k)

	_, ok = ParseSortKey("volume")
	assert.False(t, ok)
}
