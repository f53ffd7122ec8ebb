package portfolio

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tally-dev/tally/internal/model"
)

// Holding is anything with a ticker, a share count and a cost basis.
type Holding interface {
	Symbol() string
	Quantity() decimal.Decimal
	Cost() decimal.Decimal
}

// SortKey names a position column.
type SortKey string

const (
	SortTicker         SortKey = "ticker"
	SortShares         SortKey = "shares"
	SortAvgCost        SortKey = "avgCost"
	SortCurrentPrice   SortKey = "currentPrice"
	SortMarketValue    SortKey = "marketValue"
	SortPortfolioShare SortKey = "portfolioShare"
	SortUnrealizedPL   SortKey = "unrealizedPL"
)

// SortKeys lists every supported key.
var SortKeys = []SortKey{
	SortTicker, SortShares, SortAvgCost, SortCurrentPrice,
	SortMarketValue, SortPortfolioShare, SortUnrealizedPL,
}

// ParseSortKey matches a key name case-insensitively.
func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// Direction is ascending or descending.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort selects a column and direction.
type Sort struct {
	Key       SortKey
	Direction Direction
}

// Toggle returns the sort after selecting key: the same key flips the
// direction, a new key starts ascending.
func (s Sort) Toggle(key SortKey) Sort {
	if s.Key == key && s.Direction == Asc {
		return Sort{Key: key, Direction: Desc}
	}
	return Sort{Key: key, Direction: Asc}
}

// Valuation prices holdings against a price map and the total market value
// of the whole portfolio.
type Valuation struct {
	Prices           model.PriceMap
	TotalMarketValue decimal.Decimal
}

// NewValuation computes the portfolio total from all holdings.
func NewValuation[H Holding](prices model.PriceMap, all []H) Valuation {
	return Valuation{
		Prices:           prices,
		TotalMarketValue: AccountTotals(all, prices).MarketValue,
	}
}

// Valued is a holding with its derived columns.
type Valued struct {
	Ticker         string
	Shares         decimal.Decimal
	CostBasis      decimal.Decimal
	AvgCost        decimal.Decimal
	CurrentPrice   decimal.Decimal
	MarketValue    decimal.Decimal
	PortfolioShare decimal.Decimal // percent
	UnrealizedPL   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Value derives every column for h.
func (v Valuation) Value(h Holding) Valued {
	price := v.Prices.Price(h.Symbol())
	mv := h.Quantity().Mul(price)
	out := Valued{
		Ticker:       h.Symbol(),
		Shares:       h.Quantity(),
		CostBasis:    h.Cost(),
		CurrentPrice: price,
		MarketValue:  mv,
		UnrealizedPL: mv.Sub(h.Cost()),
	}
	if !h.Quantity().IsZero() {
		out.AvgCost = h.Cost().Div(h.Quantity())
	}
	if v.TotalMarketValue.IsPositive() {
		out.PortfolioShare = mv.Div(v.TotalMarketValue).Mul(hundred)
	}
	return out
}

func (v Valuation) column(h Holding, key SortKey) decimal.Decimal {
	row := v.Value(h)
	switch key {
	case SortShares:
		return row.Shares
	case SortAvgCost:
		return row.AvgCost
	case SortCurrentPrice:
		return row.CurrentPrice
	case SortMarketValue:
		return row.MarketValue
	case SortPortfolioShare:
		return row.PortfolioShare
	case SortUnrealizedPL:
		return row.UnrealizedPL
	}
	return decimal.Zero
}

// SortPositions returns a stably sorted copy of positions. Equal keys keep
// their input order in both directions. An unknown key returns the input
// order.
func SortPositions[H Holding](positions []H, by Sort, v Valuation) []H {
	out := append([]H(nil), positions...)

	var cmp func(i, j int) int
	switch by.Key {
	case SortTicker:
		col := collate.New(language.English)
		cmp = func(i, j int) int { return col.CompareString(out[i].Symbol(), out[j].Symbol()) }
	case SortShares, SortAvgCost, SortCurrentPrice, SortMarketValue, SortPortfolioShare, SortUnrealizedPL:
		rows := make([]keyed[H], len(out))
		for i, h := range out {
			rows[i] = keyed[H]{h: h, key: v.column(h, by.Key)}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return before(rows[i].key.Cmp(rows[j].key), by.Direction)
		})
		for i := range rows {
			out[i] = rows[i].h
		}
		return out
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return before(cmp(i, j), by.Direction)
	})
	return out
}

type keyed[H Holding] struct {
	h   H
	key decimal.Decimal
}

func before(cmp int, dir Direction) bool {
	if dir == Desc {
		return cmp > 0
	}
	return cmp < 0
}
