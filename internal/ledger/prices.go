package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/portfolio"
	"github.com/tally-dev/tally/internal/store"
)

// Prices returns a copy of the stored price table.
func (s *Service) Prices() model.PriceMap {
	return s.prices.Clone()
}

// SetCustomPrice stores a manual price for ticker, overriding any quote.
func (s *Service) SetCustomPrice(ticker string, price decimal.Decimal) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return ValidationError{Field: "ticker", Description: "required"}
	}
	if !price.IsPositive() {
		return ValidationError{Field: "price", Description: "must be positive, got " + price.String()}
	}

	next := s.prices.Clone()
	next[ticker] = price
	return s.savePrices(next)
}

// DeleteCustomPrice removes the stored price for ticker. ok is false when
// none was stored.
func (s *Service) DeleteCustomPrice(ticker string) (ok bool, err error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if _, found := s.prices[ticker]; !found {
		return false, nil
	}
	next := s.prices.Clone()
	delete(next, ticker)
	return true, s.savePrices(next)
}

// MergePrices writes every entry of fresh over the stored table.
func (s *Service) MergePrices(fresh model.PriceMap) error {
	if len(fresh) == 0 {
		return nil
	}
	next := s.prices.Clone()
	for t, p := range fresh {
		next[t] = p
	}
	return s.savePrices(next)
}

func (s *Service) savePrices(next model.PriceMap) error {
	if err := s.save(store.KeyLivePrices, next); err != nil {
		return err
	}
	s.prices = next
	return nil
}

// Tickers returns the tickers with open positions, in first-trade order.
func (s *Service) Tickers() []string {
	held := portfolio.AggregatePortfolio(portfolio.ComputePositions(s.trades))
	out := make([]string, 0, len(held))
	for _, p := range held {
		out = append(out, p.Ticker)
	}
	return out
}
