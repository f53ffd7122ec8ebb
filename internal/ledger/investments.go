package ledger

import (
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Investments returns a copy of the trade ledger in insertion order.
func (s *Service) Investments() []model.InvestmentTransaction {
	return append([]model.InvestmentTransaction(nil), s.trades...)
}

// Investment returns the trade matching ref.
func (s *Service) Investment(ref string) (model.InvestmentTransaction, error) {
	i, err := resolve(s.trades, ref, tradeID)
	if err != nil {
		return model.InvestmentTransaction{}, err
	}
	return s.trades[i], nil
}

// Accounts returns the distinct account names in first-trade order.
func (s *Service) Accounts() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range s.trades {
		if !seen[t.Account] {
			seen[t.Account] = true
			out = append(out, t.Account)
		}
	}
	return out
}

// AddInvestment validates and appends a trade, returning its ID.
func (s *Service) AddInvestment(t model.InvestmentTransaction) (string, error) {
	t, err := normalizeTrade(t)
	if err != nil {
		return "", err
	}
	t.ID = id.New()

	next := append(s.Investments(), t)
	if err := s.save(store.KeyInvestments, next); err != nil {
		return "", err
	}
	s.trades = next
	return t.ID, nil
}

// EditInvestment replaces the trade matching ref, keeping its ID.
func (s *Service) EditInvestment(ref string, t model.InvestmentTransaction) error {
	i, err := resolve(s.trades, ref, tradeID)
	if err != nil {
		return err
	}
	t, err = normalizeTrade(t)
	if err != nil {
		return err
	}
	t.ID = s.trades[i].ID

	next := s.Investments()
	next[i] = t
	if err := s.save(store.KeyInvestments, next); err != nil {
		return err
	}
	s.trades = next
	return nil
}

// DeleteInvestment removes the trade matching ref.
func (s *Service) DeleteInvestment(ref string) error {
	i, err := resolve(s.trades, ref, tradeID)
	if err != nil {
		return err
	}
	next := append(append([]model.InvestmentTransaction{}, s.trades[:i]...), s.trades[i+1:]...)
	if err := s.save(store.KeyInvestments, next); err != nil {
		return err
	}
	s.trades = next
	return nil
}

// ImportInvestments appends trades in order, skipping any that fail
// validation, and returns how many were added.
func (s *Service) ImportInvestments(trades []model.InvestmentTransaction) (int, error) {
	next := s.Investments()
	for _, t := range trades {
		t, err := normalizeTrade(t)
		if err != nil {
			s.logger.Warn("import refused trade", "ticker", t.Ticker, "err", err)
			continue
		}
		t.ID = id.New()
		next = append(next, t)
	}
	added := len(next) - len(s.trades)
	if added == 0 {
		return 0, nil
	}
	if err := s.save(store.KeyInvestments, next); err != nil {
		return 0, err
	}
	s.trades = next
	return added, nil
}

// ClearInvestments empties the trade ledger. Stored prices are kept.
func (s *Service) ClearInvestments() error {
	if err := s.save(store.KeyInvestments, []model.InvestmentTransaction{}); err != nil {
		return err
	}
	s.trades = nil
	return nil
}

func tradeID(t model.InvestmentTransaction) string { return t.ID }
