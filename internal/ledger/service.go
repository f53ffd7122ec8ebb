// Package ledger owns the canonical cash, investment, price and budget
// collections and persists every change to a store.Store.
package ledger

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Service provides the ledger operations. It is not safe for concurrent use.
type Service struct {
	st     store.Store
	logger *log.Logger

	txns   []model.CashTransaction
	cats   *categories.Registry
	trades []model.InvestmentTransaction
	prices model.PriceMap
	start  decimal.Decimal
	budget []model.BudgetItem
}

// Open loads every collection from st. Absent keys start empty, with the
// category list holding only model.Uncategorized. Records saved without an
// ID are given one and written back.
func Open(st store.Store, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Service{st: st, logger: logger}

	var savedCats []string
	if err := load(st, store.KeyTransactions, &s.txns); err != nil {
		return nil, err
	}
	if err := load(st, store.KeyCategories, &savedCats); err != nil {
		return nil, err
	}
	if err := load(st, store.KeyInvestments, &s.trades); err != nil {
		return nil, err
	}
	if err := load(st, store.KeyLivePrices, &s.prices); err != nil {
		return nil, err
	}
	if err := load(st, store.KeyStartingBalance, &s.start); err != nil {
		return nil, err
	}
	if err := load(st, store.KeyBudgetItems, &s.budget); err != nil {
		return nil, err
	}
	if s.prices == nil {
		s.prices = model.PriceMap{}
	}
	s.cats = categories.Load(savedCats, s.txns)

	if err := s.backfillIDs(); err != nil {
		return nil, err
	}

	logger.Debug("ledger loaded",
		"transactions", len(s.txns),
		"categories", len(s.cats.All()),
		"investments", len(s.trades),
		"prices", len(s.prices),
		"budget", len(s.budget))
	return s, nil
}

// load decodes the JSON blob under key into v, leaving v untouched when the
// key is absent.
func load(st store.Store, key string, v any) error {
	data, ok, err := st.Get(key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// save writes v under key.
func (s *Service) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.st.Set(key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	s.logger.Debug("persisted", "key", key, "bytes", len(data))
	return nil
}

func (s *Service) backfillIDs() error {
	var fixedTxns, fixedTrades, fixedBudget int
	for i := range s.txns {
		if s.txns[i].ID == "" {
			s.txns[i].ID = id.New()
			fixedTxns++
		}
	}
	for i := range s.trades {
		if s.trades[i].ID == "" {
			s.trades[i].ID = id.New()
			fixedTrades++
		}
	}
	for i := range s.budget {
		if s.budget[i].ID == "" {
			s.budget[i].ID = id.New()
			fixedBudget++
		}
	}

	if fixedTxns > 0 {
		s.logger.Info("assigned missing IDs", "key", store.KeyTransactions, "count", fixedTxns)
		if err := s.save(store.KeyTransactions, s.txns); err != nil {
			return err
		}
	}
	if fixedTrades > 0 {
		s.logger.Info("assigned missing IDs", "key", store.KeyInvestments, "count", fixedTrades)
		if err := s.save(store.KeyInvestments, s.trades); err != nil {
			return err
		}
	}
	if fixedBudget > 0 {
		s.logger.Info("assigned missing IDs", "key", store.KeyBudgetItems, "count", fixedBudget)
		if err := s.save(store.KeyBudgetItems, s.budget); err != nil {
			return err
		}
	}
	return nil
}

// resolve finds the index of the record whose ID matches ref exactly or by
// unique prefix.
func resolve[T any](records []T, ref string, idOf func(T) string) (int, error) {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = idOf(r)
	}
	full, err := id.Resolve(ref, ids)
	if err != nil {
		return -1, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	for i, v := range ids {
		if v == full {
			return i, nil
		}
	}
	return -1, ErrNotFound
}
