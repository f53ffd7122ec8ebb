package ledger

import (
	"errors"
	"time"

	"github.com/tally-dev/tally/internal/budget"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// BudgetItems returns the recurring items ordered by day of month.
func (s *Service) BudgetItems() []model.BudgetItem {
	return append([]model.BudgetItem(nil), s.budget...)
}

// BudgetItem returns the item matching ref.
func (s *Service) BudgetItem(ref string) (model.BudgetItem, error) {
	i, err := resolve(s.budget, ref, budgetID)
	if err != nil {
		return model.BudgetItem{}, err
	}
	return s.budget[i], nil
}

// AddBudgetItem validates and stores a new item, returning its ID.
func (s *Service) AddBudgetItem(item model.BudgetItem) (string, error) {
	if err := validateBudgetItem(item); err != nil {
		return "", err
	}
	item.ID = id.New()

	next := budget.Insert(s.budget, item)
	if err := s.save(store.KeyBudgetItems, next); err != nil {
		return "", err
	}
	s.budget = next
	return item.ID, nil
}

// UpdateBudgetItem replaces the item whose ID matches item.ID, which may be
// a unique prefix.
func (s *Service) UpdateBudgetItem(item model.BudgetItem) error {
	i, err := resolve(s.budget, item.ID, budgetID)
	if err != nil {
		return err
	}
	item.ID = s.budget[i].ID
	if err := validateBudgetItem(item); err != nil {
		return err
	}

	next, _ := budget.Update(s.budget, item)
	if err := s.save(store.KeyBudgetItems, next); err != nil {
		return err
	}
	s.budget = next
	return nil
}

// RemoveBudgetItem deletes the item matching ref.
func (s *Service) RemoveBudgetItem(ref string) error {
	i, err := resolve(s.budget, ref, budgetID)
	if err != nil {
		return err
	}
	next, _ := budget.Remove(s.budget, s.budget[i].ID)
	if next == nil {
		next = []model.BudgetItem{}
	}
	if err := s.save(store.KeyBudgetItems, next); err != nil {
		return err
	}
	s.budget = next
	return nil
}

// InsertBudget adds one transaction per budget item dated in the given
// month and returns the new transaction IDs.
func (s *Service) InsertBudget(month time.Month, year int) ([]string, error) {
	var ids []string
	for _, d := range budget.Expand(s.budget, month, year) {
		txnID, err := s.AddTransaction(d)
		if err != nil {
			return ids, err
		}
		ids = append(ids, txnID)
	}
	s.logger.Debug("inserted budget", "month", month, "year", year, "count", len(ids))
	return ids, nil
}

func validateBudgetItem(item model.BudgetItem) error {
	err := budget.Validate(item)
	var ie budget.ItemError
	if errors.As(err, &ie) {
		return ValidationError{Field: ie.Field, Description: ie.Description}
	}
	return err
}

func budgetID(b model.BudgetItem) string { return b.ID }
