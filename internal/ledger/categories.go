package ledger

import (
	"strings"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Categories returns the registered category names in order.
func (s *Service) Categories() []string {
	return s.cats.All()
}

// AddCategory registers name. ok is false for blank or duplicate names.
func (s *Service) AddCategory(name string) (ok bool, err error) {
	name = strings.TrimSpace(name)
	next := categories.NewRegistry(s.cats.All())
	if !next.Add(name) {
		s.logger.Warn("category not added", "name", name)
		return false, nil
	}
	if err := s.save(store.KeyCategories, next.All()); err != nil {
		return false, err
	}
	s.cats = next
	return true, nil
}

// RenameCategory renames from to to and relabels every transaction and
// budget item that used it, archived transactions included.
func (s *Service) RenameCategory(from, to string) (ok bool, err error) {
	to = strings.TrimSpace(to)
	next := categories.NewRegistry(s.cats.All())
	if !next.Rename(from, to) {
		s.logger.Warn("category not renamed", "from", from, "to", to)
		return false, nil
	}
	return true, s.relabel(next, from, to)
}

// DeleteCategory removes name and moves its transactions and budget items
// to model.Uncategorized. ok is false for model.Uncategorized, unknown names
// and the last category.
func (s *Service) DeleteCategory(name string) (ok bool, err error) {
	next := categories.NewRegistry(s.cats.All())
	if !next.Delete(name) {
		s.logger.Warn("category not deleted", "name", name)
		return false, nil
	}
	return true, s.relabel(next, name, model.Uncategorized)
}

// relabel persists the new registry together with the relabelled
// transactions and budget items.
func (s *Service) relabel(reg *categories.Registry, from, to string) error {
	txns := categories.Relabel(s.txns, from, to)
	items := append([]model.BudgetItem(nil), s.budget...)
	for i := range items {
		if items[i].Category == from {
			items[i].Category = to
		}
	}

	if err := s.save(store.KeyCategories, reg.All()); err != nil {
		return err
	}
	if err := s.save(store.KeyTransactions, txns); err != nil {
		return err
	}
	if err := s.save(store.KeyBudgetItems, items); err != nil {
		return err
	}
	s.cats, s.txns, s.budget = reg, txns, items
	return nil
}
