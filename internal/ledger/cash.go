package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Transactions returns a copy of the cash ledger in insertion order.
func (s *Service) Transactions() []model.CashTransaction {
	return append([]model.CashTransaction(nil), s.txns...)
}

// Transaction returns the transaction matching ref.
func (s *Service) Transaction(ref string) (model.CashTransaction, error) {
	i, err := resolve(s.txns, ref, txnID)
	if err != nil {
		return model.CashTransaction{}, err
	}
	return s.txns[i], nil
}

// StartingBalance returns the opening balance of the checkbook.
func (s *Service) StartingBalance() decimal.Decimal {
	return s.start
}

// SetStartingBalance replaces the opening balance.
func (s *Service) SetStartingBalance(d decimal.Decimal) error {
	if err := s.save(store.KeyStartingBalance, d); err != nil {
		return err
	}
	s.start = d
	return nil
}

// AddTransaction stores a new transaction and returns its ID. A blank
// category becomes model.Uncategorized; an unknown one is registered.
func (s *Service) AddTransaction(d model.TransactionDraft) (string, error) {
	if err := validateDraft(d); err != nil {
		return "", err
	}
	txn := d.Normalize(id.New())
	cats := categories.NewRegistry(s.cats.All())
	added := categorize(cats, &txn)

	if err := s.saveCash(append(s.Transactions(), txn), cats, added); err != nil {
		return "", err
	}
	return txn.ID, nil
}

// EditTransaction replaces the fields of the transaction matching ref.
// Archived transactions are refused with ErrArchived.
func (s *Service) EditTransaction(ref string, d model.TransactionDraft) error {
	i, err := resolve(s.txns, ref, txnID)
	if err != nil {
		return err
	}
	if s.txns[i].Archived {
		return ErrArchived
	}
	if err := validateDraft(d); err != nil {
		return err
	}

	txn := d.Normalize(s.txns[i].ID)
	cats := categories.NewRegistry(s.cats.All())
	added := categorize(cats, &txn)

	next := s.Transactions()
	next[i] = txn
	if err := s.saveCash(next, cats, added); err != nil {
		return err
	}
	return nil
}

// DeleteTransaction removes the transaction matching ref. Archived
// transactions are refused with ErrArchived.
func (s *Service) DeleteTransaction(ref string) error {
	i, err := resolve(s.txns, ref, txnID)
	if err != nil {
		return err
	}
	if s.txns[i].Archived {
		return ErrArchived
	}

	next := append(append([]model.CashTransaction{}, s.txns[:i]...), s.txns[i+1:]...)
	if err := s.save(store.KeyTransactions, next); err != nil {
		return err
	}
	s.txns = next
	return nil
}

// ArchiveTransaction marks the transaction matching ref as archived.
func (s *Service) ArchiveTransaction(ref string) error {
	return s.setArchived(ref, true)
}

// UnarchiveTransaction clears the archived flag.
func (s *Service) UnarchiveTransaction(ref string) error {
	return s.setArchived(ref, false)
}

func (s *Service) setArchived(ref string, archived bool) error {
	i, err := resolve(s.txns, ref, txnID)
	if err != nil {
		return err
	}
	if s.txns[i].Archived == archived {
		return nil
	}
	next := s.Transactions()
	next[i].Archived = archived
	if err := s.save(store.KeyTransactions, next); err != nil {
		return err
	}
	s.txns = next
	return nil
}

// ClearTransactions empties the cash ledger and resets the starting balance.
func (s *Service) ClearTransactions() error {
	if err := s.save(store.KeyTransactions, []model.CashTransaction{}); err != nil {
		return err
	}
	s.txns = nil
	return s.SetStartingBalance(decimal.Zero)
}

// ImportTransactions appends drafts in order and returns how many were
// added. opening seeds the starting balance only when the ledger was empty.
func (s *Service) ImportTransactions(drafts []model.TransactionDraft, opening decimal.NullDecimal) (int, error) {
	wasEmpty := len(s.txns) == 0

	next := s.Transactions()
	cats := categories.NewRegistry(s.cats.All())
	catsChanged := false
	for _, d := range drafts {
		if err := validateDraft(d); err != nil {
			s.logger.Warn("import refused draft", "description", d.Description, "err", err)
			continue
		}
		txn := d.Normalize(id.New())
		if categorize(cats, &txn) {
			catsChanged = true
		}
		next = append(next, txn)
	}
	added := len(next) - len(s.txns)
	if added > 0 {
		if err := s.saveCash(next, cats, catsChanged); err != nil {
			return 0, err
		}
	}

	if wasEmpty && opening.Valid {
		if err := s.SetStartingBalance(opening.Decimal); err != nil {
			return added, err
		}
	}
	s.logger.Debug("imported transactions", "added", added, "seeded", wasEmpty && opening.Valid)
	return added, nil
}

// categorize fills a blank category and registers an unknown one in cats.
// It reports whether cats changed.
func categorize(cats *categories.Registry, txn *model.CashTransaction) bool {
	txn.Category = strings.TrimSpace(txn.Category)
	if txn.Category == "" {
		txn.Category = model.Uncategorized
	}
	return cats.Add(txn.Category)
}

// saveCash persists txns and then, when catsChanged, the registry. Each is
// assigned only once its own write succeeds, so a failed transaction write
// leaves no new category behind.
func (s *Service) saveCash(txns []model.CashTransaction, cats *categories.Registry, catsChanged bool) error {
	if err := s.save(store.KeyTransactions, txns); err != nil {
		return err
	}
	s.txns = txns
	if !catsChanged {
		return nil
	}
	if err := s.save(store.KeyCategories, cats.All()); err != nil {
		return err
	}
	s.cats = cats
	return nil
}

func txnID(t model.CashTransaction) string { return t.ID }
