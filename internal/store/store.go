// Package store holds the key-value blob store the ledger persists into.
package store

import (
	"regexp"
	"sync"
)

// Keys used by the ledger.
const (
	KeyTransactions    = "transactions"
	KeyCategories      = "categories"
	KeyInvestments     = "investments"
	KeyLivePrices      = "livePrices"
	KeyStartingBalance = "startingBalance"
	KeyBudgetItems     = "budgetItems"
)

// Store is a key-value blob store. Get reports ok=false for absent keys.
type Store interface {
	Get(key string) (data []byte, ok bool, err error)
	Set(key string, data []byte) error
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of data under key.
func (m *Memory) Set(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}
