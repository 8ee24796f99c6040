// Package memory is an in-process backup writer used in tests and local
// development, where no spreadsheet is available.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/backup"
	"gastos/internal/core"
)

type Store struct {
	mu        sync.Mutex
	purchases []core.CreditPurchase
	entries   []core.LedgerEntry
}

var _ backup.Writer = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendPurchase(_ context.Context, p core.CreditPurchase) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, p)
	return fmt.Sprintf("mem:purchases:%d", len(s.purchases)), nil
}

func (s *Store) AppendEntry(_ context.Context, e core.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:ledger:%d", len(s.entries)), nil
}

// Purchases returns a snapshot of the appended purchases.
func (s *Store) Purchases() []core.CreditPurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CreditPurchase(nil), s.purchases...)
}

// Entries returns a snapshot of the appended ledger entries.
func (s *Store) Entries() []core.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.LedgerEntry(nil), s.entries...)
}
