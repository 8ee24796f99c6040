// Package memory is the in-memory document store used for development and
// tests. Records validate on write and lists return copies, so callers can
// treat every snapshot as immutable.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gastos/internal/core"
	"gastos/internal/store"
)

type Store struct {
	mu        sync.Mutex
	purchases []core.CreditPurchase
	entries   []core.LedgerEntry
}

// Interface conformance
var (
	_ store.PurchaseStore = (*Store)(nil)
	_ store.LedgerStore   = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// CreatePurchase implements store.PurchaseStore.
func (s *Store) CreatePurchase(_ context.Context, p core.CreditPurchase) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	p.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, p)
	return p.ID, nil
}

// ListPurchases implements store.PurchaseStore.
func (s *Store) ListPurchases(_ context.Context) ([]core.CreditPurchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.CreditPurchase, len(s.purchases))
	copy(out, s.purchases)
	return out, nil
}

// DeletePurchase implements store.PurchaseStore.
func (s *Store) DeletePurchase(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.purchases {
		if p.ID == id {
			s.purchases = append(s.purchases[:i], s.purchases[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// CreateEntry implements store.LedgerStore.
func (s *Store) CreateEntry(_ context.Context, e core.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	e.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return e.ID, nil
}

// ListEntries implements store.LedgerStore.
func (s *Store) ListEntries(_ context.Context) ([]core.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LedgerEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// UpdateEntry implements store.LedgerStore. Last write wins; there is no
// conflict detection between concurrent clients.
func (s *Store) UpdateEntry(_ context.Context, id string, patch store.EntryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		updated := s.entries[i]
		if patch.Settled != nil {
			updated.Settled = *patch.Settled
		}
		if patch.Description != nil {
			updated.Description = *patch.Description
		}
		if patch.Category != nil {
			updated.Category = *patch.Category
		}
		if patch.Amount != nil {
			updated.Amount = *patch.Amount
		}
		if err := updated.Validate(); err != nil {
			return err
		}
		s.entries[i] = updated
		return nil
	}
	return store.ErrNotFound
}

// DeleteEntry implements store.LedgerStore.
func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
