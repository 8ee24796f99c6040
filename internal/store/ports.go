package store

import (
	"context"
	"errors"

	"gastos/internal/core"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// EntryPatch describes a partial update to a ledger entry. Nil fields are
// left untouched. The common case is toggling Settled on a fixed expense.
type EntryPatch struct {
	Settled     *bool
	Description *string
	Category    *string
	Amount      *core.Money
}

// Ports for the document-store backends. Both collections are independent:
// no operation spans them and there is no cross-record transaction. ListAll
// returns a fully materialized snapshot (no pagination, no ordering
// guarantee across collections); callers filter and aggregate in memory.
type (
	PurchaseStore interface {
		CreatePurchase(ctx context.Context, p core.CreditPurchase) (id string, err error)
		ListPurchases(ctx context.Context) ([]core.CreditPurchase, error)
		DeletePurchase(ctx context.Context, id string) error
	}

	LedgerStore interface {
		CreateEntry(ctx context.Context, e core.LedgerEntry) (id string, err error)
		ListEntries(ctx context.Context) ([]core.LedgerEntry, error)
		UpdateEntry(ctx context.Context, id string, patch EntryPatch) error
		DeleteEntry(ctx context.Context, id string) error
	}
)
