package backup

import (
	"context"

	"gastos/internal/core"
)

// Ports for the backup spreadsheet adapters.
type (
	// PurchaseWriter appends one credit purchase row to the backup sheet.
	PurchaseWriter interface {
		AppendPurchase(ctx context.Context, p core.CreditPurchase) (rowRef string, err error)
	}

	// EntryWriter appends one ledger entry row to the backup sheet.
	EntryWriter interface {
		AppendEntry(ctx context.Context, e core.LedgerEntry) (rowRef string, err error)
	}

	// Writer is the full append-only backup surface the worker needs.
	Writer interface {
		PurchaseWriter
		EntryWriter
	}
)
