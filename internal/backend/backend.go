package backend

import (
	"gastos/internal/amqp"
	"gastos/internal/store"
)

// Type selects the record store implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles the stores the server works against. AMQP is nil when no
// broker is configured; the memory backend never has one.
type Result struct {
	Purchases store.PurchaseStore
	Entries   store.LedgerStore
	AMQP      *amqp.Client
	Cleanup   CleanupFunc
}
