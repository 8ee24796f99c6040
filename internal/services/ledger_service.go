package services

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/store"
)

// RecordPublisher notifies the backup pipeline that a record changed.
// Satisfied by *amqp.Client; nil disables publishing.
type RecordPublisher interface {
	PublishRecordSync(ctx context.Context, collection, id string, version int64) error
}

// LedgerService orchestrates writes across the record store and the backup
// pipeline. The store is authoritative; a failed publish degrades the write
// to local-only and the worker's catch-up pass repairs it later.
type LedgerService struct {
	purchases store.PurchaseStore
	entries   store.LedgerStore
	publisher RecordPublisher
}

func NewLedgerService(purchases store.PurchaseStore, entries store.LedgerStore, publisher RecordPublisher) *LedgerService {
	return &LedgerService{
		purchases: purchases,
		entries:   entries,
		publisher: publisher,
	}
}

// CreatePurchase saves a credit purchase and publishes a sync message.
func (s *LedgerService) CreatePurchase(ctx context.Context, p core.CreditPurchase) (string, error) {
	id, err := s.purchases.CreatePurchase(ctx, p)
	if err != nil {
		return "", fmt.Errorf("save purchase: %w", err)
	}

	s.publishSync(ctx, amqp.CollectionPurchases, id)
	return id, nil
}

func (s *LedgerService) ListPurchases(ctx context.Context) ([]core.CreditPurchase, error) {
	return s.purchases.ListPurchases(ctx)
}

func (s *LedgerService) DeletePurchase(ctx context.Context, id string) error {
	return s.purchases.DeletePurchase(ctx, id)
}

// CreateEntry saves a ledger entry and publishes a sync message.
func (s *LedgerService) CreateEntry(ctx context.Context, e core.LedgerEntry) (string, error) {
	id, err := s.entries.CreateEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save ledger entry: %w", err)
	}

	s.publishSync(ctx, amqp.CollectionLedger, id)
	return id, nil
}

func (s *LedgerService) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	return s.entries.ListEntries(ctx)
}

// UpdateEntry applies a partial patch and re-publishes the record.
func (s *LedgerService) UpdateEntry(ctx context.Context, id string, patch store.EntryPatch) error {
	if err := s.entries.UpdateEntry(ctx, id, patch); err != nil {
		return err
	}

	s.publishSync(ctx, amqp.CollectionLedger, id)
	return nil
}

// SetSettled toggles the settled flag on an entry.
func (s *LedgerService) SetSettled(ctx context.Context, id string, settled bool) error {
	return s.UpdateEntry(ctx, id, store.EntryPatch{Settled: &settled})
}

func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	return s.entries.DeleteEntry(ctx, id)
}

// publishSync is fire-and-forget: the write already succeeded, so a broker
// failure is logged and swallowed.
func (s *LedgerService) publishSync(ctx context.Context, collection, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, collection, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"collection", collection,
			"record_id", id,
			"error", err)
	}
}
