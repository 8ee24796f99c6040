package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/backup"
	"gastos/internal/storage"
)

// BackupWorker exports records from SQLite to the backup spreadsheet. It is
// driven by AMQP messages; the pending-record scan is a catch-up path for
// messages lost while the worker was down.
type BackupWorker struct {
	storage   *storage.SQLiteRepository
	writer    backup.Writer
	batchSize int
}

func NewBackupWorker(storage *storage.SQLiteRepository, writer backup.Writer, batchSize int) *BackupWorker {
	return &BackupWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
func (w *BackupWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"collection", msg.Collection,
		"record_id", msg.ID,
		"version", msg.Version)

	return w.exportRecord(ctx, msg.Collection, msg.ID)
}

// ProcessPendingRecords exports records whose sync messages never arrived.
func (w *BackupWorker) ProcessPendingRecords(ctx context.Context) error {
	pending, err := w.storage.GetPendingRecords(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, p := range pending {
		if err := w.exportRecord(ctx, p.Collection, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending record",
				"collection", p.Collection,
				"record_id", p.ID,
				"error", err)
		}
	}
	return nil
}

// StartupSyncCheck exports everything left pending while the worker was
// down. Uses a larger batch than the periodic catch-up.
func (w *BackupWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingRecords(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.exportRecord(ctx, p.Collection, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export record during startup",
				"collection", p.Collection,
				"record_id", p.ID,
				"error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)
	return nil
}

func (w *BackupWorker) exportRecord(ctx context.Context, collection, id string) error {
	var (
		ref string
		err error
	)

	switch collection {
	case amqp.CollectionPurchases:
		p, getErr := w.storage.GetPurchase(ctx, id)
		if getErr != nil {
			w.markError(ctx, collection, id)
			return fmt.Errorf("get purchase %s: %w", id, getErr)
		}
		ref, err = w.writer.AppendPurchase(ctx, p)
	case amqp.CollectionLedger:
		e, getErr := w.storage.GetEntry(ctx, id)
		if getErr != nil {
			w.markError(ctx, collection, id)
			return fmt.Errorf("get ledger entry %s: %w", id, getErr)
		}
		ref, err = w.writer.AppendEntry(ctx, e)
	default:
		return fmt.Errorf("unknown collection: %s", collection)
	}

	if err != nil {
		w.markError(ctx, collection, id)
		return fmt.Errorf("append to backup sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, collection, id); err != nil {
		// The export actually succeeded; worst case the record exports twice.
		slog.ErrorContext(ctx, "Failed to mark record as synced",
			"collection", collection,
			"record_id", id,
			"error", err)
	}

	slog.InfoContext(ctx, "Exported record to backup sheet",
		"collection", collection,
		"record_id", id,
		"sheets_ref", ref)
	return nil
}

func (w *BackupWorker) markError(ctx context.Context, collection, id string) {
	if err := w.storage.MarkSyncError(ctx, collection, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error",
			"collection", collection,
			"record_id", id,
			"error", err)
	}
}
