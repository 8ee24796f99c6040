package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gastos/internal/core"
	"gastos/internal/store"
)

// SQLiteRepository is the durable document store. Each record lives in its
// own row; there are no cross-record transactions, and concurrent writers
// are last-write-wins, matching the store contract.
type SQLiteRepository struct {
	db *sql.DB
}

// Interface conformance
var (
	_ store.PurchaseStore = (*SQLiteRepository)(nil)
	_ store.LedgerStore   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreatePurchase implements store.PurchaseStore.
func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p core.CreditPurchase) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_purchases
			(id, purchase_date, description, total_pesos_cents, total_dollars_cents, installments)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, p.PurchaseDate.Format("2006-01-02"), p.Description,
		p.TotalPesos.Cents, p.TotalDollars.Cents, p.Installments)
	if err != nil {
		return "", fmt.Errorf("insert purchase: %w", err)
	}

	slog.InfoContext(ctx, "Credit purchase saved",
		"record_id", id,
		"description", p.Description,
		"amount_cents", p.TotalPesos.Cents,
		"installments", p.Installments)
	return id, nil
}

// ListPurchases implements store.PurchaseStore. Rows that fail the decode
// step are skipped and logged; one malformed record never hides the rest.
func (r *SQLiteRepository) ListPurchases(ctx context.Context) ([]core.CreditPurchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, purchase_date, description, total_pesos_cents, total_dollars_cents, installments
		FROM credit_purchases
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var out []core.CreditPurchase
	for rows.Next() {
		var (
			id, dateStr, desc        string
			pesos, dollars           int64
			installments             int
		)
		if err := rows.Scan(&id, &dateStr, &desc, &pesos, &dollars, &installments); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		p, err := decodePurchase(id, dateStr, desc, pesos, dollars, installments)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed purchase row",
				"record_id", id, "error", err)
			continue
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return out, nil
}

// DeletePurchase implements store.PurchaseStore.
func (r *SQLiteRepository) DeletePurchase(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credit_purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return checkAffected(res)
}

// CreateEntry implements store.LedgerStore.
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_entries
			(id, amount_cents, kind, category, description, occurred_at, recorded_by, settled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.Amount.Cents, string(e.Kind), e.Category, e.Description,
		e.OccurredAt.Format("2006-01-02"), e.RecordedBy, boolToInt(e.Settled))
	if err != nil {
		return "", fmt.Errorf("insert ledger entry: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry saved",
		"record_id", id,
		"kind", string(e.Kind),
		"category", e.Category,
		"amount_cents", e.Amount.Cents)
	return id, nil
}

// ListEntries implements store.LedgerStore, with the same skip-and-log
// decode policy as ListPurchases.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, kind, category, description, occurred_at, recorded_by, settled
		FROM ledger_entries
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var out []core.LedgerEntry
	for rows.Next() {
		var (
			id, kind, category, desc, dateStr, recordedBy string
			cents                                         int64
			settled                                       int
		)
		if err := rows.Scan(&id, &cents, &kind, &category, &desc, &dateStr, &recordedBy, &settled); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e, err := decodeEntry(id, cents, kind, category, desc, dateStr, recordedBy, settled != 0)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed ledger row",
				"record_id", id, "error", err)
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return out, nil
}

// UpdateEntry implements store.LedgerStore. The patch is applied through a
// read-modify-write so the validating decode runs on the merged record.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id string, patch store.EntryPatch) error {
	current, err := r.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	if patch.Settled != nil {
		current.Settled = *patch.Settled
	}
	if patch.Description != nil {
		current.Description = *patch.Description
	}
	if patch.Category != nil {
		current.Category = *patch.Category
	}
	if patch.Amount != nil {
		current.Amount = *patch.Amount
	}
	if err := current.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET amount_cents = ?, category = ?, description = ?, settled = ?,
		    version = version + 1, sync_status = 'pending'
		WHERE id = ?`,
		current.Amount.Cents, current.Category, current.Description,
		boolToInt(current.Settled), id)
	if err != nil {
		return fmt.Errorf("update ledger entry: %w", err)
	}
	return checkAffected(res)
}

// DeleteEntry implements store.LedgerStore.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return checkAffected(res)
}

// GetPurchase retrieves a single purchase by id, for the backup worker.
func (r *SQLiteRepository) GetPurchase(ctx context.Context, id string) (core.CreditPurchase, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, purchase_date, description, total_pesos_cents, total_dollars_cents, installments
		FROM credit_purchases WHERE id = ?`, id)
	var (
		rid, dateStr, desc string
		pesos, dollars     int64
		installments       int
	)
	if err := row.Scan(&rid, &dateStr, &desc, &pesos, &dollars, &installments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.CreditPurchase{}, store.ErrNotFound
		}
		return core.CreditPurchase{}, fmt.Errorf("get purchase: %w", err)
	}
	return decodePurchase(rid, dateStr, desc, pesos, dollars, installments)
}

// GetEntry retrieves a single ledger entry by id.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, amount_cents, kind, category, description, occurred_at, recorded_by, settled
		FROM ledger_entries WHERE id = ?`, id)
	var (
		rid, kind, category, desc, dateStr, recordedBy string
		cents                                          int64
		settled                                        int
	)
	if err := row.Scan(&rid, &cents, &kind, &category, &desc, &dateStr, &recordedBy, &settled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LedgerEntry{}, store.ErrNotFound
		}
		return core.LedgerEntry{}, fmt.Errorf("get ledger entry: %w", err)
	}
	return decodeEntry(rid, cents, kind, category, desc, dateStr, recordedBy, settled != 0)
}

// PendingRecord identifies a record awaiting backup export.
type PendingRecord struct {
	Collection string
	ID         string
	Version    int64
	CreatedAt  time.Time
}

// GetPendingRecords returns up to limit records per collection that have
// not been exported yet. Used by the worker as a catch-up path when AMQP
// messages were lost.
func (r *SQLiteRepository) GetPendingRecords(ctx context.Context, limit int) ([]PendingRecord, error) {
	var out []PendingRecord
	for _, q := range []struct {
		collection, query string
	}{
		{"credit_purchases", `SELECT id, version, created_at FROM credit_purchases WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?`},
		{"ledger_entries", `SELECT id, version, created_at FROM ledger_entries WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?`},
	} {
		rows, err := r.db.QueryContext(ctx, q.query, limit)
		if err != nil {
			return nil, fmt.Errorf("query pending %s: %w", q.collection, err)
		}
		for rows.Next() {
			p := PendingRecord{Collection: q.collection}
			if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan pending %s: %w", q.collection, err)
			}
			out = append(out, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate pending %s: %w", q.collection, err)
		}
		rows.Close()
	}
	return out, nil
}

// MarkSynced marks a record as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, collection, id string) error {
	return r.setSyncStatus(ctx, collection, id, "synced")
}

// MarkSyncError marks a record as failed to export.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, collection, id string) error {
	return r.setSyncStatus(ctx, collection, id, "error")
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, collection, id, status string) error {
	var query string
	switch collection {
	case "credit_purchases":
		query = `UPDATE credit_purchases SET sync_status = ? WHERE id = ?`
	case "ledger_entries":
		query = `UPDATE ledger_entries SET sync_status = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown collection: %s", collection)
	}
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("set sync status: %w", err)
	}
	return checkAffected(res)
}

// decodePurchase is the validating decode step at the storage boundary: it
// either produces a fully typed CreditPurchase or an error, never a
// partially typed record.
func decodePurchase(id, dateStr, desc string, pesos, dollars int64, installments int) (core.CreditPurchase, error) {
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.CreditPurchase{}, err
	}
	p := core.CreditPurchase{
		ID:           id,
		PurchaseDate: date,
		Description:  desc,
		TotalPesos:   core.Money{Cents: pesos},
		TotalDollars: core.Money{Cents: dollars},
		Installments: installments,
	}
	if err := p.Validate(); err != nil {
		return core.CreditPurchase{}, err
	}
	return p, nil
}

func decodeEntry(id string, cents int64, kind, category, desc, dateStr, recordedBy string, settled bool) (core.LedgerEntry, error) {
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.LedgerEntry{}, err
	}
	k, err := decodeKind(kind)
	if err != nil {
		return core.LedgerEntry{}, err
	}
	e := core.LedgerEntry{
		ID:          id,
		Amount:      core.Money{Cents: cents},
		Kind:        k,
		Category:    category,
		Description: desc,
		OccurredAt:  date,
		RecordedBy:  recordedBy,
		Settled:     settled,
	}
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, err
	}
	return e, nil
}

// decodeKind maps stored kind tags to the closed enum. The legacy Spanish
// tags from the first data import are still accepted on read; anything else
// is a decode error, never a silent fallthrough.
func decodeKind(s string) (core.Kind, error) {
	switch s {
	case string(core.KindIncome), "Ingresos":
		return core.KindIncome, nil
	case string(core.KindFixedExpense), "Gastos":
		return core.KindFixedExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidKind, s)
	}
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
