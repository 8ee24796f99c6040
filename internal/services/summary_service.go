package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	"gastos/internal/store"
)

// SummaryService computes month summaries from the two collections. The
// collections are independent, so the fetches run concurrently and the
// join happens in memory once both snapshots arrive.
type SummaryService struct {
	purchases store.PurchaseStore
	entries   store.LedgerStore
}

func NewSummaryService(purchases store.PurchaseStore, entries store.LedgerStore) *SummaryService {
	return &SummaryService{purchases: purchases, entries: entries}
}

func (s *SummaryService) fetchBoth(ctx context.Context) ([]core.LedgerEntry, []core.CreditPurchase, error) {
	var (
		entries   []core.LedgerEntry
		purchases []core.CreditPurchase
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.entries.ListEntries(ctx)
		if err != nil {
			return fmt.Errorf("list ledger entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		purchases, err = s.purchases.ListPurchases(ctx)
		if err != nil {
			return fmt.Errorf("list purchases: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return entries, purchases, nil
}

// MonthSummary returns totals for one calendar month. Malformed records
// are skipped and logged, never aborting the summary.
func (s *SummaryService) MonthSummary(ctx context.Context, month, year int) (core.MonthSummary, error) {
	entries, purchases, err := s.fetchBoth(ctx)
	if err != nil {
		return core.MonthSummary{}, err
	}

	summary, recErrs := core.BuildMonthSummary(entries, purchases, month, year)
	logRecordErrors(ctx, "month summary", recErrs)
	return summary, nil
}

// CategoryBreakdown returns fixed-expense totals per category for one month.
func (s *SummaryService) CategoryBreakdown(ctx context.Context, month, year int) ([]core.CategoryAmount, error) {
	entries, err := s.entries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	breakdown, recErrs := core.CategoryBreakdown(entries, month, year)
	logRecordErrors(ctx, "category breakdown", recErrs)
	return breakdown, nil
}

// CreditProjection returns the committed installment total per future
// month, keyed by "YYYY-MM".
func (s *SummaryService) CreditProjection(ctx context.Context) (map[string]core.Money, error) {
	purchases, err := s.purchases.ListPurchases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	projection, recErrs := core.ProjectMonthlyCredit(purchases)
	logRecordErrors(ctx, "credit projection", recErrs)
	return projection, nil
}

func logRecordErrors(ctx context.Context, op string, recErrs []core.RecordError) {
	for _, re := range recErrs {
		slog.WarnContext(ctx, "Skipping malformed record",
			"operation", op,
			"record_id", re.ID,
			"error", re.Err)
	}
}
