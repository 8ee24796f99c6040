package services

import (
	"context"
	"testing"

	"gastos/internal/core"
	"gastos/internal/store/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()

	for _, e := range []core.LedgerEntry{
		{Amount: core.Money{Cents: 100000000}, Kind: core.KindIncome, Category: "Sueldo", OccurredAt: core.NewDate(2024, 2, 1)},
		{Amount: core.Money{Cents: 20000000}, Kind: core.KindFixedExpense, Category: "Alquiler", OccurredAt: core.NewDate(2024, 2, 5)},
		{Amount: core.Money{Cents: 5000000}, Kind: core.KindFixedExpense, Category: "Luz", OccurredAt: core.NewDate(2024, 2, 10)},
		// Different month, must not count
		{Amount: core.Money{Cents: 7000000}, Kind: core.KindFixedExpense, Category: "Gas", OccurredAt: core.NewDate(2024, 3, 10)},
	} {
		if _, err := s.CreateEntry(ctx, e); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	// 120000.00 in 3 installments starting January: 40000.00 due in February
	if _, err := s.CreatePurchase(ctx, core.CreditPurchase{
		PurchaseDate: core.NewDate(2024, 1, 15),
		Description:  "Notebook",
		TotalPesos:   core.Money{Cents: 12000000},
		Installments: 3,
	}); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	return s
}

func TestMonthSummary(t *testing.T) {
	s := seedStore(t)
	svc := NewSummaryService(s, s)

	summary, err := svc.MonthSummary(context.Background(), 2, 2024)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.Income.Cents != 100000000 {
		t.Errorf("income = %d, want 100000000", summary.Income.Cents)
	}
	if summary.Fixed.Cents != 25000000 {
		t.Errorf("fixed = %d, want 25000000", summary.Fixed.Cents)
	}
	if summary.Credit.Cents != 4000000 {
		t.Errorf("credit = %d, want 4000000", summary.Credit.Cents)
	}
	want := int64(100000000 - 25000000 - 4000000)
	if summary.Remaining.Cents != want {
		t.Errorf("remaining = %d, want %d", summary.Remaining.Cents, want)
	}
}

func TestCategoryBreakdownService(t *testing.T) {
	s := seedStore(t)
	svc := NewSummaryService(s, s)

	breakdown, err := svc.CategoryBreakdown(context.Background(), 2, 2024)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}

	if len(breakdown) != 2 {
		t.Fatalf("got %d categories, want 2", len(breakdown))
	}
	if breakdown[0].Name != "Alquiler" || breakdown[0].Amount.Cents != 20000000 {
		t.Errorf("first category = %+v", breakdown[0])
	}
	if breakdown[1].Name != "Luz" || breakdown[1].Amount.Cents != 5000000 {
		t.Errorf("second category = %+v", breakdown[1])
	}
}

func TestCreditProjection(t *testing.T) {
	s := seedStore(t)
	svc := NewSummaryService(s, s)

	projection, err := svc.CreditProjection(context.Background())
	if err != nil {
		t.Fatalf("projection: %v", err)
	}

	for _, month := range []string{"2024-01", "2024-02", "2024-03"} {
		got, ok := projection[month]
		if !ok {
			t.Fatalf("missing month %s", month)
		}
		if got.Cents != 4000000 {
			t.Errorf("%s = %d, want 4000000", month, got.Cents)
		}
	}
	if _, ok := projection["2024-04"]; ok {
		t.Error("projection must stop after the last installment")
	}
}
