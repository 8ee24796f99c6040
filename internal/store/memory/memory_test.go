package memory

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/core"
	"gastos/internal/store"
)

func TestPurchaseLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreatePurchase(ctx, core.CreditPurchase{
		PurchaseDate: core.NewDate(2024, 1, 15),
		Description:  "Notebook",
		TotalPesos:   core.Money{Cents: 120000},
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("create must assign an id")
	}

	list, err := s.ListPurchases(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (len=%d)", err, len(list))
	}
	if list[0].ID != id {
		t.Errorf("listed id = %s, want %s", list[0].ID, id)
	}

	// Snapshot is a copy; mutating it must not affect the store.
	list[0].Description = "mutated"
	again, _ := s.ListPurchases(ctx)
	if again[0].Description != "Notebook" {
		t.Error("ListPurchases must return an immutable snapshot")
	}

	if err := s.DeletePurchase(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeletePurchase(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestCreatePurchaseValidates(t *testing.T) {
	s := New()
	_, err := s.CreatePurchase(context.Background(), core.CreditPurchase{
		PurchaseDate: core.NewDate(2024, 1, 15),
		Description:  "x",
		TotalPesos:   core.Money{Cents: 1000},
		Installments: 0,
	})
	if !errors.Is(err, core.ErrInvalidInstallmentCount) {
		t.Fatalf("err = %v, want ErrInvalidInstallmentCount", err)
	}
}

func TestEntryPatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateEntry(ctx, core.LedgerEntry{
		Amount:     core.Money{Cents: 50000},
		Kind:       core.KindFixedExpense,
		Category:   "Luz",
		OccurredAt: core.NewDate(2024, 4, 2),
		RecordedBy: "Delfi",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	settled := true
	if err := s.UpdateEntry(ctx, id, store.EntryPatch{Settled: &settled}); err != nil {
		t.Fatalf("update: %v", err)
	}

	entries, _ := s.ListEntries(ctx)
	if !entries[0].Settled {
		t.Error("settled flag not applied")
	}
	if entries[0].Category != "Luz" {
		t.Error("patch must leave untouched fields alone")
	}

	bad := core.Money{Cents: 0}
	if err := s.UpdateEntry(ctx, id, store.EntryPatch{Amount: &bad}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("invalid patch err = %v, want ErrInvalidAmount", err)
	}

	if err := s.UpdateEntry(ctx, "missing", store.EntryPatch{Settled: &settled}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}
