package services

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/store"
	"gastos/internal/store/memory"
)

type publishedRecord struct {
	collection string
	id         string
}

type fakePublisher struct {
	published []publishedRecord
	err       error
}

func (f *fakePublisher) PublishRecordSync(_ context.Context, collection, id string, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedRecord{collection, id})
	return nil
}

func newService(pub RecordPublisher) (*LedgerService, *memory.Store) {
	s := memory.New()
	return NewLedgerService(s, s, pub), s
}

func TestCreatePurchasePublishesSync(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newService(pub)

	id, err := svc.CreatePurchase(context.Background(), core.CreditPurchase{
		PurchaseDate: core.NewDate(2024, 1, 15),
		Description:  "Notebook",
		TotalPesos:   core.Money{Cents: 120000},
		Installments: 3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	if pub.published[0].collection != amqp.CollectionPurchases || pub.published[0].id != id {
		t.Errorf("published %+v, want {%s %s}", pub.published[0], amqp.CollectionPurchases, id)
	}
}

func TestCreateEntrySurvivesPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, mem := newService(pub)

	id, err := svc.CreateEntry(context.Background(), core.LedgerEntry{
		Amount:     core.Money{Cents: 50000},
		Kind:       core.KindFixedExpense,
		Category:   "Luz",
		OccurredAt: core.NewDate(2024, 4, 2),
	})
	if err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}

	entries, _ := mem.ListEntries(context.Background())
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatal("entry must be saved even when publish fails")
	}
}

func TestCreateEntryValidationFailureDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newService(pub)

	_, err := svc.CreateEntry(context.Background(), core.LedgerEntry{
		Amount:     core.Money{Cents: 0},
		Kind:       core.KindFixedExpense,
		Category:   "Luz",
		OccurredAt: core.NewDate(2024, 4, 2),
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if len(pub.published) != 0 {
		t.Error("rejected entry must not be published")
	}
}

func TestSetSettledRepublishes(t *testing.T) {
	pub := &fakePublisher{}
	svc, _ := newService(pub)
	ctx := context.Background()

	id, err := svc.CreateEntry(ctx, core.LedgerEntry{
		Amount:     core.Money{Cents: 30000},
		Kind:       core.KindIncome,
		Category:   "Sueldo",
		OccurredAt: core.NewDate(2024, 4, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.SetSettled(ctx, id, true); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if len(pub.published) != 2 {
		t.Fatalf("published %d messages, want 2 (create + settle)", len(pub.published))
	}

	entries, _ := svc.ListEntries(ctx)
	if !entries[0].Settled {
		t.Error("settled flag not applied")
	}
}

func TestUpdateEntryMissingID(t *testing.T) {
	svc, _ := newService(nil)
	settled := true
	err := svc.UpdateEntry(context.Background(), "missing", store.EntryPatch{Settled: &settled})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNilPublisherIsLocalOnly(t *testing.T) {
	svc, _ := newService(nil)
	_, err := svc.CreatePurchase(context.Background(), core.CreditPurchase{
		PurchaseDate: core.NewDate(2024, 6, 1),
		Description:  "Heladera",
		TotalPesos:   core.Money{Cents: 90000000},
		Installments: 12,
	})
	if err != nil {
		t.Fatalf("create with nil publisher: %v", err)
	}
}
