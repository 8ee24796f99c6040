package core

import (
	"errors"
	"testing"
)

func TestCreditPurchaseValidate(t *testing.T) {
	valid := CreditPurchase{
		PurchaseDate: NewDate(2024, 5, 10),
		Description:  "Heladera",
		TotalPesos:   Money{Cents: 90000000},
		TotalDollars: Money{Cents: 0},
		Installments: 12,
	}

	tests := []struct {
		name   string
		mutate func(*CreditPurchase)
		want   error
	}{
		{"valid", func(p *CreditPurchase) {}, nil},
		{"zero date", func(p *CreditPurchase) { p.PurchaseDate = Date{} }, ErrUnparseableDate},
		{"empty description", func(p *CreditPurchase) { p.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(p *CreditPurchase) { p.TotalPesos = Money{} }, ErrInvalidAmount},
		{"negative dollars", func(p *CreditPurchase) { p.TotalDollars = Money{Cents: -1} }, ErrNegativeAmount},
		{"zero installments", func(p *CreditPurchase) { p.Installments = 0 }, ErrInvalidInstallmentCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	valid := LedgerEntry{
		Amount:     Money{Cents: 150000},
		Kind:       KindFixedExpense,
		Category:   "Alquiler",
		OccurredAt: NewDate(2024, 4, 1),
		RecordedBy: "Dani",
	}

	tests := []struct {
		name   string
		mutate func(*LedgerEntry)
		want   error
	}{
		{"valid fixed expense", func(e *LedgerEntry) {}, nil},
		{"valid income", func(e *LedgerEntry) { e.Kind = KindIncome }, nil},
		{"unknown kind", func(e *LedgerEntry) { e.Kind = "Tarjeta de Credito" }, ErrInvalidKind},
		{"installment kind not persistable", func(e *LedgerEntry) { e.Kind = KindCreditCardInstallment }, ErrInvalidKind},
		{"zero amount", func(e *LedgerEntry) { e.Amount = Money{} }, ErrInvalidAmount},
		{"empty category", func(e *LedgerEntry) { e.Category = "" }, ErrEmptyCategory},
		{"zero date", func(e *LedgerEntry) { e.OccurredAt = Date{} }, ErrUnparseableDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-11-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 11 || d.Day() != 1 {
		t.Errorf("parsed %d-%02d-%02d, want 2024-11-01", d.Year(), d.Month(), d.Day())
	}

	for _, bad := range []string{"", "01/11/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrUnparseableDate) {
			t.Errorf("%q: err = %v, want ErrUnparseableDate", bad, err)
		}
	}
}
