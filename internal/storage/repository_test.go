package storage

import (
	"errors"
	"testing"

	"gastos/internal/core"
)

func TestDecodeKind(t *testing.T) {
	tests := []struct {
		in      string
		want    core.Kind
		wantErr bool
	}{
		{"income", core.KindIncome, false},
		{"fixed_expense", core.KindFixedExpense, false},
		// Legacy Spanish tags from the first spreadsheet imports
		{"Ingresos", core.KindIncome, false},
		{"Gastos", core.KindFixedExpense, false},
		{"credit_card_installment", "", true},
		{"Tarjeta", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := decodeKind(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("decodeKind(%q) expected error, got %q", tt.in, got)
			} else if !errors.Is(err, core.ErrInvalidKind) {
				t.Errorf("decodeKind(%q) error = %v, want ErrInvalidKind", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("decodeKind(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("decodeKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeEntry(t *testing.T) {
	t.Run("valid with legacy kind", func(t *testing.T) {
		e, err := decodeEntry("abc", 150000, "Ingresos", "Sueldo", "", "2024-02-01", "Dani", false)
		if err != nil {
			t.Fatalf("decodeEntry: %v", err)
		}
		if e.Kind != core.KindIncome {
			t.Errorf("kind = %q, want income", e.Kind)
		}
		if e.OccurredAt.Year() != 2024 || e.OccurredAt.Month() != 2 {
			t.Errorf("occurred at = %v, want 2024-02", e.OccurredAt)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		if _, err := decodeEntry("abc", 150000, "income", "Sueldo", "", "not-a-date", "", false); err == nil {
			t.Error("expected error for malformed date")
		}
	})

	t.Run("invalid record rejected", func(t *testing.T) {
		if _, err := decodeEntry("abc", 0, "income", "Sueldo", "", "2024-02-01", "", false); err == nil {
			t.Error("expected validation error for zero amount")
		}
	})
}

func TestDecodePurchase(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := decodePurchase("id1", "2024-01-15", "heladera", 12000000, 0, 3)
		if err != nil {
			t.Fatalf("decodePurchase: %v", err)
		}
		if p.Installments != 3 || p.TotalPesos.Cents != 12000000 {
			t.Errorf("unexpected purchase: %+v", p)
		}
	})

	t.Run("zero installments rejected", func(t *testing.T) {
		if _, err := decodePurchase("id1", "2024-01-15", "heladera", 12000000, 0, 0); err == nil {
			t.Error("expected validation error for zero installments")
		}
	})
}
