package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseOptionalCents(t *testing.T) {
	if got, err := ParseOptionalCents("  "); err != nil || got != 0 {
		t.Fatalf("blank optional amount: got %d err=%v, want 0", got, err)
	}
	if got, err := ParseOptionalCents("12.50"); err != nil || got != 1250 {
		t.Fatalf("optional amount: got %d err=%v, want 1250", got, err)
	}
	if _, err := ParseOptionalCents("-3"); err == nil {
		t.Fatal("negative optional amount expected error")
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	// 100.00 pesos over 3 installments rounds back to the cent.
	p := purchase(NewDate(2024, 1, 1), 10000, 3)
	inst, due, err := InstallmentDueIn(p, 1, 2024)
	if err != nil || !due {
		t.Fatalf("due=%v err=%v", due, err)
	}
	if got := MoneyFromDecimal(inst.Amount).Cents; got != 3333 {
		t.Errorf("rounded installment = %d centavos, want 3333", got)
	}
}
