package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome                Kind = "income"
	KindFixedExpense          Kind = "fixed_expense"
	KindCreditCardInstallment Kind = "credit_card_installment"
)

type (
	// Kind is the closed set of record kinds. Persisted ledger entries are
	// either income or fixed expenses; credit-card installments only appear
	// in computed summaries, never in the ledger collection.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// CreditPurchase is a credit-card purchase whose total is split into
	// Installments equal monthly portions starting at the purchase month.
	CreditPurchase struct {
		ID           string
		PurchaseDate Date
		Description  string
		TotalPesos   Money
		TotalDollars Money // optional secondary currency, zero when absent
		Installments int
	}

	// LedgerEntry is an income or fixed-expense record. Amount is always
	// positive; Kind disambiguates. Settled only means something for fixed
	// expenses and is ignored on income entries.
	LedgerEntry struct {
		ID          string
		Amount      Money
		Kind        Kind
		Category    string
		Description string
		OccurredAt  Date
		RecordedBy  string
		Settled     bool
	}
)

var (
	ErrInvalidInstallmentCount = errors.New("invalid installment count")
	ErrUnparseableDate         = errors.New("unparseable date")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrNegativeAmount          = errors.New("negative amount")
	ErrEmptyDescription        = errors.New("empty description")
	ErrEmptyCategory           = errors.New("empty category")
	ErrInvalidKind             = errors.New("invalid entry kind")
)

// IsValid reports whether k is one of the closed kind values.
func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindFixedExpense, KindCreditCardInstallment:
		return true
	default:
		return false
	}
}

// IsLedgerKind reports whether k may be persisted as a ledger entry.
func (k Kind) IsLedgerKind() bool {
	return k == KindIncome || k == KindFixedExpense
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrUnparseableDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate interprets s as a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrUnparseableDate
	}
	return Date{Time: t}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsZero reports whether the amount is absent.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (p CreditPurchase) Validate() error {
	if err := p.PurchaseDate.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(p.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(p.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := p.TotalPesos.Validate(); err != nil {
		return err
	}
	// Dollars are optional but never negative.
	if p.TotalDollars.Cents < 0 {
		return ErrNegativeAmount
	}
	if p.Installments < 1 {
		return ErrInvalidInstallmentCount
	}
	return nil
}

func (e LedgerEntry) Validate() error {
	if err := e.OccurredAt.Validate(); err != nil {
		return err
	}
	if !e.Kind.IsLedgerKind() {
		return ErrInvalidKind
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
