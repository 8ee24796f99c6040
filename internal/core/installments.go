package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidMonth reports a target month outside 1-12.
var ErrInvalidMonth = errors.New("invalid month")

type (
	// Installment is one monthly portion of a credit purchase that is due
	// in a queried target month. Amounts are centavo-denominated decimals;
	// round them only when formatting.
	Installment struct {
		Amount        decimal.Decimal
		AmountDollars decimal.Decimal
		Remaining     int
	}

	// ScheduledInstallment is one occurrence in a purchase's full
	// amortization schedule.
	ScheduledInstallment struct {
		Year          int
		Month         int // 1-12
		Amount        decimal.Decimal
		AmountDollars decimal.Decimal
	}

	// RecordError ties a validation failure to the record that caused it,
	// so batch aggregations can skip and report rather than abort.
	RecordError struct {
		ID  string
		Err error
	}
)

func (e RecordError) Error() string {
	return fmt.Sprintf("record %s: %v", e.ID, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// InstallmentDueIn reports whether p has an installment falling due in the
// target month, and if so its per-month amounts and how many installments
// remain (counting the due one).
//
// The offset of the target month from the purchase month is
//
//	monthsElapsed = (targetYear-purchaseYear)*12 + (targetMonth-purchaseMonth)
//
// and an installment is due iff 0 <= monthsElapsed < p.Installments, so a
// purchase is always due in its own purchase month. The function is pure
// and safe for concurrent use.
func InstallmentDueIn(p CreditPurchase, targetMonth, targetYear int) (Installment, bool, error) {
	if targetMonth < 1 || targetMonth > 12 {
		return Installment{}, false, ErrInvalidMonth
	}
	if p.Installments < 1 {
		return Installment{}, false, ErrInvalidInstallmentCount
	}
	if err := p.PurchaseDate.Validate(); err != nil {
		return Installment{}, false, err
	}

	elapsed := (targetYear-p.PurchaseDate.Year())*12 + (targetMonth - p.PurchaseDate.Month())
	if elapsed < 0 || elapsed >= p.Installments {
		return Installment{}, false, nil
	}

	n := decimal.NewFromInt(int64(p.Installments))
	return Installment{
		Amount:        p.TotalPesos.Decimal().Div(n),
		AmountDollars: p.TotalDollars.Decimal().Div(n),
		Remaining:     p.Installments - elapsed,
	}, true, nil
}

// TotalDueIn sums the peso installment amounts due in the target month over
// all purchases. Malformed purchases are skipped and reported individually;
// they never abort the aggregation or zero the total. Summation follows the
// input order so repeated runs over the same snapshot are reproducible.
func TotalDueIn(purchases []CreditPurchase, targetMonth, targetYear int) (decimal.Decimal, []RecordError) {
	total := decimal.Zero
	var bad []RecordError
	for _, p := range purchases {
		inst, due, err := InstallmentDueIn(p, targetMonth, targetYear)
		if err != nil {
			bad = append(bad, RecordError{ID: p.ID, Err: err})
			continue
		}
		if !due {
			continue
		}
		total = total.Add(inst.Amount)
	}
	return total, bad
}

// ScheduleInstallments expands p into its full amortization schedule:
// exactly p.Installments consecutive calendar months starting at the
// purchase month, with the year incrementing whenever the month wraps
// past December.
func ScheduleInstallments(p CreditPurchase) ([]ScheduledInstallment, error) {
	if p.Installments < 1 {
		return nil, ErrInvalidInstallmentCount
	}
	if err := p.PurchaseDate.Validate(); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(p.Installments))
	amount := p.TotalPesos.Decimal().Div(n)
	amountDollars := p.TotalDollars.Decimal().Div(n)

	out := make([]ScheduledInstallment, 0, p.Installments)
	month := p.PurchaseDate.Month()
	year := p.PurchaseDate.Year()
	for i := 0; i < p.Installments; i++ {
		out = append(out, ScheduledInstallment{
			Year:          year,
			Month:         month,
			Amount:        amount,
			AmountDollars: amountDollars,
		})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return out, nil
}
