package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthSummary is the aggregate view for a specific year+month: the three
// totals shown on the summary cards plus what is left of the income after
// fixed expenses and credit installments.
type MonthSummary struct {
	Year      int
	Month     int // 1-12
	Income    Money
	Fixed     Money
	Credit    Money
	Remaining Money
}

// BuildMonthSummary joins ledger entries and credit purchases at read time
// for one target month. Entries count when they occurred in the target
// month; credit purchases contribute their due installment per the
// amortization engine. Malformed records of either collection are skipped
// and reported individually.
func BuildMonthSummary(entries []LedgerEntry, purchases []CreditPurchase, targetMonth, targetYear int) (MonthSummary, []RecordError) {
	var bad []RecordError

	var income, fixed int64
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			bad = append(bad, RecordError{ID: e.ID, Err: err})
			continue
		}
		if e.OccurredAt.Month() != targetMonth || e.OccurredAt.Year() != targetYear {
			continue
		}
		switch e.Kind {
		case KindIncome:
			income += e.Amount.Cents
		case KindFixedExpense:
			fixed += e.Amount.Cents
		case KindCreditCardInstallment:
			// Never persisted in the ledger collection; Validate rejects it.
		}
	}

	creditTotal, creditBad := TotalDueIn(purchases, targetMonth, targetYear)
	bad = append(bad, creditBad...)
	credit := MoneyFromDecimal(creditTotal)

	return MonthSummary{
		Year:      targetYear,
		Month:     targetMonth,
		Income:    Money{Cents: income},
		Fixed:     Money{Cents: fixed},
		Credit:    credit,
		Remaining: Money{Cents: income - fixed - credit.Cents},
	}, bad
}

// CategoryBreakdown sums fixed expenses by category for the pie chart.
// Income entries and income-looking categories are excluded, matching the
// chart the app has always shown. Results follow first-seen category order.
func CategoryBreakdown(entries []LedgerEntry, targetMonth, targetYear int) ([]CategoryAmount, []RecordError) {
	var bad []RecordError
	sums := make(map[string]int64)
	var order []string

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			bad = append(bad, RecordError{ID: e.ID, Err: err})
			continue
		}
		if e.Kind != KindFixedExpense {
			continue
		}
		if e.OccurredAt.Month() != targetMonth || e.OccurredAt.Year() != targetYear {
			continue
		}
		lower := strings.ToLower(e.Category)
		if strings.Contains(lower, "ingresos") || strings.Contains(lower, "sueldo") {
			continue
		}
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Amount.Cents
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: sums[name]}})
	}
	return out, bad
}

// ProjectMonthlyCredit expands every purchase's schedule and accumulates
// per-month credit totals across all purchases, keyed by "YYYY-MM". Used to
// build a monthly projection without re-querying InstallmentDueIn per month.
func ProjectMonthlyCredit(purchases []CreditPurchase) (map[string]Money, []RecordError) {
	var bad []RecordError
	acc := make(map[string]decimal.Decimal)

	for _, p := range purchases {
		schedule, err := ScheduleInstallments(p)
		if err != nil {
			bad = append(bad, RecordError{ID: p.ID, Err: err})
			continue
		}
		for _, s := range schedule {
			key := monthKey(s.Year, s.Month)
			acc[key] = acc[key].Add(s.Amount)
		}
	}

	out := make(map[string]Money, len(acc))
	for k, d := range acc {
		out[k] = MoneyFromDecimal(d)
	}
	return out, bad
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
