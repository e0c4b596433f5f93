package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// DateLayout is the calendar-date format of ledger entries and due dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// PeriodStats holds the figures of one calendar month.
type PeriodStats struct {
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Profit   decimal.Decimal `json:"profit"`
	Projects int             `json:"projects"`
}

// PeriodComparison compares the current calendar month with the previous one.
// Change values are percentages.
type PeriodComparison struct {
	Current        PeriodStats `json:"current"`
	Last           PeriodStats `json:"last"`
	IncomeChange   float64     `json:"income_change"`
	ExpenseChange  float64     `json:"expense_change"`
	ProfitChange   float64     `json:"profit_change"`
	ProjectsChange float64     `json:"projects_change"`
}

// ComparePeriods buckets transactions by their date and projects by their
// creation time into the month containing now and the month before it.
// Anything dated on or after the start of the current month counts as
// current. Entries with unparseable dates are ignored.
func ComparePeriods(transactions []domain.Transaction, projects []domain.Project, now time.Time) PeriodComparison {
	loc := now.Location()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	lastStart := currentStart.AddDate(0, -1, 0)

	cur := PeriodStats{Income: decimal.Zero, Expense: decimal.Zero}
	last := PeriodStats{Income: decimal.Zero, Expense: decimal.Zero}

	bucket := func(at time.Time) *PeriodStats {
		switch {
		case !at.Before(currentStart):
			return &cur
		case !at.Before(lastStart):
			return &last
		}
		return nil
	}

	for _, t := range transactions {
		at, err := ParseDate(t.Date, loc)
		if err != nil {
			continue
		}
		b := bucket(at)
		if b == nil {
			continue
		}
		switch t.Type {
		case domain.TypeIncome:
			b.Income = b.Income.Add(t.Amount)
		case domain.TypeExpense:
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	for _, p := range projects {
		if p.CreatedAt.IsZero() {
			continue
		}
		if b := bucket(p.CreatedAt.In(loc)); b != nil {
			b.Projects++
		}
	}

	cur.Profit = cur.Income.Sub(cur.Expense)
	last.Profit = last.Income.Sub(last.Expense)

	return PeriodComparison{
		Current:        cur,
		Last:           last,
		IncomeChange:   Change(cur.Income, last.Income),
		ExpenseChange:  Change(cur.Expense, last.Expense),
		ProfitChange:   Change(cur.Profit, last.Profit),
		ProjectsChange: Change(decimal.NewFromInt(int64(cur.Projects)), decimal.NewFromInt(int64(last.Projects))),
	}
}

// Change returns (current-last)/last*100. A zero baseline yields 100 when
// current is positive and 0 otherwise.
func Change(current, last decimal.Decimal) float64 {
	if last.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	f, _ := current.Sub(last).Div(last).Mul(decimal.NewFromInt(100)).Float64()
	return f
}
