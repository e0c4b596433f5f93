// Package finance aggregates ledger entries per project, per currency and
// per calendar month.
package finance

import (
	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// Totals holds one sum per supported currency.
type Totals map[domain.Currency]decimal.Decimal

func newTotals() Totals {
	t := make(Totals, len(domain.Currencies))
	for _, c := range domain.Currencies {
		t[c] = decimal.Zero
	}
	return t
}

// TotalsByCurrency sums amounts grouped by currency. Entries without a
// currency land in USD; unsupported currencies are dropped.
func TotalsByCurrency(transactions []domain.Transaction) Totals {
	totals := newTotals()
	for _, t := range transactions {
		c := t.Currency.OrDefault()
		if _, ok := totals[c]; !ok {
			continue
		}
		totals[c] = totals[c].Add(t.Amount)
	}
	return totals
}

// FilterType returns the entries of one type.
func FilterType(transactions []domain.Transaction, typ domain.TransactionType) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

// ForProject returns the entries linked to projectID.
func ForProject(transactions []domain.Transaction, projectID domain.ID) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	if projectID.IsZero() {
		return out
	}
	for _, t := range transactions {
		if !t.ProjectID.IsZero() && t.ProjectID.Equal(projectID) {
			out = append(out, t)
		}
	}
	return out
}

// ProjectFinances is the income/expense position of one project.
// Currency is the project's own currency; linked entries are summed as-is
// even when they were recorded in another currency.
type ProjectFinances struct {
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Profit   decimal.Decimal `json:"profit"`
	Currency domain.Currency `json:"currency"`
}

// OfProject computes the finances of p from the full ledger.
func OfProject(p *domain.Project, transactions []domain.Transaction) ProjectFinances {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range ForProject(transactions, p.ID) {
		switch t.Type {
		case domain.TypeIncome:
			income = income.Add(t.Amount)
		case domain.TypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return ProjectFinances{
		Income:   income,
		Expense:  expense,
		Profit:   income.Sub(expense),
		Currency: p.Currency.OrDefault(),
	}
}

// Summary is the studio-wide position per currency.
type Summary struct {
	Income  Totals `json:"income"`
	Expense Totals `json:"expense"`
	Net     Totals `json:"net"`
}

// Summarize computes global income, expense and net per currency.
func Summarize(transactions []domain.Transaction) Summary {
	income := TotalsByCurrency(FilterType(transactions, domain.TypeIncome))
	expense := TotalsByCurrency(FilterType(transactions, domain.TypeExpense))
	net := newTotals()
	for _, c := range domain.Currencies {
		net[c] = income[c].Sub(expense[c])
	}
	return Summary{Income: income, Expense: expense, Net: net}
}
