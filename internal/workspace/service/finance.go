package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/finance"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
)

type TransactionInput struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        string          `json:"date"`
	ProjectID   domain.ID       `json:"projectId"`
	Engineer    string          `json:"engineer"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// AddTransaction validates and records a ledger entry. A linked project
// lends its currency when none is given; a dangling project id is allowed.
func (s *Service) AddTransaction(ctx context.Context, in TransactionInput) (domain.Transaction, error) {
	typ := domain.TransactionType(strings.TrimSpace(in.Type))
	if !typ.Valid() {
		return domain.Transaction{}, domain.ErrInvalidType
	}
	if !in.Amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}
	if err := validateDate(in.Date); err != nil {
		return domain.Transaction{}, err
	}
	var cur domain.Currency
	if in.Currency != "" {
		c, err := domain.ParseCurrency(in.Currency)
		if err != nil {
			return domain.Transaction{}, err
		}
		cur = c
	}

	t := domain.Transaction{
		ID:          newID(),
		Type:        typ,
		Amount:      in.Amount,
		Currency:    cur,
		Date:        in.Date,
		ProjectID:   in.ProjectID,
		Engineer:    strings.TrimSpace(in.Engineer),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
	}
	if t.Date == "" {
		t.Date = s.today()
	}

	err := s.store.Update(ctx, stateEvent("transaction.added", t.ProjectID), func(st *domain.State) error {
		if t.Currency == "" {
			t.Currency = domain.USD
			if p := st.FindProject(t.ProjectID); p != nil {
				t.Currency = p.Currency.OrDefault()
			}
		}
		st.Transactions = append(st.Transactions, t)
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction removes a ledger entry.
func (s *Service) DeleteTransaction(ctx context.Context, id domain.ID) error {
	return s.store.Update(ctx, state.Event{Kind: "transaction.deleted"}, func(st *domain.State) error {
		for i := range st.Transactions {
			if st.Transactions[i].ID.Equal(id) {
				st.Transactions = append(st.Transactions[:i], st.Transactions[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	})
}

// SetEngineerContract sets the contracted amount for an engineer on a
// project. A zero amount removes the contract.
func (s *Service) SetEngineerContract(ctx context.Context, pid domain.ID, engineer string, amount decimal.Decimal) (domain.Project, error) {
	engineer = strings.TrimSpace(engineer)
	if engineer == "" {
		return domain.Project{}, domain.ErrNameRequired
	}
	if amount.IsNegative() {
		return domain.Project{}, domain.ErrInvalidAmount
	}
	p, err := s.updateProject(ctx, "contract.set", pid, func(_ *domain.State, p *domain.Project) error {
		if p.EngineerContracts == nil {
			p.EngineerContracts = map[string]decimal.Decimal{}
		}
		for name := range p.EngineerContracts {
			if domain.SameName(name, engineer) {
				delete(p.EngineerContracts, name)
			}
		}
		if amount.IsPositive() {
			p.EngineerContracts[engineer] = amount
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if !committed(err) {
		return p, err
	}
	s.syncLater(pid)
	return p, err
}

// AddEngineerPayment records a payout against an engineer's contract as an
// expense in the project's currency.
func (s *Service) AddEngineerPayment(ctx context.Context, pid domain.ID, engineer string, amount decimal.Decimal, date string) (domain.Transaction, error) {
	engineer = strings.TrimSpace(engineer)
	if engineer == "" {
		return domain.Transaction{}, domain.ErrNameRequired
	}
	p, err := s.store.Project(pid)
	if err != nil {
		return domain.Transaction{}, err
	}
	return s.AddTransaction(ctx, TransactionInput{
		Type:        string(domain.TypeExpense),
		Amount:      amount,
		Currency:    string(p.Currency.OrDefault()),
		Date:        date,
		ProjectID:   pid,
		Engineer:    engineer,
		Description: finance.PayoutDescription,
		Category:    "salary",
	})
}

// ContractBalance reports contract, paid and remaining amounts for one
// engineer on a project.
func (s *Service) ContractBalance(pid domain.ID, engineer string) (finance.ContractBalance, error) {
	var out finance.ContractBalance
	err := domain.ErrProjectNotFound
	s.store.View(func(st *domain.State) {
		if p := st.FindProject(pid); p != nil {
			out = finance.Balance(p, engineer, st.Transactions)
			err = nil
		}
	})
	return out, err
}

// ProjectFinances returns income, expense and profit of one project.
func (s *Service) ProjectFinances(pid domain.ID) (finance.ProjectFinances, error) {
	var out finance.ProjectFinances
	err := domain.ErrProjectNotFound
	s.store.View(func(st *domain.State) {
		if p := st.FindProject(pid); p != nil {
			out = finance.OfProject(p, st.Transactions)
			err = nil
		}
	})
	return out, err
}

// Totals returns global income, expense and net per currency.
func (s *Service) Totals() finance.Summary {
	var out finance.Summary
	s.store.View(func(st *domain.State) {
		out = finance.Summarize(st.Transactions)
	})
	return out
}

// PeriodComparison compares this calendar month with the previous one.
func (s *Service) PeriodComparison() finance.PeriodComparison {
	var out finance.PeriodComparison
	now := s.now()
	s.store.View(func(st *domain.State) {
		out = finance.ComparePeriods(st.Transactions, st.Projects, now)
	})
	return out
}

// ClientStats groups project amounts by client.
func (s *Service) ClientStats() []finance.ClientStat {
	var out []finance.ClientStat
	s.store.View(func(st *domain.State) {
		out = finance.ClientStats(st.Projects)
	})
	return out
}

// MigrateAdvances converts legacy project advances into income entries.
func (s *Service) MigrateAdvances(ctx context.Context) (int, error) {
	var n int
	err := s.store.Update(ctx, state.Event{Kind: "advances.migrated"}, func(st *domain.State) error {
		n = finance.MigrateAdvances(st, s.now())
		return nil
	})
	return n, err
}
