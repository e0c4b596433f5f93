package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// AdvanceDescription marks income entries created from a project's advance.
const AdvanceDescription = "Аванс"

// PayoutDescription marks expense entries paying an engineer's contract.
const PayoutDescription = "Выплата по договору"

// MigrateAdvances turns the legacy Project.Advance field into income
// entries. It only adds an entry when the project has no advance entry yet,
// so repeated runs are no-ops. It returns the number of entries created.
func MigrateAdvances(s *domain.State, now time.Time) int {
	created := 0
	for i := range s.Projects {
		p := &s.Projects[i]
		if !p.Advance.IsPositive() || hasAdvance(s.Transactions, p.ID) {
			continue
		}

		date := now
		if !p.CreatedAt.IsZero() {
			date = p.CreatedAt
		}
		s.Transactions = append(s.Transactions, domain.Transaction{
			ID:          domain.ID(uuid.NewString()),
			ProjectID:   p.ID,
			Type:        domain.TypeIncome,
			Description: AdvanceDescription,
			Amount:      p.Advance,
			Currency:    p.Currency.OrDefault(),
			Date:        date.Format(DateLayout),
		})
		created++
	}
	return created
}

func hasAdvance(transactions []domain.Transaction, projectID domain.ID) bool {
	for _, t := range ForProject(transactions, projectID) {
		if t.Type != domain.TypeIncome {
			continue
		}
		if t.Description == AdvanceDescription || strings.EqualFold(t.Description, "Advance") {
			return true
		}
	}
	return false
}

// EngineerPayouts sums the expense entries paid to engineer, per currency.
func EngineerPayouts(transactions []domain.Transaction, projectID domain.ID, engineer string) Totals {
	paid := make([]domain.Transaction, 0)
	for _, t := range transactions {
		if t.Type != domain.TypeExpense || !domain.SameName(t.Engineer, engineer) {
			continue
		}
		if !projectID.IsZero() && !t.ProjectID.Equal(projectID) {
			continue
		}
		paid = append(paid, t)
	}
	return TotalsByCurrency(paid)
}

// ContractBalance is what the studio still owes an engineer on one project.
type ContractBalance struct {
	Engineer  string          `json:"engineer"`
	Contract  decimal.Decimal `json:"contract"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Currency  domain.Currency `json:"currency"`
}

// Balance computes the contract position of engineer on p in the project's currency.
func Balance(p *domain.Project, engineer string, transactions []domain.Transaction) ContractBalance {
	currency := p.Currency.OrDefault()
	contract := decimal.Zero
	for name, amount := range p.EngineerContracts {
		if domain.SameName(name, engineer) {
			contract = amount
			break
		}
	}
	paid := EngineerPayouts(transactions, p.ID, engineer)[currency]
	return ContractBalance{
		Engineer:  engineer,
		Contract:  contract,
		Paid:      paid,
		Remaining: contract.Sub(paid),
		Currency:  currency,
	}
}

// ClientStat aggregates the projects of one client name.
type ClientStat struct {
	Name              string          `json:"name"`
	ProjectCount      int             `json:"project_count"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	CompletedProjects int             `json:"completed_projects"`
	ActiveProjects    int             `json:"active_projects"`
	Currencies        Totals          `json:"currencies"`
}

// UnknownClient labels projects without a client name.
const UnknownClient = "Неизвестный"

// ClientStats groups projects by client name, largest total first.
func ClientStats(projects []domain.Project) []ClientStat {
	byName := make(map[string]*ClientStat)
	order := make([]string, 0)

	for _, p := range projects {
		name := strings.TrimSpace(p.Client)
		if name == "" {
			name = UnknownClient
		}
		st, ok := byName[name]
		if !ok {
			st = &ClientStat{Name: name, TotalAmount: decimal.Zero, Currencies: Totals{}}
			byName[name] = st
			order = append(order, name)
		}

		st.ProjectCount++
		c := p.Currency.OrDefault()
		st.Currencies[c] = st.Currencies[c].Add(p.Amount)
		st.TotalAmount = st.TotalAmount.Add(p.Amount)

		switch {
		case domain.NormalizeStatus(p.Status) == domain.StatusAccepted:
			st.CompletedProjects++
		case p.Status != domain.LegacyArchive:
			st.ActiveProjects++
		}
	}

	out := make([]ClientStat, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
	})
	return out
}
