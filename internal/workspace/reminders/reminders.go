// Package reminders finds approaching section deadlines and underpaid
// projects and turns them into notification messages.
package reminders

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/finance"
)

type Kind string

const (
	KindDeadline Kind = "deadline"
	KindPayment  Kind = "payment"
)

// Config selects which checks run.
type Config struct {
	DeadlineEnabled    bool
	DeadlineDaysBefore int
	PaymentEnabled     bool
}

func DefaultConfig() Config {
	return Config{DeadlineEnabled: true, DeadlineDaysBefore: 3}
}

// paidThreshold is the paid share below which a payment reminder fires.
var paidThreshold = decimal.NewFromInt(50)

// Reminder is one pending notification.
type Reminder struct {
	Kind        Kind            `json:"type"`
	ProjectID   domain.ID       `json:"projectId"`
	ProjectName string          `json:"projectName"`
	Client      string          `json:"client,omitempty"`
	SectionID   domain.ID       `json:"sectionId,omitempty"`
	SectionName string          `json:"sectionName,omitempty"`
	Engineer    string          `json:"engineer,omitempty"`
	DueDate     string          `json:"dueDate,omitempty"`
	DaysLeft    int             `json:"daysLeft"`
	Remaining   decimal.Decimal `json:"remainingAmount"`
	Currency    domain.Currency `json:"currency,omitempty"`
	PaidPercent int             `json:"paymentPercent"`
}

// Key identifies a reminder for one calendar day, so each one is sent at
// most once a day.
func (r Reminder) Key(now time.Time) string {
	return strings.Join([]string{string(r.Kind), r.ProjectID.String(), r.SectionID.String(), now.Format(finance.DateLayout)}, "|")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Deadlines returns sections due between today and DeadlineDaysBefore days
// ahead. Accepted sections and closed projects are skipped.
func Deadlines(st *domain.State, cfg Config, now time.Time) []Reminder {
	out := make([]Reminder, 0)
	if !cfg.DeadlineEnabled {
		return out
	}
	today := startOfDay(now)
	for _, p := range st.Projects {
		if p.IsClosed() {
			continue
		}
		for _, s := range p.Sections {
			if s.DueDate == "" || domain.NormalizeStatus(s.Status) == domain.StatusAccepted {
				continue
			}
			due, err := finance.ParseDate(s.DueDate, now.Location())
			if err != nil {
				continue
			}
			days := int(math.Round(due.Sub(today).Hours() / 24))
			if days < 0 || days > cfg.DeadlineDaysBefore {
				continue
			}
			out = append(out, Reminder{
				Kind:        KindDeadline,
				ProjectID:   p.ID,
				ProjectName: p.Name,
				Client:      p.Client,
				SectionID:   s.ID,
				SectionName: s.Name,
				Engineer:    s.Engineer,
				DueDate:     s.DueDate,
				DaysLeft:    days,
			})
		}
	}
	return out
}

// Payments returns active projects with an outstanding balance that are
// less than half paid. Income is counted in the project's currency.
func Payments(st *domain.State, cfg Config) []Reminder {
	out := make([]Reminder, 0)
	if !cfg.PaymentEnabled {
		return out
	}
	for i := range st.Projects {
		p := &st.Projects[i]
		if p.IsClosed() || !p.Amount.IsPositive() {
			continue
		}
		cur := p.Currency.OrDefault()
		paid := finance.TotalsByCurrency(finance.FilterType(finance.ForProject(st.Transactions, p.ID), domain.TypeIncome))[cur]
		remaining := p.Amount.Sub(paid)
		percent := paid.Mul(decimal.NewFromInt(100)).Div(p.Amount)
		if !remaining.IsPositive() || !percent.LessThan(paidThreshold) {
			continue
		}
		out = append(out, Reminder{
			Kind:        KindPayment,
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Client:      p.Client,
			Remaining:   remaining,
			Currency:    cur,
			PaidPercent: int(percent.Round(0).IntPart()),
		})
	}
	return out
}

// Check runs every enabled check.
func Check(st *domain.State, cfg Config, now time.Time) []Reminder {
	return append(Deadlines(st, cfg, now), Payments(st, cfg)...)
}

func daysText(days int) string {
	switch days {
	case 0:
		return "сегодня"
	case 1:
		return "завтра"
	default:
		return fmt.Sprintf("через %d дн.", days)
	}
}

// Message renders the notification text of r.
func Message(r Reminder) string {
	switch r.Kind {
	case KindPayment:
		return fmt.Sprintf("💵 Напоминание об оплате\n\nПроект: %s\nОстаток к оплате: %s\nОплачено: %d%%\n\nПросим произвести оплату в ближайшее время.",
			r.ProjectName, finance.FormatMoney(r.Remaining, r.Currency), r.PaidPercent)
	case KindDeadline:
		due := r.DueDate
		if t, err := finance.ParseDate(r.DueDate, time.UTC); err == nil {
			due = t.Format("02.01.2006")
		}
		msg := fmt.Sprintf("⏰ Напоминание о дедлайне\n\nПроект: %s\nРаздел: %s\nСрок: %s (%s)",
			r.ProjectName, r.SectionName, due, daysText(r.DaysLeft))
		if r.Engineer != "" {
			msg += "\nИсполнитель: " + r.Engineer
		}
		return msg
	default:
		return ""
	}
}
