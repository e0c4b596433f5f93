// Package service exposes every workspace operation. Mutations go through
// the store, which persists them; remote side effects are queued on the
// dispatcher and never block the caller.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/studiodesk/studio-backend/internal/logger"
	"github.com/studiodesk/studio-backend/internal/notify"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/finance"
	"github.com/studiodesk/studio-backend/internal/workspace/progress"
	"github.com/studiodesk/studio-backend/internal/workspace/reminders"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
	wsync "github.com/studiodesk/studio-backend/internal/workspace/sync"
	"github.com/studiodesk/studio-backend/internal/workspace/workflow"
)

// SystemActor is recorded when no user is attached to the request.
const SystemActor = "Система"

// Deps wires the service. Coordinator, Dispatcher and Notifier may be nil,
// which turns the matching side effects off.
type Deps struct {
	Store       *state.Store
	Coordinator *wsync.Coordinator
	Dispatcher  *wsync.Dispatcher
	Runner      *workflow.Runner
	Notifier    notify.Sender
	Reminders   reminders.Config
	Log         *slog.Logger
}

type Service struct {
	store       *state.Store
	coordinator *wsync.Coordinator
	dispatcher  *wsync.Dispatcher
	runner      *workflow.Runner
	notifier    notify.Sender
	reminders   reminders.Config
	log         *slog.Logger
}

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Runner == nil {
		d.Runner = workflow.NewRunner(nil, d.Notifier)
	}
	return &Service{
		store:       d.Store,
		coordinator: d.Coordinator,
		dispatcher:  d.Dispatcher,
		runner:      d.Runner,
		notifier:    d.Notifier,
		reminders:   d.Reminders,
		log:         d.Log,
	}
}

func actor(ctx context.Context) string {
	if u := strings.TrimSpace(logger.User(ctx)); u != "" {
		return u
	}
	return SystemActor
}

func (s *Service) now() time.Time { return s.store.Now() }

func (s *Service) today() string { return s.now().Format(finance.DateLayout) }

// background queues fn on the dispatcher. Without a dispatcher the side
// effect is dropped.
func (s *Service) background(name string, fn func(ctx context.Context) error) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Enqueue(wsync.Job{Name: name, Run: fn})
}

func (s *Service) syncLater(id domain.ID) {
	if s.coordinator == nil {
		return
	}
	s.background("sync_project", func(ctx context.Context) error {
		return s.coordinator.SyncProject(ctx, id)
	})
}

func (s *Service) notifyLater(kind, text string) {
	if s.notifier == nil {
		return
	}
	s.background("notify_"+kind, func(ctx context.Context) error {
		return s.notifier.Send(ctx, text)
	})
}

// updateProject runs fn on one project inside a store update and returns a
// copy of the project as committed.
func (s *Service) updateProject(ctx context.Context, kind string, id domain.ID, fn func(st *domain.State, p *domain.Project) error) (domain.Project, error) {
	var out domain.Project
	err := s.store.Update(ctx, state.Event{Kind: kind, ProjectID: id}, func(st *domain.State) error {
		p := st.FindProject(id)
		if p == nil {
			return domain.ErrProjectNotFound
		}
		if err := fn(st, p); err != nil {
			return err
		}
		out = p.Clone()
		return nil
	})
	if err != nil {
		return out, err
	}
	return out, nil
}

// State returns a copy of the whole workspace.
func (s *Service) State() domain.State { return s.store.Snapshot() }

// ProjectView is a project with its derived figures.
type ProjectView struct {
	domain.Project
	Progress        int                     `json:"progress"`
	Finances        finance.ProjectFinances `json:"finances"`
	CorrectionAlert string                  `json:"correctionAlert,omitempty"`
}

func (s *Service) view(p *domain.Project, txs []domain.Transaction) ProjectView {
	return ProjectView{
		Project:         p.Clone(),
		Progress:        progress.Of(p),
		Finances:        finance.OfProject(p, txs),
		CorrectionAlert: p.CorrectionAlert(),
	}
}

// Projects lists all projects with their derived figures.
func (s *Service) Projects() []ProjectView {
	out := make([]ProjectView, 0)
	s.store.View(func(st *domain.State) {
		for i := range st.Projects {
			out = append(out, s.view(&st.Projects[i], st.Transactions))
		}
	})
	return out
}

// Project returns one project with its derived figures.
func (s *Service) Project(id domain.ID) (ProjectView, error) {
	var out ProjectView
	err := domain.ErrProjectNotFound
	s.store.View(func(st *domain.State) {
		if p := st.FindProject(id); p != nil {
			out = s.view(p, st.Transactions)
			err = nil
		}
	})
	return out, err
}

func stateEvent(kind string, id domain.ID) state.Event {
	return state.Event{Kind: kind, ProjectID: id}
}

func isPersistence(err error) bool {
	return errors.Is(err, state.ErrPersist)
}

// committed reports whether a mutation stayed applied in memory: it was
// saved, or only the save failed. Its side effects must still be queued.
func committed(err error) bool {
	return err == nil || isPersistence(err)
}

// Progress returns the completion percentage of every project.
func (s *Service) Progress() []progress.Entry {
	var out []progress.Entry
	s.store.View(func(st *domain.State) {
		out = progress.Report(st.Projects)
	})
	return out
}
