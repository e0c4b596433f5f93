// Package state holds the in-memory workspace and commits every mutation
// to the local durable store.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// ErrPersist wraps failures of the durable store on commit.
var ErrPersist = errors.New("save state")

// Persister reads and writes the whole workspace.
type Persister interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, s *domain.State) error
}

// Event tells observers that the workspace changed.
type Event struct {
	Kind      string    `json:"kind"`
	ProjectID domain.ID `json:"project_id,omitempty"`
	At        time.Time `json:"at"`
}

// Observer is notified after each committed mutation.
type Observer func(Event)

// Store owns the workspace state. Mutations are serialized; readers get
// either a callback under the read lock or a deep copy.
type Store struct {
	mu        sync.RWMutex
	state     domain.State
	persister Persister

	obsMu     sync.RWMutex
	observers []Observer

	now func() time.Time
}

// New creates an empty store backed by p.
func New(p Persister) *Store {
	return &Store{
		persister: p,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.now() }

// Load replaces the in-memory state with the persisted one. Legacy status
// values are normalized on the way in.
func (s *Store) Load(ctx context.Context) error {
	st, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	for i := range st.Projects {
		st.Projects[i].Normalize()
	}

	s.mu.Lock()
	s.state = *st
	s.mu.Unlock()

	s.emit(Event{Kind: "loaded", At: s.now()})
	return nil
}

// View runs fn with read access. fn must not retain st or anything in it.
func (s *Store) View(fn func(st *domain.State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Project returns a deep copy of one project.
func (s *Store) Project(id domain.ID) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.state.FindProject(id)
	if p == nil {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return p.Clone(), nil
}

// Update applies fn and commits the result. fn must validate before it
// mutates: an error from fn is returned as-is and nothing is saved. When
// the save fails the in-memory change is kept and the error is returned,
// so the caller can surface it; the next successful save persists it.
func (s *Store) Update(ctx context.Context, ev Event, fn func(st *domain.State) error) error {
	s.mu.Lock()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.persister.Save(ctx, &s.state)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if ev.At.IsZero() {
		ev.At = s.now()
	}
	s.emit(ev)
	return nil
}

// Subscribe registers an observer for committed changes.
func (s *Store) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Store) emit(ev Event) {
	s.obsMu.RLock()
	obs := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()
	for _, o := range obs {
		o(ev)
	}
}
