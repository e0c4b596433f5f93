package service

import (
	"context"

	"github.com/studiodesk/studio-backend/internal/logger"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/reminders"
)

// LoadResult reports a user-initiated reload. Warning is set when the
// server could not be reached; local data is left untouched then.
type LoadResult struct {
	Loaded  int    `json:"loaded"`
	Warning string `json:"warning,omitempty"`
}

// LoadFromServer replaces local projects with the server's list. Remote
// failures do not fail the call; they come back as a warning.
func (s *Service) LoadFromServer(ctx context.Context) (LoadResult, error) {
	if s.coordinator == nil {
		return LoadResult{Warning: domain.ErrRemoteUnavailable.Error()}, nil
	}
	n, err := s.coordinator.LoadFromServer(ctx, func() {
		logger.FromContext(ctx).Info("projects loaded from server", "operation", "load_from_server")
	})
	if err != nil {
		if isPersistence(err) {
			return LoadResult{}, err
		}
		logger.FromContext(ctx).Warn("load from server failed", "operation", "load_from_server", "error", err)
		return LoadResult{Warning: err.Error()}, nil
	}
	return LoadResult{Loaded: n}, nil
}

// PushAll queues a sync of every project.
func (s *Service) PushAll(ctx context.Context) int {
	if s.coordinator == nil {
		return 0
	}
	snap := s.store.Snapshot()
	for _, p := range snap.Projects {
		s.syncLater(p.ID)
	}
	return len(snap.Projects)
}

// Reminders lists the reminders that are currently due.
func (s *Service) Reminders() []reminders.Reminder {
	snap := s.store.Snapshot()
	return reminders.Check(&snap, s.reminders, s.now())
}
