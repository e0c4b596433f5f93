package service

import (
	"context"
	"errors"

	"github.com/studiodesk/studio-backend/internal/logger"
	"github.com/studiodesk/studio-backend/internal/metrics"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/workflow"
)

// ArchivedHistoryText is logged on a project once its archive succeeded.
const ArchivedHistoryText = "Проект архивирован автоматически"

// ChangeStatus applies a project or section status change. After the change
// is applied the project is synced, then the notification and, on entry
// into accepted, the archive run in the background in that order. A failed
// save still queues them and is returned with the result.
func (s *Service) ChangeStatus(ctx context.Context, pid domain.ID, req workflow.Request) (*workflow.Result, error) {
	req.Actor = actor(ctx)

	var res *workflow.Result
	snap, err := s.updateProject(ctx, "project.status", pid, func(_ *domain.State, p *domain.Project) error {
		r, err := workflow.ChangeStatus(p, req, s.now())
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if !committed(err) {
		return nil, err
	}
	if !res.Changed {
		return res, err
	}

	level := string(req.Target.Level)
	if level == "" {
		level = string(workflow.LevelProject)
	}
	metrics.StatusTransitions.WithLabelValues(level, string(res.New)).Inc()
	logger.FromContext(ctx).Info("status changed",
		"operation", "change_status", "project_id", pid, "level", level,
		"old", res.Old, "new", res.New)

	s.syncLater(pid)
	for _, e := range res.Effects {
		s.runEffect(e, snap, res)
	}
	return res, err
}

func (s *Service) runEffect(e workflow.Effect, p domain.Project, res *workflow.Result) {
	switch e {
	case workflow.EffectNotify:
		s.background("notify_status", func(ctx context.Context) error {
			return s.runner.RunEffect(ctx, e, p, res)
		})
	case workflow.EffectArchive:
		s.background("archive_project", func(ctx context.Context) error {
			if err := s.runner.RunEffect(ctx, e, p, res); err != nil {
				return err
			}
			return s.markArchived(ctx, p.ID)
		})
	}
}

func (s *Service) markArchived(ctx context.Context, id domain.ID) error {
	_, err := s.updateProject(ctx, "project.archived", id, func(_ *domain.State, p *domain.Project) error {
		workflow.AddHistory(p, domain.ActionArchive, SystemActor, ArchivedHistoryText, s.now())
		return nil
	})
	if errors.Is(err, domain.ErrProjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.coordinator != nil {
		return s.coordinator.SyncProject(ctx, id)
	}
	return nil
}
