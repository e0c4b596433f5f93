package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studiodesk/studio-backend/internal/metrics"
	"github.com/studiodesk/studio-backend/internal/notify"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// Snapshot is the archived form of a project.
type Snapshot struct {
	Project    domain.Project `json:"project"`
	ArchivedAt time.Time      `json:"archivedAt"`
	Version    string         `json:"version"`
}

// ChannelResult reports one delivery channel of an archive run.
type ChannelResult struct {
	Success bool   `json:"success"`
	Link    string `json:"link,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result is returned to the caller of the archive endpoint.
type Result struct {
	Success     bool          `json:"success"`
	GoogleDrive ChannelResult `json:"googleDrive"`
	Telegram    ChannelResult `json:"telegram"`
}

// Service builds snapshots and hands them to the uploader and notifier.
type Service struct {
	uploader Uploader
	notifier notify.Sender
	now      func() time.Time
}

func NewService(uploader Uploader, notifier notify.Sender) *Service {
	if uploader == nil {
		uploader = Nop{}
	}
	return &Service{uploader: uploader, notifier: notifier, now: time.Now}
}

// FileName is the archive document name for a project.
func FileName(p domain.Project) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "project-" + p.ID.String()
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name) + ".json"
}

// Archive uploads a snapshot of p. Channel failures are reported in the
// result; only a snapshot encoding failure is returned as an error.
func (s *Service) Archive(ctx context.Context, p domain.Project) (*Result, error) {
	data, err := json.MarshalIndent(Snapshot{Project: p, ArchivedAt: s.now().UTC(), Version: "1"}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode archive snapshot: %w", err)
	}

	res := &Result{Success: true}
	link, err := s.uploader.Upload(ctx, FileName(p), data)
	if err != nil {
		res.GoogleDrive.Error = err.Error()
		if errors.Is(err, ErrNotConfigured) {
			res.GoogleDrive.Error = ErrNotConfigured.Error()
		}
	} else {
		res.GoogleDrive = ChannelResult{Success: true, Link: link}
	}
	metrics.ArchiveTriggers.WithLabelValues(metrics.Result(err)).Inc()

	if s.notifier == nil {
		res.Telegram.Error = ErrNotConfigured.Error()
		return res, nil
	}
	if err := s.notifier.Send(ctx, notify.Archived(p.Name, link)); err != nil {
		res.Telegram.Error = err.Error()
	} else {
		res.Telegram.Success = true
	}
	return res, nil
}
