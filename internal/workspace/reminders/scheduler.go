package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/studiodesk/studio-backend/internal/metrics"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/registry"
)

// DefaultSpec runs at the top of every hour. Specs include a seconds field.
const DefaultSpec = "0 0 * * * *"

// Marker records sent reminders. MarkOnce reports false for a key seen before.
type Marker interface {
	MarkOnce(ctx context.Context, key string) (bool, error)
}

type forgetter interface {
	Forget(ctx context.Context, key string) error
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// LoadFunc returns the workspace to check.
type LoadFunc func(ctx context.Context) (*domain.State, error)

// Scheduler runs the reminder checks periodically.
type Scheduler struct {
	load   LoadFunc
	marker Marker
	sender Sender
	cfg    Config
	log    *slog.Logger
	now    func() time.Time
	cron   *cron.Cron
}

func NewScheduler(load LoadFunc, marker Marker, sender Sender, cfg Config, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		load:   load,
		marker: marker,
		sender: sender,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Start schedules RunOnce on spec. An empty spec means DefaultSpec.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		sent, err := s.RunOnce(ctx)
		if err != nil {
			s.log.Error("reminder run failed", "operation", "reminders", "error", err)
			return
		}
		s.log.Info("reminder run finished", "operation", "reminders", "sent", sent)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	s.cron = c
	c.Start()
	s.log.Info("reminder scheduler started", "spec", spec)
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce checks the workspace and sends each pending reminder once per
// day. Payment reminders are only sent for clients linked to Telegram.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	st, err := s.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load workspace: %w", err)
	}
	now := s.now()

	sent := 0
	for _, r := range Check(st, s.cfg, now) {
		if r.Kind == KindPayment {
			c := registry.FindClient(st.Clients, r.Client)
			if c == nil || c.Telegram == "" {
				continue
			}
		}
		fresh, err := s.marker.MarkOnce(ctx, r.Key(now))
		if err != nil {
			return sent, err
		}
		if !fresh {
			continue
		}
		if err := s.sender.Send(ctx, Message(r)); err != nil {
			s.log.Warn("reminder not delivered", "kind", r.Kind, "project_id", r.ProjectID, "error", err)
			if f, ok := s.marker.(forgetter); ok {
				_ = f.Forget(ctx, r.Key(now))
			}
			continue
		}
		metrics.RemindersSent.WithLabelValues(string(r.Kind)).Inc()
		sent++
	}
	return sent, nil
}
