package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/studiodesk/studio-backend/config"
	"github.com/studiodesk/studio-backend/internal/archive"
	"github.com/studiodesk/studio-backend/internal/auth"
	"github.com/studiodesk/studio-backend/internal/auth/middleware"
	"github.com/studiodesk/studio-backend/internal/notify"
	"github.com/studiodesk/studio-backend/internal/projectstore/files"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/reminders"
	"github.com/studiodesk/studio-backend/internal/workspace/repository"
	"github.com/studiodesk/studio-backend/internal/workspace/service"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
	wsync "github.com/studiodesk/studio-backend/internal/workspace/sync"
	"github.com/studiodesk/studio-backend/internal/workspace/workflow"
)

// Workspace holds the wired workspace and its background parts.
type Workspace struct {
	Service    *service.Service
	Store      *state.Store
	Repo       *repository.StateRepository
	Dispatcher *wsync.Dispatcher
	Scheduler  *reminders.Scheduler
	Notifier   notify.Sender
}

func RemindersConfig(cfg config.RemindersConfig) reminders.Config {
	return reminders.Config{
		DeadlineEnabled:    cfg.DeadlineEnabled,
		DeadlineDaysBefore: cfg.DeadlineDays,
		PaymentEnabled:     cfg.PaymentEnabled,
	}
}

func Notifier(cfg config.TelegramConfig, log *slog.Logger) notify.Sender {
	return notify.New(notify.TelegramConfig{
		Token:      cfg.BotToken,
		ChatID:     cfg.ChatID,
		RatePerSec: cfg.RatePerSec,
	}, log)
}

// BuildWorkspace loads the workspace from Redis and starts the dispatcher.
// ctx bounds the lifetime of background jobs.
func BuildWorkspace(ctx context.Context, cfg *config.Config, rdb *goredis.Client, log *slog.Logger) (*Workspace, error) {
	repo := repository.NewStateRepository(rdb, cfg.App.WorkspaceID)
	store := state.New(repo)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	store.Subscribe(func(ev state.Event) {
		log.Debug("workspace changed", "kind", ev.Kind, "project_id", ev.ProjectID)
	})

	notifier := Notifier(cfg.Telegram, log)
	remote := wsync.NewRemoteClient(cfg.Remote.URL, cfg.Remote.Timeout)
	dispatcher := wsync.NewDispatcher(256, log)
	dispatcher.Start(ctx)

	rcfg := RemindersConfig(cfg.Reminders)
	svc := service.New(service.Deps{
		Store:       store,
		Coordinator: wsync.NewCoordinator(store, remote),
		Dispatcher:  dispatcher,
		Runner:      workflow.NewRunner(remote, notifier),
		Notifier:    notifier,
		Reminders:   rcfg,
		Log:         log,
	})

	load := func(context.Context) (*domain.State, error) {
		st := store.Snapshot()
		return &st, nil
	}
	scheduler := reminders.NewScheduler(load, repository.NewNotifiedRepository(rdb, cfg.App.WorkspaceID), notifier, rcfg, log)

	return &Workspace{
		Service:    svc,
		Store:      store,
		Repo:       repo,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
		Notifier:   notifier,
	}, nil
}

// WatchChanges reloads the store whenever another process saves the workspace.
func (w *Workspace) WatchChanges(ctx context.Context, log *slog.Logger) (func() error, error) {
	return w.Repo.Watch(ctx, func(ev repository.ChangeEvent) {
		if err := w.Store.Load(ctx); err != nil {
			log.Error("workspace reload failed", "source", ev.Source, "error", err)
			return
		}
		log.Info("workspace reloaded", "source", ev.Source)
	})
}

// Close stops the scheduler and drains queued side effects.
func (w *Workspace) Close() {
	w.Scheduler.Stop()
	w.Dispatcher.Close()
}

// Archiver builds the Drive archive service, or one that reports
// "Not configured" when Drive settings are missing.
func Archiver(ctx context.Context, cfg config.DriveConfig, notifier notify.Sender, log *slog.Logger) *archive.Service {
	var up archive.Uploader = archive.Nop{}
	if cfg.ArchiveFolderID != "" && cfg.CredentialsPath != "" {
		d, err := archive.NewDrive(ctx, cfg.CredentialsPath, cfg.ArchiveFolderID)
		if err != nil {
			log.Warn("google drive disabled", "error", err)
		} else {
			up = d
		}
	}
	return archive.NewService(up, notifier)
}

// FileStore builds the S3 upload store, or one that rejects uploads when no
// bucket is configured.
func FileStore(ctx context.Context, cfg config.FilesConfig, log *slog.Logger) files.Store {
	if cfg.Bucket == "" {
		return files.Nop{}
	}
	s, err := files.NewS3Store(ctx, files.Config{
		Bucket:        cfg.Bucket,
		Region:        cfg.Region,
		Endpoint:      cfg.Endpoint,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		log.Warn("file storage disabled", "error", err)
		return files.Nop{}
	}
	return s
}

// Auth returns the Firebase token middleware, or the header fallback when
// authentication is disabled.
func Auth(ctx context.Context, cfg *config.FirebaseConfig) (gin.HandlerFunc, error) {
	if cfg.AuthDisabled {
		return auth.OptionalUser(), nil
	}
	client, err := auth.InitializeFirebase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return middleware.FirebaseAuthMiddleware(client), nil
}
