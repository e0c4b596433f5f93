package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studiodesk/studio-backend/config"
	"github.com/studiodesk/studio-backend/internal/bootstrap"
	"github.com/studiodesk/studio-backend/internal/logger"
	projecthttp "github.com/studiodesk/studio-backend/internal/projectstore/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	bootstrap.SetGinMode(cfg.App.Environment)
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Queued side effects must outlive the signal so Close can drain them.
	ws, err := bootstrap.BuildWorkspace(context.Background(), cfg, rdb, log)
	if err != nil {
		log.Error("failed to load workspace", "error", err)
		os.Exit(1)
	}
	defer ws.Close()

	unwatch, err := ws.WatchChanges(ctx, log)
	if err != nil {
		log.Warn("workspace change feed disabled", "error", err)
	} else {
		defer unwatch()
	}

	var (
		db     *sql.DB
		server *projecthttp.Handler
	)
	if cfg.Server.ProjectServer {
		var docs projecthttp.Documents
		db, docs, err = openProjectDocs(ctx, cfg)
		if err != nil {
			log.Error("failed to open project database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		server = projecthttp.New(docs,
			bootstrap.FileStore(ctx, cfg.Files, log),
			bootstrap.Archiver(ctx, cfg.Drive, ws.Notifier, log))
	}

	authMW, err := bootstrap.Auth(ctx, &cfg.Firebase)
	if err != nil {
		log.Error("failed to initialize auth", "error", err)
		os.Exit(1)
	}

	if cfg.Reminders.Cron != "" {
		if err := ws.Scheduler.Start(ctx, cfg.Reminders.Cron); err != nil {
			log.Error("invalid reminders schedule", "cron", cfg.Reminders.Cron, "error", err)
			os.Exit(1)
		}
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:   "studio-backend",
		Version:       cfg.App.Version,
		CORSOrigins:   cfg.Server.CORSOrigins,
		DB:            db,
		Redis:         rdb,
		Workspace:     ws.Service,
		Auth:          authMW,
		ProjectServer: server,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "env", cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited gracefully")
}

func openProjectDocs(ctx context.Context, cfg *config.Config) (*sql.DB, projecthttp.Documents, error) {
	db, repo, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, repo, nil
}
