package main

import (
	"context"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/studiodesk/studio-backend/config"
	"github.com/studiodesk/studio-backend/internal/bootstrap"
	"github.com/studiodesk/studio-backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "worker",
	Short:         "Background jobs for the studio workspace",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

// env is the wiring shared by every subcommand.
type env struct {
	cfg *config.Config
	log *slog.Logger
	rdb *goredis.Client
	ws  *bootstrap.Workspace
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(&logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	log := slog.Default().With("component", "worker")

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return nil, err
	}
	ws, err := bootstrap.BuildWorkspace(context.Background(), cfg, rdb, log)
	if err != nil {
		rdb.Close()
		return nil, err
	}
	return &env{cfg: cfg, log: log, rdb: rdb, ws: ws}, nil
}

// Close drains queued jobs before dropping the Redis connection.
func (e *env) Close() {
	e.ws.Close()
	e.rdb.Close()
}
