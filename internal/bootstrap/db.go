package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/studiodesk/studio-backend/config"
	"github.com/studiodesk/studio-backend/internal/projectstore/repository"
	"github.com/studiodesk/studio-backend/internal/storage/postgres"
	"github.com/studiodesk/studio-backend/internal/storage/redis"
)

// OpenDB connects to Postgres and makes sure the project documents table exists.
func OpenDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, *repository.ProjectRepository, error) {
	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("db connect: %w", err)
	}
	repo := repository.NewProjectRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}

func OpenRedis(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	client, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return client, nil
}
