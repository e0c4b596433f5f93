package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const notifiedTTL = 14 * 24 * time.Hour

// NotifiedRepository remembers which reminders were already sent.
type NotifiedRepository struct {
	client *redis.Client
	key    string
}

func NewNotifiedRepository(client *redis.Client, workspace string) *NotifiedRepository {
	if workspace == "" {
		workspace = "default"
	}
	return &NotifiedRepository{client: client, key: keyPrefix + workspace + ":notified"}
}

// MarkOnce records key and reports whether it was new. A false result means
// the reminder was already sent.
func (r *NotifiedRepository) MarkOnce(ctx context.Context, key string) (bool, error) {
	var added *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, r.key, key)
		pipe.Expire(ctx, r.key, notifiedTTL)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder: %w", err)
	}
	return added.Val() == 1, nil
}

// Forget removes key so the reminder can be sent again.
func (r *NotifiedRepository) Forget(ctx context.Context, key string) error {
	return r.client.SRem(ctx, r.key, key).Err()
}
