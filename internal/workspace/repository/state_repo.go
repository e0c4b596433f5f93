// Package repository persists a workspace in Redis as five whole-collection
// JSON documents.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

const keyPrefix = "studio:"

// Collection keys, relative to the workspace prefix.
const (
	CollectionProjects     = "projects"
	CollectionClients      = "clients"
	CollectionTransactions = "transactions"
	CollectionEmployees    = "employees"
	CollectionTasks        = "tasks"
)

// StateRepository handles Redis reads and writes of one workspace.
type StateRepository struct {
	client    *redis.Client
	workspace string
	// source tags the change events this instance publishes.
	source string
}

// ChangeEvent is published on the events channel after each save.
type ChangeEvent struct {
	Type   string    `json:"type"`
	Source string    `json:"source"`
	At     time.Time `json:"at"`
}

// NewStateRepository creates a repository for the given workspace id.
func NewStateRepository(client *redis.Client, workspace string) *StateRepository {
	if workspace == "" {
		workspace = "default"
	}
	return &StateRepository{client: client, workspace: workspace, source: uuid.NewString()}
}

// Key returns the Redis key of a collection.
func (r *StateRepository) Key(collection string) string {
	return keyPrefix + r.workspace + ":" + collection
}

// EventsChannel is the pub/sub channel that receives a message after each save.
func (r *StateRepository) EventsChannel() string {
	return keyPrefix + r.workspace + ":events"
}

// Load reads all five collections. Missing keys yield empty collections.
func (r *StateRepository) Load(ctx context.Context) (*domain.State, error) {
	keys := []string{
		r.Key(CollectionProjects),
		r.Key(CollectionClients),
		r.Key(CollectionTransactions),
		r.Key(CollectionEmployees),
		r.Key(CollectionTasks),
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	st := &domain.State{
		Projects:     []domain.Project{},
		Clients:      []domain.Client{},
		Transactions: []domain.Transaction{},
		Employees:    []domain.Employee{},
		Tasks:        []domain.Task{},
	}
	targets := []any{&st.Projects, &st.Clients, &st.Transactions, &st.Employees, &st.Tasks}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok || raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), targets[i]); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
	}
	return st, nil
}

// Save writes all five collections in one transaction and publishes a
// change event. Running out of Redis memory is reported as
// domain.ErrStorageQuota.
func (r *StateRepository) Save(ctx context.Context, st *domain.State) error {
	docs := map[string]any{
		CollectionProjects:     nonNil(st.Projects),
		CollectionClients:      nonNil(st.Clients),
		CollectionTransactions: nonNil(st.Transactions),
		CollectionEmployees:    nonNil(st.Employees),
		CollectionTasks:        nonNil(st.Tasks),
	}

	payload := make(map[string][]byte, len(docs))
	for name, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		payload[name] = data
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, data := range payload {
			pipe.Set(ctx, r.Key(name), data, 0)
		}
		return nil
	})
	if err != nil {
		if IsQuotaError(err) {
			return fmt.Errorf("%w: %v", domain.ErrStorageQuota, err)
		}
		return fmt.Errorf("failed to save workspace: %w", err)
	}

	event, _ := json.Marshal(ChangeEvent{Type: "state.changed", Source: r.source, At: time.Now().UTC()})
	// Subscribers are optional; a failed publish does not undo the save.
	r.client.Publish(ctx, r.EventsChannel(), event)
	return nil
}

// Watch calls fn whenever another process saves this workspace. It returns
// once the subscription is active; the returned function ends it.
func (r *StateRepository) Watch(ctx context.Context, fn func(ChangeEvent)) (func() error, error) {
	sub := r.client.Subscribe(ctx, r.EventsChannel())
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.EventsChannel(), err)
	}

	go func() {
		for msg := range sub.Channel() {
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Source == r.source {
				continue
			}
			fn(ev)
		}
	}()
	return sub.Close, nil
}

// IsQuotaError reports whether err is Redis refusing a write for lack of memory.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return strings.HasPrefix(rerr.Error(), "OOM")
	}
	return strings.HasPrefix(err.Error(), "OOM ")
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
