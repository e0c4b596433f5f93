package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStateRepository_LoadEmpty(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewStateRepository(client, "ws")

	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Projects)
	assert.NotNil(t, st.Clients)
}

func TestStateRepository_SaveLoad(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewStateRepository(client, "ws")
	ctx := context.Background()

	in := &domain.State{
		Projects: []domain.Project{{
			ID: "1700000000000", Name: "Villa", Amount: decimal.NewFromInt(1000),
			Currency: domain.USD, Status: domain.StatusOnReview,
		}},
		Transactions: []domain.Transaction{{
			ID: "t1", Type: domain.TypeIncome, Amount: decimal.NewFromInt(300), Date: "2026-01-02", ProjectID: "1700000000000",
		}},
	}
	require.NoError(t, repo.Save(ctx, in))

	for _, c := range []string{CollectionProjects, CollectionClients, CollectionTransactions, CollectionEmployees, CollectionTasks} {
		assert.True(t, mr.Exists("studio:ws:"+c), c)
	}
	raw, err := mr.Get("studio:ws:clients")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out.Projects, 1)
	assert.Equal(t, "Villa", out.Projects[0].Name)
	assert.True(t, out.Transactions[0].Amount.Equal(decimal.NewFromInt(300)))
}

func TestStateRepository_LoadNumericIDs(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewStateRepository(client, "ws")
	require.NoError(t, mr.Set("studio:ws:projects", `[{"id":1700000000000,"name":"A","status":"sketch","amount":10}]`))

	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, st.Projects, 1)
	assert.Equal(t, domain.ID("1700000000000"), st.Projects[0].ID)
}

func TestStateRepository_LoadCorrupt(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewStateRepository(client, "ws")
	require.NoError(t, mr.Set("studio:ws:tasks", `{not json`))

	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

func TestStateRepository_PublishesEvent(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewStateRepository(client, "ws")
	ctx := context.Background()

	sub := client.Subscribe(ctx, repo.EventsChannel())
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, &domain.State{}))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, "state.changed")
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
	}
}

func TestIsQuotaError(t *testing.T) {
	assert.False(t, IsQuotaError(nil))
	assert.False(t, IsQuotaError(errors.New("connection refused")))
	assert.True(t, IsQuotaError(errors.New("OOM command not allowed when used memory > 'maxmemory'.")))
}

func TestNotifiedRepository_MarkOnce(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewNotifiedRepository(client, "ws")
	ctx := context.Background()

	first, err := repo.MarkOnce(ctx, "p1|s1|2026-01-05")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkOnce(ctx, "p1|s1|2026-01-05")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, repo.Forget(ctx, "p1|s1|2026-01-05"))
	fresh, err := repo.MarkOnce(ctx, "p1|s1|2026-01-05")
	require.NoError(t, err)
	assert.True(t, fresh, "forgotten key can be marked again")
}

func TestStateRepository_Watch(t *testing.T) {
	_, client := setupRedis(t)
	api := NewStateRepository(client, "ws")
	worker := NewStateRepository(client, "ws")
	ctx := context.Background()

	got := make(chan ChangeEvent, 4)
	stop, err := api.Watch(ctx, func(ev ChangeEvent) { got <- ev })
	require.NoError(t, err)
	defer stop()

	require.NoError(t, api.Save(ctx, &domain.State{}))
	require.NoError(t, worker.Save(ctx, &domain.State{}))

	select {
	case ev := <-got:
		assert.Equal(t, "state.changed", ev.Type)
		assert.Equal(t, worker.source, ev.Source)
	case <-time.After(2 * time.Second):
		t.Fatal("no change event from the other instance")
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
