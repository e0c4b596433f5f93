package sync

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
)

type nopPersister struct{ saves int }

func (p *nopPersister) Load(context.Context) (*domain.State, error) { return &domain.State{}, nil }
func (p *nopPersister) Save(context.Context, *domain.State) error {
	p.saves++
	return nil
}

type fakeRemote struct {
	projects []domain.Project
	listErr  error
	saved    []domain.Project
	saveErr  error
	folder   string
	deleted  []domain.ID
}

func (f *fakeRemote) ListProjects(context.Context) ([]domain.Project, error) {
	return f.projects, f.listErr
}

func (f *fakeRemote) SaveProject(_ context.Context, p domain.Project) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, p)
	return f.folder, nil
}

func (f *fakeRemote) DeleteProject(_ context.Context, id domain.ID, _ string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemote) UploadFile(_ context.Context, folder, _, name string, _ io.Reader) (*UploadResult, error) {
	return &UploadResult{Success: true, URL: "https://files/" + folder + "/" + name}, nil
}

func newStore(t *testing.T, projects ...domain.Project) *state.Store {
	t.Helper()
	s := state.New(&nopPersister{}).WithClock(func() time.Time {
		return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	})
	require.NoError(t, s.Update(context.Background(), state.Event{}, func(st *domain.State) error {
		st.Projects = projects
		return nil
	}))
	return s
}

func TestCoordinator_LoadFromServer(t *testing.T) {
	t.Run("replaces local projects and fills defaults", func(t *testing.T) {
		store := newStore(t, domain.Project{ID: "local"})
		remote := &fakeRemote{projects: []domain.Project{
			{Name: "A", Status: domain.LegacyCompleted},
			{ID: "7", Name: "B"},
		}}
		called := false

		n, err := NewCoordinator(store, remote).LoadFromServer(context.Background(), func() { called = true })
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.True(t, called)

		snap := store.Snapshot()
		require.Len(t, snap.Projects, 2)
		assert.False(t, snap.Projects[0].ID.IsZero())
		assert.Equal(t, domain.StatusAccepted, snap.Projects[0].Status)
		assert.NotNil(t, snap.Projects[1].Sections)
		assert.NotNil(t, snap.Projects[1].Photos)
	})

	t.Run("empty server keeps local data", func(t *testing.T) {
		store := newStore(t, domain.Project{ID: "local"})
		n, err := NewCoordinator(store, &fakeRemote{}).LoadFromServer(context.Background(), func() {
			t.Fatal("callback must not run")
		})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Len(t, store.Snapshot().Projects, 1)
	})

	t.Run("server error", func(t *testing.T) {
		store := newStore(t)
		_, err := NewCoordinator(store, &fakeRemote{listErr: errors.New("down")}).LoadFromServer(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestCoordinator_SyncProject(t *testing.T) {
	t.Run("stores folder name after first save", func(t *testing.T) {
		store := newStore(t, domain.Project{ID: "1", Name: "Villa"})
		remote := &fakeRemote{folder: "Villa"}

		require.NoError(t, NewCoordinator(store, remote).SyncProject(context.Background(), "1"))
		p, err := store.Project("1")
		require.NoError(t, err)
		assert.Equal(t, "Villa", p.FolderName)
		assert.Len(t, remote.saved, 1)
	})

	t.Run("existing folder name is kept", func(t *testing.T) {
		store := newStore(t, domain.Project{ID: "1", Name: "Villa", FolderName: "Old"})
		remote := &fakeRemote{folder: "New"}

		require.NoError(t, NewCoordinator(store, remote).SyncProject(context.Background(), "1"))
		p, _ := store.Project("1")
		assert.Equal(t, "Old", p.FolderName)
	})

	t.Run("deleted project is skipped", func(t *testing.T) {
		store := newStore(t)
		remote := &fakeRemote{}
		require.NoError(t, NewCoordinator(store, remote).SyncProject(context.Background(), "gone"))
		assert.Empty(t, remote.saved)
	})

	t.Run("remote failure is returned", func(t *testing.T) {
		store := newStore(t, domain.Project{ID: "1"})
		err := NewCoordinator(store, &fakeRemote{saveErr: errors.New("down")}).SyncProject(context.Background(), "1")
		assert.Error(t, err)
	})
}

func TestCoordinator_PushAllAndDelete(t *testing.T) {
	store := newStore(t, domain.Project{ID: "1"}, domain.Project{ID: "2"})
	remote := &fakeRemote{}
	c := NewCoordinator(store, remote)

	n, err := c.PushAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, c.DeleteRemote(context.Background(), "1", ""))
	assert.Equal(t, []domain.ID{"1"}, remote.deleted)
}

func TestCoordinator_UploadUsesProjectNameWithoutFolder(t *testing.T) {
	c := NewCoordinator(newStore(t), &fakeRemote{})
	res, err := c.Upload(context.Background(), domain.Project{Name: "Villa"}, "", "a.png", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://files/Villa/a.png", res.URL)
}
