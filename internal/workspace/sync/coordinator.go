package sync

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/studiodesk/studio-backend/internal/logger"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
)

// Remote is the part of the project server the coordinator needs.
type Remote interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	SaveProject(ctx context.Context, p domain.Project) (string, error)
	DeleteProject(ctx context.Context, id domain.ID, folderName string) error
	UploadFile(ctx context.Context, folderName, sectionName, filename string, r io.Reader) (*UploadResult, error)
}

// Coordinator pulls and pushes projects between the store and the server.
type Coordinator struct {
	store  *state.Store
	remote Remote
}

func NewCoordinator(store *state.Store, remote Remote) *Coordinator {
	return &Coordinator{store: store, remote: remote}
}

// LoadFromServer replaces the local project list with the server's. An
// empty server list leaves local data alone and returns 0. onLoaded runs
// after the new list has been committed.
func (c *Coordinator) LoadFromServer(ctx context.Context, onLoaded func()) (int, error) {
	remote, err := c.remote.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("load projects from server: %w", err)
	}
	if len(remote) == 0 {
		return 0, nil
	}

	now := c.store.Now()
	for i := range remote {
		if remote[i].ID.IsZero() {
			remote[i].ID = domain.NewTimestampID(now.Add(time.Duration(i) * time.Millisecond))
		}
		remote[i].Normalize()
	}

	err = c.store.Update(ctx, state.Event{Kind: "projects.loaded"}, func(st *domain.State) error {
		st.Projects = remote
		return nil
	})
	if err != nil {
		return 0, err
	}
	if onLoaded != nil {
		onLoaded()
	}
	return len(remote), nil
}

// SyncProject pushes the current copy of a project. A project deleted in the
// meantime is skipped. The folder name returned on the first save is
// written back.
func (c *Coordinator) SyncProject(ctx context.Context, id domain.ID) error {
	p, err := c.store.Project(id)
	if err != nil {
		logger.FromContext(ctx).Debug("sync skipped", "operation", "sync_project", "project_id", id, "reason", err)
		return nil
	}

	folder, err := c.remote.SaveProject(ctx, p)
	if err != nil {
		return fmt.Errorf("sync project %s: %w", id, err)
	}
	if p.FolderName != "" || folder == "" {
		return nil
	}

	return c.store.Update(ctx, state.Event{Kind: "project.folder", ProjectID: id}, func(st *domain.State) error {
		cur := st.FindProject(id)
		if cur != nil && cur.FolderName == "" {
			cur.FolderName = folder
		}
		return nil
	})
}

// PushAll saves every local project on the server and returns how many
// succeeded.
func (c *Coordinator) PushAll(ctx context.Context) (int, error) {
	snap := c.store.Snapshot()
	var ok int
	var firstErr error
	for _, p := range snap.Projects {
		if err := c.SyncProject(ctx, p.ID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ok++
	}
	return ok, firstErr
}

// DeleteRemote removes a project from the server.
func (c *Coordinator) DeleteRemote(ctx context.Context, id domain.ID, folderName string) error {
	if err := c.remote.DeleteProject(ctx, id, folderName); err != nil {
		return fmt.Errorf("delete remote project %s: %w", id, err)
	}
	return nil
}

// Upload stores a file on the server under the project's folder.
func (c *Coordinator) Upload(ctx context.Context, p domain.Project, sectionName, filename string, r io.Reader) (*UploadResult, error) {
	folder := p.FolderName
	if folder == "" {
		folder = p.Name
	}
	return c.remote.UploadFile(ctx, folder, sectionName, filename, r)
}
