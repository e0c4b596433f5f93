package http

import (
	"context"

	"github.com/studiodesk/studio-backend/internal/archive"
	"github.com/studiodesk/studio-backend/internal/projectstore/files"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// Documents is the project document storage.
type Documents interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id domain.ID) (*domain.Project, error)
	Upsert(ctx context.Context, p domain.Project) (string, error)
	Delete(ctx context.Context, id domain.ID) (bool, error)
	DeleteByFolder(ctx context.Context, folder string) (bool, error)
}

// Archiver turns a stored project into an archive snapshot.
type Archiver interface {
	Archive(ctx context.Context, p domain.Project) (*archive.Result, error)
}

// Handler bundles the dependencies for project server endpoints.
type Handler struct {
	docs     Documents
	files    files.Store
	archiver Archiver
}

func New(docs Documents, store files.Store, archiver Archiver) *Handler {
	if store == nil {
		store = files.Nop{}
	}
	return &Handler{docs: docs, files: store, archiver: archiver}
}

type deleteReq struct {
	ID         domain.ID `json:"id"`
	FolderName string    `json:"folderName"`
}

type archiveReq struct {
	ProjectID domain.ID `json:"projectId"`
}
