// Package repository keeps project documents as JSONB rows in Postgres.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS project_documents (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    folder_name TEXT NOT NULL DEFAULT '',
    document    JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS project_documents_folder_idx ON project_documents (folder_name);
`

// ProjectRepository stores whole project documents keyed by project id.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// EnsureSchema creates the documents table when it does not exist.
func (r *ProjectRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure project_documents schema: %w", err)
	}
	return nil
}

// List returns every document, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT document
FROM project_documents
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p domain.Project
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode project document: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get loads one document.
func (r *ProjectRepository) Get(ctx context.Context, id domain.ID) (*domain.Project, error) {
	const q = `SELECT document FROM project_documents WHERE id = $1;`

	var raw []byte
	err := r.db.QueryRowContext(ctx, q, id.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode project document: %w", err)
	}
	return &p, nil
}

// Upsert inserts or replaces the document with p's id and returns the
// folder name the project's files live under. A folder name set on an
// earlier save is kept.
func (r *ProjectRepository) Upsert(ctx context.Context, p domain.Project) (string, error) {
	if p.ID.IsZero() {
		return "", fmt.Errorf("%w: project id is empty", domain.ErrInvalidInput)
	}
	folder := strings.TrimSpace(p.FolderName)
	if folder == "" {
		folder = p.Name
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode project document: %w", err)
	}

	const q = `
INSERT INTO project_documents (id, name, folder_name, document)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET name        = EXCLUDED.name,
    folder_name = COALESCE(NULLIF(project_documents.folder_name, ''), EXCLUDED.folder_name),
    document    = EXCLUDED.document,
    updated_at  = now()
RETURNING folder_name;
`
	var out string
	if err := r.db.QueryRowContext(ctx, q, p.ID.String(), p.Name, folder, doc).Scan(&out); err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code.Class() == "22" {
			return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, pgErr.Message)
		}
		return "", fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return out, nil
}

// Delete removes a document by id. Deleting a missing document is not an error.
func (r *ProjectRepository) Delete(ctx context.Context, id domain.ID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_documents WHERE id = $1;`, id.String())
	if err != nil {
		return false, fmt.Errorf("delete project %s: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteByFolder removes the document stored under folder. Older clients
// only know the folder name.
func (r *ProjectRepository) DeleteByFolder(ctx context.Context, folder string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_documents WHERE folder_name = $1;`, folder)
	if err != nil {
		return false, fmt.Errorf("delete project folder %q: %w", folder, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
