package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

func setupRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProjectRepository(db), mock
}

func doc(t *testing.T, p domain.Project) []byte {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestProjectRepository_List(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT document\s+FROM project_documents\s+ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).
			AddRow(doc(t, domain.Project{ID: "2", Name: "New"})).
			AddRow([]byte(`{"id":1,"name":"Old","status":"sketch"}`)))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "New", got[0].Name)
	assert.Equal(t, domain.ID("1"), got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Get(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectQuery(`SELECT document FROM project_documents WHERE id = \$1`).
		WithArgs("42").
		WillReturnError(sql.ErrNoRows)
	_, err := repo.Get(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	mock.ExpectQuery(`SELECT document FROM project_documents WHERE id = \$1`).
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(doc(t, domain.Project{ID: "7", Name: "Villa"})))
	p, err := repo.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Villa", p.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Upsert(t *testing.T) {
	repo, mock := setupRepo(t)

	t.Run("new project uses its name as folder", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO project_documents`).
			WithArgs("7", "Villa", "Villa", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"folder_name"}).AddRow("Villa"))

		folder, err := repo.Upsert(context.Background(), domain.Project{ID: "7", Name: "Villa"})
		require.NoError(t, err)
		assert.Equal(t, "Villa", folder)
	})

	t.Run("renamed project keeps stored folder", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO project_documents`).
			WithArgs("7", "Villa 2", "Villa 2", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"folder_name"}).AddRow("Villa"))

		folder, err := repo.Upsert(context.Background(), domain.Project{ID: "7", Name: "Villa 2"})
		require.NoError(t, err)
		assert.Equal(t, "Villa", folder)
	})

	t.Run("invalid data maps to invalid input", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO project_documents`).
			WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type json"})

		_, err := repo.Upsert(context.Background(), domain.Project{ID: "7", Name: "Villa"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		_, err := repo.Upsert(context.Background(), domain.Project{Name: "Villa"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Delete(t *testing.T) {
	repo, mock := setupRepo(t)

	mock.ExpectExec(`DELETE FROM project_documents WHERE id = \$1`).
		WithArgs("7").
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Delete(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(`DELETE FROM project_documents WHERE folder_name = \$1`).
		WithArgs("Villa").
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.DeleteByFolder(context.Background(), "Villa")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}
