package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

var projectCols = []string{
	"id", "name", "description", "status", "repository_link",
	"local_path", "personal_notes", "attachment_url", "created_at",
}

func setupPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewPostgresStore(db), mock, db
}

func TestPostgresStore_List(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("b", "B", nil, "active", nil, nil, nil, nil, newer).
			AddRow("a", "A", "desc", "On Hold", "https://github.com/x/a", "C:/src/a", "notes", nil, older))

	items, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Nil(t, items[0].Description)
	assert.Equal(t, domain.StatusOnHold, items[1].Status)
	assert.Equal(t, "https://github.com/x/a", domain.Deref(items[1].RepositoryLink))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`WHERE id = \$1`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "Keeper", nil, "completed", nil, nil, nil, "https://cdn/x.png", time.Now()))

		p, err := store.Get(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Keeper", p.Name)
		assert.Equal(t, domain.StatusCompleted, p.Status)
		assert.Equal(t, "https://cdn/x.png", domain.Deref(p.AttachmentURL))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectQuery(`WHERE id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := store.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed uuid", func(t *testing.T) {
		mock.ExpectQuery(`WHERE id = \$1`).
			WithArgs("not-a-uuid").
			WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})

		_, err := store.Get(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	t.Run("inserts with nulls for empty fields", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO projects`).
			WithArgs(sqlmock.AnyArg(), "X", nil, "active", nil, nil, nil, nil).
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("id-1", "X", nil, "active", nil, nil, nil, nil, time.Now()))

		p, err := store.Create(context.Background(), domain.ProjectInput{Name: "X", Status: domain.StatusActive})
		require.NoError(t, err)
		assert.Equal(t, "id-1", p.ID)
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("retries on id collision", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO projects`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectQuery(`INSERT INTO projects`).
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("id-2", "Y", nil, "archived", nil, nil, nil, nil, time.Now()))

		p, err := store.Create(context.Background(), domain.ProjectInput{Name: "Y", Status: "Archived"})
		require.NoError(t, err)
		assert.Equal(t, "id-2", p.ID)
	})

	t.Run("validates before touching the database", func(t *testing.T) {
		_, err := store.Create(context.Background(), domain.ProjectInput{Name: ""})
		assert.ErrorIs(t, err, domain.ErrNameRequired)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE projects`).
		WithArgs("p1", "Renamed", "new desc", "on_hold", nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "Renamed", "new desc", "on_hold", nil, nil, nil, nil, time.Now()))

	p, err := store.Update(context.Background(), "p1", domain.ProjectInput{
		Name: "Renamed", Description: "new desc", Status: "On Hold",
	})
	require.NoError(t, err)
	assert.Equal(t, "new desc", domain.Deref(p.Description))

	mock.ExpectQuery(`UPDATE projects`).
		WillReturnError(sql.ErrNoRows)
	_, err = store.Update(context.Background(), "gone", domain.ProjectInput{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock, db := setupPostgresStore(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Delete(context.Background(), "p1"))

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Delete(context.Background(), "p1"), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
