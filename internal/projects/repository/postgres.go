package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

const projectColumns = `id, name, description, status, repository_link, local_path, personal_notes, attachment_url, created_at`

// PostgresStore talks to the projects table over database/sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new project store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status string
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &status,
		&p.RepositoryLink, &p.LocalPath, &p.PersonalNotes, &p.AttachmentURL,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.StatusFromStore(status)
	return &p, nil
}

// List returns all projects, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]domain.Project, error) {
	q := `
SELECT ` + projectColumns + `
FROM projects
ORDER BY created_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches exactly one project.
func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	q := `
SELECT ` + projectColumns + `
FROM projects
WHERE id = $1;
`
	p, err := scanProject(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, mapPostgresErr(err)
	}
	return p, nil
}

// Create inserts a new project and returns the stored row.
func (s *PostgresStore) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	q := `
INSERT INTO projects (id, name, description, status, repository_link, local_path, personal_notes, attachment_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + projectColumns + `;
`
	for i := 0; i < 3; i++ {
		p, err := scanProject(s.db.QueryRowContext(ctx, q,
			uuid.NewString(), in.Name,
			domain.Nullable(in.Description), string(in.Status),
			domain.Nullable(in.RepositoryLink), domain.Nullable(in.LocalPath),
			domain.Nullable(in.PersonalNotes), domain.Nullable(in.AttachmentURL),
		))
		if err == nil {
			return p, nil
		}

		// unique violation on id → retry
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

// Update overwrites every editable column of one project.
func (s *PostgresStore) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	in, err := in.NormalizeStored()
	if err != nil {
		return nil, err
	}

	q := `
UPDATE projects
SET name = $2, description = $3, status = $4, repository_link = $5,
    local_path = $6, personal_notes = $7, attachment_url = $8
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(s.db.QueryRowContext(ctx, q, id,
		in.Name, domain.Nullable(in.Description), string(in.Status),
		domain.Nullable(in.RepositoryLink), domain.Nullable(in.LocalPath),
		domain.Nullable(in.PersonalNotes), domain.Nullable(in.AttachmentURL),
	))
	if err != nil {
		return nil, mapPostgresErr(err)
	}
	return p, nil
}

// Delete removes a project row. Attachments are left in the blob store.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM projects WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return mapPostgresErr(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// mapPostgresErr turns "no row" and malformed ids into ErrNotFound.
func mapPostgresErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return domain.ErrNotFound
	}
	return err
}
