package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
	"github.com/projectkeeper/project-keeper/internal/supabase"
)

const restPath = "/rest/v1/" + Table

// PostgrestStore reaches the projects table through the hosted REST
// interface.
type PostgrestStore struct {
	client *supabase.Client
}

func NewPostgrestStore(client *supabase.Client) *PostgrestStore {
	return &PostgrestStore{client: client}
}

// projectRow is the wire shape of a projects row.
type projectRow struct {
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Status         string    `json:"status"`
	RepositoryLink *string   `json:"repository_link"`
	LocalPath      *string   `json:"local_path"`
	PersonalNotes  *string   `json:"personal_notes"`
	AttachmentURL  *string   `json:"attachment_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// writeRow omits the columns the service assigns.
type writeRow struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Status         string  `json:"status"`
	RepositoryLink *string `json:"repository_link"`
	LocalPath      *string `json:"local_path"`
	PersonalNotes  *string `json:"personal_notes"`
	AttachmentURL  *string `json:"attachment_url"`
}

func toWriteRow(in domain.ProjectInput) writeRow {
	return writeRow{
		Name:           in.Name,
		Description:    domain.Nullable(in.Description),
		Status:         string(in.Status),
		RepositoryLink: domain.Nullable(in.RepositoryLink),
		LocalPath:      domain.Nullable(in.LocalPath),
		PersonalNotes:  domain.Nullable(in.PersonalNotes),
		AttachmentURL:  domain.Nullable(in.AttachmentURL),
	}
}

func (r projectRow) toDomain() domain.Project {
	return domain.Project{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Status:         domain.StatusFromStore(r.Status),
		RepositoryLink: r.RepositoryLink,
		LocalPath:      r.LocalPath,
		PersonalNotes:  r.PersonalNotes,
		AttachmentURL:  r.AttachmentURL,
		CreatedAt:      r.CreatedAt,
	}
}

func byID(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

func returnRepresentation() http.Header {
	h := http.Header{}
	h.Set("Prefer", "return=representation")
	return h
}

// single picks the only row of a filtered response.
func single(rows []projectRow) (*domain.Project, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	p := rows[0].toDomain()
	return &p, nil
}

func (s *PostgrestStore) List(ctx context.Context) ([]domain.Project, error) {
	q := url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	}
	var rows []projectRow
	if err := s.client.DoJSON(ctx, http.MethodGet, restPath, q, nil, &rows, nil); err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *PostgrestStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	q := byID(id)
	q.Set("select", "*")
	q.Set("limit", "1")

	var rows []projectRow
	if err := s.client.DoJSON(ctx, http.MethodGet, restPath, q, nil, &rows, nil); err != nil {
		return nil, mapRESTErr(err)
	}
	return single(rows)
}

func (s *PostgrestStore) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	var rows []projectRow
	body := []writeRow{toWriteRow(in)}
	if err := s.client.DoJSON(ctx, http.MethodPost, restPath, nil, body, &rows, returnRepresentation()); err != nil {
		return nil, err
	}
	return single(rows)
}

func (s *PostgrestStore) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	in, err := in.NormalizeStored()
	if err != nil {
		return nil, err
	}

	var rows []projectRow
	if err := s.client.DoJSON(ctx, http.MethodPatch, restPath, byID(id), toWriteRow(in), &rows, returnRepresentation()); err != nil {
		return nil, mapRESTErr(err)
	}
	return single(rows)
}

func (s *PostgrestStore) Delete(ctx context.Context, id string) error {
	q := byID(id)
	q.Set("select", "id")

	var rows []projectRow
	if err := s.client.DoJSON(ctx, http.MethodDelete, restPath, q, nil, &rows, returnRepresentation()); err != nil {
		return mapRESTErr(err)
	}
	if len(rows) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgrestStore) Ping(ctx context.Context) error {
	q := url.Values{"select": {"id"}, "limit": {"1"}}
	return s.client.DoJSON(ctx, http.MethodGet, restPath, q, nil, nil, nil)
}

// mapRESTErr reports a malformed id as a missing record.
func mapRESTErr(err error) error {
	var apiErr *supabase.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "22P02" {
		return domain.ErrNotFound
	}
	return err
}
