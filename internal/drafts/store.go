// Package drafts keeps the Editing state of a project between requests.
// A draft exists exactly while its project is being edited.
package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

var ErrNotFound = errors.New("draft not found")

// Draft is the unsaved form state of a project in Editing.
type Draft struct {
	ProjectID string              `json:"project_id"`
	Form      domain.ProjectInput `json:"form"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type Store interface {
	Get(ctx context.Context, projectID string) (*Draft, error)
	Put(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, projectID string) error
}
