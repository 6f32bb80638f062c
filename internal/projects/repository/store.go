package repository

import (
	"context"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

const Table = "projects"

// Store is the Record Store contract: generic CRUD against the projects
// table. Implementations return domain.ErrNotFound when an id matches no row.
type Store interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
