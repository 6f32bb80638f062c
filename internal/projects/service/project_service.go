package service

import (
	"context"
	"io"

	"github.com/projectkeeper/project-keeper/internal/blobstore"
	"github.com/projectkeeper/project-keeper/internal/logging"
	"github.com/projectkeeper/project-keeper/internal/projects/domain"
	"github.com/projectkeeper/project-keeper/internal/projects/repository"
)

// ProjectService handles project-related business logic
type ProjectService struct {
	store repository.Store
	blobs blobstore.Store
}

// NewProjectService creates a new project service
func NewProjectService(store repository.Store, blobs blobstore.Store) *ProjectService {
	return &ProjectService{
		store: store,
		blobs: blobs,
	}
}

// List returns every project, newest first
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.store.List(ctx)
}

// Get returns one project or domain.ErrNotFound
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.store.Get(ctx, id)
}

// Create inserts a new project
func (s *ProjectService) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	p, err := s.store.Create(ctx, in)
	if err != nil {
		logging.New(ctx).Error("projects.create", err)
		return nil, err
	}
	logging.New(ctx).Infof("projects.create", "project_id=%s", p.ID)
	return p, nil
}

// Update overwrites every editable field of a project. An unrecognised
// stored status is kept when the caller sends it back unchanged.
func (s *ProjectService) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err = in.NormalizeUpdate(current.Status)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Update(ctx, id, in)
	if err != nil {
		logging.New(ctx).Errorf("projects.update", "project_id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// Delete removes a project. Its attachment object is left in place.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		logging.New(ctx).Errorf("projects.delete", "project_id=%s error=%v", id, err)
		return err
	}
	logging.New(ctx).Infof("projects.delete", "project_id=%s", id)
	return nil
}

// Upload stores a file under a fresh object path and returns its public URL.
func (s *ProjectService) Upload(ctx context.Context, id, filename, contentType string, r io.Reader) (string, error) {
	if filename == "" {
		return "", domain.ErrEmptyUpload
	}
	objectPath := AttachmentPath(id, filename)
	if err := s.blobs.Upload(ctx, objectPath, contentType, r); err != nil {
		logging.New(ctx).Errorf("projects.upload", "project_id=%s path=%s error=%v", id, objectPath, err)
		return "", err
	}
	return s.blobs.PublicURL(objectPath), nil
}

// AttachFile uploads a file and immediately persists its URL on the project.
func (s *ProjectService) AttachFile(ctx context.Context, id, filename, contentType string, r io.Reader) (*domain.Project, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.Upload(ctx, id, filename, contentType, r)
	if err != nil {
		return nil, err
	}

	in := domain.InputFromProject(p)
	in.AttachmentURL = url
	return s.Update(ctx, id, in)
}

// LocalPath returns the project's local path, or domain.ErrNotFound when unset.
func (s *ProjectService) LocalPath(ctx context.Context, id string) (string, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if domain.Deref(p.LocalPath) == "" {
		return "", domain.ErrNotFound
	}
	return *p.LocalPath, nil
}
