package http

import (
	"errors"
	"net/http"

	"github.com/projectkeeper/project-keeper/internal/projects/domain"
	"github.com/projectkeeper/project-keeper/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc         *service.ProjectService
	editor      *service.Editor
	maxUploadMB int
}

func New(svc *service.ProjectService, editor *service.Editor, maxUploadMB int) *Handler {
	return &Handler{svc: svc, editor: editor, maxUploadMB: maxUploadMB}
}

// projectReq is the JSON body of create and update. repo_link is the
// older name of repository_link and is still accepted. attachment_url is
// not writable here; only the attachment endpoint sets it.
type projectReq struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	RepositoryLink string `json:"repository_link"`
	RepoLink       string `json:"repo_link"`
	LocalPath      string `json:"local_path"`
	PersonalNotes  string `json:"personal_notes"`
}

func (r projectReq) input() domain.ProjectInput {
	link := r.RepositoryLink
	if link == "" {
		link = r.RepoLink
	}
	return domain.ProjectInput{
		Name:           r.Name,
		Description:    r.Description,
		Status:         domain.Status(r.Status),
		RepositoryLink: link,
		LocalPath:      r.LocalPath,
		PersonalNotes:  r.PersonalNotes,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotEditing), errors.Is(err, domain.ErrEditInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
