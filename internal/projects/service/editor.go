package service

import (
	"context"
	"errors"
	"io"

	"github.com/projectkeeper/project-keeper/internal/drafts"
	"github.com/projectkeeper/project-keeper/internal/logging"
	"github.com/projectkeeper/project-keeper/internal/projects/domain"
)

// State is the detail view mode of one project.
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Session is what the detail view renders: the stored record plus, while
// Editing, the unsaved form.
type Session struct {
	Project *domain.Project
	State   State
	Form    domain.ProjectInput
}

func (s *Session) Editing() bool { return s.State == Editing }

// Editor drives the Viewing/Editing state machine. A project is Editing
// exactly while a draft exists for it.
type Editor struct {
	projects *ProjectService
	drafts   drafts.Store
}

func NewEditor(projects *ProjectService, store drafts.Store) *Editor {
	return &Editor{projects: projects, drafts: store}
}

// Open loads the project and whatever draft is pending for it.
func (e *Editor) Open(ctx context.Context, id string) (*Session, error) {
	p, err := e.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := e.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	return session(p, d), nil
}

// BeginEdit seeds a draft from the stored record. Calling it while already
// Editing keeps the existing draft.
func (e *Editor) BeginEdit(ctx context.Context, id string) (*Session, error) {
	p, err := e.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := e.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d = &drafts.Draft{ProjectID: id, Form: domain.InputFromProject(p)}
		if err := e.drafts.Put(ctx, d); err != nil {
			return nil, err
		}
	}
	return session(p, d), nil
}

// Save writes every editable field. The attachment URL is taken from the
// draft, never from the submitted form. On failure the submitted values
// are kept in the draft and the returned session is still Editing.
func (e *Editor) Save(ctx context.Context, id string, form domain.ProjectInput) (*Session, error) {
	d, err := e.requireDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	form.AttachmentURL = d.Form.AttachmentURL

	p, err := e.projects.Update(ctx, id, form)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = e.drafts.Delete(ctx, id)
			return nil, err
		}
		d.Form = form
		if perr := e.drafts.Put(ctx, d); perr != nil {
			logging.New(ctx).Error("projects.save_draft", perr)
		}
		current, gerr := e.projects.Get(ctx, id)
		if gerr != nil {
			return nil, err
		}
		return session(current, d), err
	}

	if err := e.drafts.Delete(ctx, id); err != nil {
		logging.New(ctx).Error("projects.discard_draft", err)
	}
	return session(p, nil), nil
}

// Cancel discards the draft without touching the Record Store.
func (e *Editor) Cancel(ctx context.Context, id string) (*Session, error) {
	if err := e.drafts.Delete(ctx, id); err != nil {
		return nil, err
	}
	p, err := e.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session(p, nil), nil
}

// Delete removes the project. It is rejected while the project is Editing.
func (e *Editor) Delete(ctx context.Context, id string) error {
	d, err := e.draft(ctx, id)
	if err != nil {
		return err
	}
	if d != nil {
		return domain.ErrEditInProgress
	}
	return e.projects.Delete(ctx, id)
}

// UploadAttachment uploads a file and records its public URL in the draft
// only. form, when non-nil, is the edit form as submitted alongside the
// file and replaces the draft's text fields on success. Nothing changes
// when the upload fails.
func (e *Editor) UploadAttachment(ctx context.Context, id string, form *domain.ProjectInput, filename, contentType string, r io.Reader) (*Session, error) {
	p, err := e.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := e.requireDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := e.projects.Upload(ctx, id, filename, contentType, r)
	if err != nil {
		return session(p, d), err
	}

	if form != nil {
		d.Form = *form
	}
	d.Form.AttachmentURL = url
	if err := e.drafts.Put(ctx, d); err != nil {
		return nil, err
	}
	logging.New(ctx).Infof("projects.attach", "project_id=%s url=%s", id, url)
	return session(p, d), nil
}

func (e *Editor) draft(ctx context.Context, id string) (*drafts.Draft, error) {
	d, err := e.drafts.Get(ctx, id)
	if errors.Is(err, drafts.ErrNotFound) {
		return nil, nil
	}
	return d, err
}

func (e *Editor) requireDraft(ctx context.Context, id string) (*drafts.Draft, error) {
	d, err := e.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotEditing
	}
	return d, nil
}

func session(p *domain.Project, d *drafts.Draft) *Session {
	if d == nil {
		return &Session{Project: p, State: Viewing, Form: domain.InputFromProject(p)}
	}
	return &Session{Project: p, State: Editing, Form: d.Form}
}
