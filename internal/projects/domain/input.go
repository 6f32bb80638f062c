package domain

import "strings"

// ProjectInput is the editable form state of a project. It is what the
// creation form submits, what the edit form is seeded with, and what a
// save writes back in full.
type ProjectInput struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Status         Status `json:"status"`
	RepositoryLink string `json:"repository_link"`
	LocalPath      string `json:"local_path"`
	PersonalNotes  string `json:"personal_notes"`
	AttachmentURL  string `json:"attachment_url"`
}

// InputFromProject seeds form state from a stored record.
func InputFromProject(p *Project) ProjectInput {
	return ProjectInput{
		Name:           p.Name,
		Description:    Deref(p.Description),
		Status:         p.Status,
		RepositoryLink: Deref(p.RepositoryLink),
		LocalPath:      Deref(p.LocalPath),
		PersonalNotes:  Deref(p.PersonalNotes),
		AttachmentURL:  Deref(p.AttachmentURL),
	}
}

// Normalize trims the name, canonicalises the status and validates.
func (in ProjectInput) Normalize() (ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrNameRequired
	}
	st, err := ParseStatus(string(in.Status))
	if err != nil {
		return in, err
	}
	in.Status = st
	return in, nil
}

// NormalizeUpdate is Normalize for a record whose stored status is current.
// An unrecognised status is accepted only when it is exactly the stored
// one, so an untouched legacy value survives a save.
func (in ProjectInput) NormalizeUpdate(current Status) (ProjectInput, error) {
	if !current.IsKnown() && current != "" && Status(strings.TrimSpace(string(in.Status))) == current {
		in.Status = StatusActive
		out, err := in.Normalize()
		out.Status = current
		return out, err
	}
	return in.Normalize()
}

// NormalizeStored is the store-side check for updates: the name is still
// required, known statuses are canonicalised and anything else is written
// verbatim. Callers gate status values with NormalizeUpdate first.
func (in ProjectInput) NormalizeStored() (ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ErrNameRequired
	}
	in.Status = StatusFromStore(strings.TrimSpace(string(in.Status)))
	return in, nil
}
