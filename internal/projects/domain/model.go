package domain

import "time"

// Project is the single tracked entity. Optional text columns are nil when
// the stored value is NULL.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	Status         Status    `json:"status"`
	RepositoryLink *string   `json:"repository_link"`
	LocalPath      *string   `json:"local_path"`
	PersonalNotes  *string   `json:"personal_notes"`
	AttachmentURL  *string   `json:"attachment_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Nullable maps "" to nil so empty form fields are stored as NULL.
func Nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
