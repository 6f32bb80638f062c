package domain

import "errors"

var (
	ErrNotFound       = errors.New("project not found")
	ErrNameRequired   = errors.New("project name is required")
	ErrInvalidStatus  = errors.New("invalid project status")
	ErrNotEditing     = errors.New("project is not being edited")
	ErrEditInProgress = errors.New("finish or cancel editing before deleting")
	ErrEmptyUpload    = errors.New("no file selected")
)

// IsValidation reports whether err is an input error the user can fix.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrEmptyUpload)
}
