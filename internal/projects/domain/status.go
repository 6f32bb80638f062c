package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a project.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusOnHold      Status = "on_hold"
	StatusCompleted   Status = "completed"
	StatusArchived    Status = "archived"
)

// Statuses lists every status in the order the forms offer them.
var Statuses = []Status{
	StatusActive,
	StatusMaintenance,
	StatusOnHold,
	StatusCompleted,
	StatusArchived,
}

var statusLabels = map[Status]string{
	StatusActive:      "Active (In Progress)",
	StatusMaintenance: "Maintenance (Finished)",
	StatusOnHold:      "On Hold",
	StatusCompleted:   "Completed",
	StatusArchived:    "Archived (Dead)",
}

// legacy labels written by older forms
var statusAliases = map[string]Status{
	"active":                 StatusActive,
	"active (in progress)":   StatusActive,
	"in progress":            StatusActive,
	"maintenance":            StatusMaintenance,
	"maintenance (finished)": StatusMaintenance,
	"on hold":                StatusOnHold,
	"on-hold":                StatusOnHold,
	"on_hold":                StatusOnHold,
	"onhold":                 StatusOnHold,
	"completed":              StatusCompleted,
	"archived":               StatusArchived,
	"archived (dead)":        StatusArchived,
}

// ParseStatus accepts canonical values and legacy labels, case-insensitively.
// An empty string yields StatusActive.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return StatusActive, nil
	}
	if st, ok := statusAliases[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// StatusFromStore is the lenient variant used when reading rows: unknown
// values are kept verbatim so they still display.
func StatusFromStore(raw string) Status {
	if st, err := ParseStatus(raw); err == nil {
		return st
	}
	return Status(raw)
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	if s == "" {
		return "No Status"
	}
	return string(s)
}

// IsKnown reports whether s is one of Statuses.
func (s Status) IsKnown() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsActive drives the green badge.
func (s Status) IsActive() bool {
	return strings.Contains(strings.ToLower(string(s)), "active")
}

func (s Status) String() string { return string(s) }
