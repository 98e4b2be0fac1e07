package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidStatuses are the statuses that can be written back through labels
var ValidStatuses = []Status{StatusBacklog, StatusInProgress, StatusDone, StatusCanceled}

// ValidPriorities are the priorities that can be written back through labels
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ErrNoCachedItems is returned when neither cache layout holds any item
var ErrNoCachedItems = errors.New("no cached items found; run sync first")

// ErrConflictingModes is returned when single-item and incremental sync are both requested
var ErrConflictingModes = errors.New("cannot request both a single item and an incremental sync")

// ValidateSystem validates a provider name
func ValidateSystem(system string) error {
	for _, s := range Systems {
		if string(s) == system {
			return nil
		}
	}
	return &ValidationError{Field: "system", Value: system, Allowed: systemNames()}
}

// ValidateStatus validates a status that is about to be written back
func ValidateStatus(status string) error {
	for _, s := range ValidStatuses {
		if string(s) == status {
			return nil
		}
	}
	allowed := make([]string, len(ValidStatuses))
	for i, s := range ValidStatuses {
		allowed[i] = string(s)
	}
	return &ValidationError{Field: "status", Value: status, Allowed: allowed}
}

// ValidateFilterStatus validates a status used as a list filter, which may be
// any canonical status including provider-derived open/closed.
func ValidateFilterStatus(status string) error {
	switch Status(status) {
	case StatusBacklog, StatusOpen, StatusInProgress, StatusDone, StatusClosed, StatusCanceled:
		return nil
	}
	return &ValidationError{
		Field:   "status",
		Value:   status,
		Allowed: []string{"backlog", "open", "in-progress", "done", "closed", "canceled"},
	}
}

// ValidatePriority validates a priority that is about to be written back
func ValidatePriority(priority string) error {
	for _, p := range ValidPriorities {
		if string(p) == priority {
			return nil
		}
	}
	return &ValidationError{Field: "priority", Value: priority, Allowed: []string{"low", "medium", "high"}}
}

// ValidateTimestamp validates and parses an ISO8601 timestamp
func ValidateTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO8601/RFC3339", s)
	}
	return t, nil
}

func systemNames() []string {
	names := make([]string, len(Systems))
	for i, s := range Systems {
		names[i] = string(s)
	}
	return names
}

// ValidationError is returned before any mutation when an input is invalid
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s %q: must be one of: %s", e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Invalid builds a ValidationError with a free-form reason
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// MissingCredentialError is returned before any network call when a token is absent
type MissingCredentialError struct {
	System System
	EnvVar string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: %s environment variable not set", e.System, e.EnvVar)
}

// SyncError reports a failed reconciliation pass for one system
type SyncError struct {
	System   System
	Nickname string
	Err      error
}

func (e *SyncError) Error() string {
	if e.Nickname != "" {
		return fmt.Sprintf("sync %s (%s) failed: %v", e.Nickname, e.System, e.Err)
	}
	return fmt.Sprintf("sync %s failed: %v", e.System, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a lookup matches no cached item
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no cached item found with ID %s; specify --system and --repo or --task-id", e.ID)
}

// AmbiguousItemError is returned when a bare id matches items in more than one place
type AmbiguousItemError struct {
	ID      string
	Matches []Match
}

func (e *AmbiguousItemError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "multiple items found with ID %s; specify --system and --repo to disambiguate:", e.ID)
	for _, m := range e.Matches {
		if m.Repo != "" {
			fmt.Fprintf(&b, "\n  %s %s#%d: %s", m.System, m.Repo, m.Number, m.Title)
		} else {
			fmt.Fprintf(&b, "\n  %s %s: %s", m.System, m.ID, m.Title)
		}
	}
	return b.String()
}
