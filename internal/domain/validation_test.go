package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "backlog", status: "backlog", wantErr: false},
		{name: "in-progress", status: "in-progress", wantErr: false},
		{name: "done", status: "done", wantErr: false},
		{name: "canceled", status: "canceled", wantErr: false},
		{name: "open is provider-derived", status: "open", wantErr: true},
		{name: "closed is provider-derived", status: "closed", wantErr: true},
		{name: "underscore spelling", status: "in_progress", wantErr: true},
		{name: "uppercase", status: "DONE", wantErr: true},
		{name: "empty", status: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatus(tt.status)
			if tt.wantErr && err == nil {
				t.Error("ValidateStatus() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateStatus() unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePriority(t *testing.T) {
	tests := []struct {
		name     string
		priority string
		wantErr  bool
	}{
		{name: "low", priority: "low", wantErr: false},
		{name: "medium", priority: "medium", wantErr: false},
		{name: "high", priority: "high", wantErr: false},
		{name: "urgent", priority: "urgent", wantErr: true},
		{name: "numeric", priority: "4", wantErr: true},
		{name: "empty", priority: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePriority(tt.priority)
			if tt.wantErr && err == nil {
				t.Error("ValidatePriority() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePriority() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSystem(t *testing.T) {
	for _, s := range []string{"github", "forgejo", "todoist"} {
		if err := ValidateSystem(s); err != nil {
			t.Errorf("ValidateSystem(%q) unexpected error: %v", s, err)
		}
	}

	err := ValidateSystem("jira")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "github, forgejo, todoist") {
		t.Errorf("error should list allowed systems, got %q", err.Error())
	}
}

func TestValidateFilterStatus(t *testing.T) {
	for _, s := range []string{"backlog", "open", "in-progress", "done", "closed", "canceled"} {
		if err := ValidateFilterStatus(s); err != nil {
			t.Errorf("ValidateFilterStatus(%q) unexpected error: %v", s, err)
		}
	}
	if err := ValidateFilterStatus("blocked"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestValidateTimestamp(t *testing.T) {
	if _, err := ValidateTimestamp("2025-03-01T10:00:00Z"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ValidateTimestamp("2025-03-01T10:00:00+02:00"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ValidateTimestamp("yesterday"); err == nil {
		t.Error("expected error for non-ISO timestamp")
	}
}

func TestSyncError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &SyncError{System: SystemGitHub, Nickname: "api", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("SyncError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "api (github)") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestAmbiguousItemError_ListsMatches(t *testing.T) {
	err := &AmbiguousItemError{
		ID: "12",
		Matches: []Match{
			{System: SystemGitHub, ID: "12", Repo: "acme/api", Number: 12, Title: "Fix login"},
			{System: SystemForgejo, ID: "12", Repo: "home/infra", Number: 12, Title: "Renew certs"},
		},
	}

	msg := err.Error()
	for _, want := range []string{"github acme/api#12", "forgejo home/infra#12", "disambiguate"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
