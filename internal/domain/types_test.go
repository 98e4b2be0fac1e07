package domain

import (
	"testing"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusBacklog, false},
		{StatusOpen, false},
		{StatusInProgress, false},
		{StatusDone, true},
		{StatusClosed, true},
		{StatusCanceled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_IsCompleted(t *testing.T) {
	if !StatusDone.IsCompleted() || !StatusClosed.IsCompleted() {
		t.Error("done and closed should count as completed")
	}
	if StatusCanceled.IsCompleted() {
		t.Error("canceled must not count as completed")
	}
}

func TestItem_EffectiveTimestamp(t *testing.T) {
	item := Item{CreatedAt: "2025-01-01T00:00:00Z", UpdatedAt: "2025-01-05T00:00:00Z"}
	if got := item.EffectiveTimestamp(); got != "2025-01-05T00:00:00Z" {
		t.Errorf("expected updatedAt, got %q", got)
	}

	item.UpdatedAt = ""
	if got := item.EffectiveTimestamp(); got != "2025-01-01T00:00:00Z" {
		t.Errorf("expected createdAt fallback, got %q", got)
	}
}

func TestProject_Scope(t *testing.T) {
	gh := Project{System: SystemGitHub, Repo: "acme/api"}
	if gh.Scope() != "acme/api" {
		t.Errorf("github scope = %q", gh.Scope())
	}

	td := Project{System: SystemTodoist, ProjectID: "2203306141"}
	if td.Scope() != "2203306141" {
		t.Errorf("todoist scope = %q", td.Scope())
	}
}

func TestItem_HasLabelAndAssignee(t *testing.T) {
	item := Item{Labels: []string{"bug", "priority:high"}, Assignees: []string{"alice"}}

	if !item.HasLabel("bug") || item.HasLabel("feature") {
		t.Error("HasLabel mismatch")
	}
	if !item.HasAssignee("alice") || item.HasAssignee("bob") {
		t.Error("HasAssignee mismatch")
	}
}
