package domain

import (
	"time"
)

// System identifies the external tracker an item came from
type System string

const (
	SystemGitHub  System = "github"
	SystemForgejo System = "forgejo"
	SystemTodoist System = "todoist"
)

// Systems lists every supported provider in a stable order
var Systems = []System{SystemGitHub, SystemForgejo, SystemTodoist}

// ItemType is the kind of work item
type ItemType string

const (
	ItemTypeIssue ItemType = "issue"
	ItemTypeTask  ItemType = "task"
)

// Status is the effective lifecycle state of an item
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusClosed     Status = "closed"
	StatusCanceled   Status = "canceled"
)

// IsTerminal reports whether no further lifecycle transition is expected
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusClosed, StatusCanceled:
		return true
	}
	return false
}

// IsCompleted reports whether the item finished successfully (done or closed)
func (s Status) IsCompleted() bool {
	return s == StatusDone || s == StatusClosed
}

// Priority is the derived urgency of an item. The zero value means none.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SyncMode is the kind of reconciliation pass
type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
	SyncModeSingle      SyncMode = "single"
)

// Item is the canonical, provider-neutral representation of one issue or task.
// Timestamps are ISO-8601 strings so that lexical order matches chronological
// order for values of the same precision.
type Item struct {
	ID          string     `json:"id" yaml:"id"`
	System      System     `json:"system" yaml:"system"`
	Type        ItemType   `json:"type" yaml:"type"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Status      Status     `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority,omitempty"`
	DueDate     *string    `json:"dueDate" yaml:"dueDate"`
	CompletedAt *string    `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	CreatedAt   string     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string     `json:"updatedAt" yaml:"updatedAt"`
	Labels      []string   `json:"labels" yaml:"labels"`
	Assignees   []string   `json:"assignees" yaml:"assignees"`
	URL         string     `json:"url" yaml:"url"`
	SystemData  SystemData `json:"systemData" yaml:"systemData"`
}

// SystemData carries the provider-specific fields needed to address the item
// back at its source. Issue trackers fill Repo/Number/State; the task manager
// fills ProjectID/Priority/Due/IsCompleted.
type SystemData struct {
	Repo        string  `json:"repo,omitempty" yaml:"repo,omitempty"`
	Number      int     `json:"number,omitempty" yaml:"number,omitempty"`
	State       string  `json:"state,omitempty" yaml:"state,omitempty"`
	StateReason *string `json:"state_reason,omitempty" yaml:"state_reason,omitempty"`
	ProjectID   string  `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Priority    int     `json:"priority,omitempty" yaml:"priority,omitempty"`
	Due         *string `json:"due,omitempty" yaml:"due,omitempty"`
	IsCompleted bool    `json:"is_completed,omitempty" yaml:"is_completed,omitempty"`
}

// EffectiveTimestamp is the value used to order items by recency:
// UpdatedAt, or CreatedAt when UpdatedAt is absent.
func (i *Item) EffectiveTimestamp() string {
	if i.UpdatedAt != "" {
		return i.UpdatedAt
	}
	return i.CreatedAt
}

// HasLabel reports whether the item carries the exact label
func (i *Item) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// HasAssignee reports whether the user is among the item's assignees
func (i *Item) HasAssignee(user string) bool {
	for _, a := range i.Assignees {
		if a == user {
			return true
		}
	}
	return false
}

// SyncStats counts the outcome of one reconciliation pass
type SyncStats struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// SyncMetadata is the per-system record written after each successful pass.
// Each write replaces the previous record for the system.
type SyncMetadata struct {
	LastSync  time.Time  `json:"lastSync"`
	Mode      SyncMode   `json:"mode"`
	TaskCount int        `json:"taskCount"`
	Stats     *SyncStats `json:"stats,omitempty"`
	ProjectID string     `json:"projectId,omitempty"`
}

// Project is a registry entry mapping a nickname to a provider scope
type Project struct {
	System    System `json:"system" yaml:"system"`
	Repo      string `json:"repo,omitempty" yaml:"repo,omitempty"`
	ProjectID string `json:"projectId,omitempty" yaml:"projectId,omitempty"`
}

// Scope returns the fetch scope for the project: the repository for issue
// trackers, the project id for the task manager.
func (p Project) Scope() string {
	if p.System == SystemTodoist {
		return p.ProjectID
	}
	return p.Repo
}

// Match identifies one cached item in a lookup result
type Match struct {
	System System `json:"system"`
	ID     string `json:"id"`
	Repo   string `json:"repo,omitempty"`
	Number int    `json:"number,omitempty"`
	Title  string `json:"title"`
}

// MatchOf summarises an item for disambiguation output
func MatchOf(item *Item) Match {
	return Match{
		System: item.System,
		ID:     item.ID,
		Repo:   item.SystemData.Repo,
		Number: item.SystemData.Number,
		Title:  item.Title,
	}
}
