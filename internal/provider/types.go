// Package provider defines the raw item shapes returned by each external
// tracker and the contract the reconciler consumes them through.
package provider

import (
	"context"
	"strconv"
	"time"

	"github.com/lherron/todu/internal/domain"
)

// RawItem is one item as returned by a provider, before normalization.
// Implemented by *GitHubIssue, *ForgejoIssue and *TodoistTask.
type RawItem interface {
	System() domain.System
	NativeID() string
	IsPullRequest() bool
}

// Query selects what a Fetcher returns. ID selects a single item; Since
// limits the listing to items changed at or after the watermark.
type Query struct {
	Scope string
	Since *time.Time
	ID    string
}

// Fetcher lists raw items for one provider
type Fetcher interface {
	System() domain.System
	Fetch(ctx context.Context, q Query) ([]RawItem, error)
}

// Label is an issue tracker label
type Label struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// User is an issue tracker account reference
type User struct {
	Login string `json:"login"`
}

// PullRequestRef is present on issue listings that are really pull requests
type PullRequestRef struct {
	URL     string `json:"url,omitempty"`
	HTMLURL string `json:"html_url,omitempty"`
}

// GitHubIssue is an issue as returned by the GitHub REST API
type GitHubIssue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        *string         `json:"body"`
	State       string          `json:"state"`
	StateReason *string         `json:"state_reason"`
	HTMLURL     string          `json:"html_url"`
	Labels      []Label         `json:"labels"`
	Assignees   []User          `json:"assignees"`
	PullRequest *PullRequestRef `json:"pull_request,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ClosedAt    *time.Time      `json:"closed_at"`
}

func (i *GitHubIssue) System() domain.System { return domain.SystemGitHub }
func (i *GitHubIssue) NativeID() string      { return strconv.Itoa(i.Number) }
func (i *GitHubIssue) IsPullRequest() bool   { return i.PullRequest != nil }

// ForgejoIssue is an issue as returned by the Forgejo/Gitea API
type ForgejoIssue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	Body        *string         `json:"body"`
	State       string          `json:"state"`
	StateReason *string         `json:"state_reason,omitempty"`
	HTMLURL     string          `json:"html_url"`
	Labels      []Label         `json:"labels"`
	Assignees   []User          `json:"assignees"`
	PullRequest *PullRequestRef `json:"pull_request,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ClosedAt    *time.Time      `json:"closed_at"`
	DueDate     *time.Time      `json:"due_date"`
}

func (i *ForgejoIssue) System() domain.System { return domain.SystemForgejo }
func (i *ForgejoIssue) NativeID() string      { return strconv.Itoa(i.Number) }
func (i *ForgejoIssue) IsPullRequest() bool   { return i.PullRequest != nil }

// TodoistDue is a task's due specification
type TodoistDue struct {
	Date     string  `json:"date"`
	Datetime *string `json:"datetime,omitempty"`
	String   string  `json:"string,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

// TodoistTask is a task as returned by the Todoist API
type TodoistTask struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	Description string      `json:"description"`
	ProjectID   string      `json:"project_id"`
	Priority    int         `json:"priority"`
	Labels      []string    `json:"labels"`
	Due         *TodoistDue `json:"due"`
	Checked     bool        `json:"checked"`
	AddedAt     *time.Time  `json:"added_at"`
	UpdatedAt   *time.Time  `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at"`
	URL         string      `json:"url,omitempty"`
}

func (t *TodoistTask) System() domain.System { return domain.SystemTodoist }
func (t *TodoistTask) NativeID() string      { return t.ID }
func (t *TodoistTask) IsPullRequest() bool   { return false }

// DueValue returns the most precise due value, or "" when the task has none
func (t *TodoistTask) DueValue() string {
	if t.Due == nil {
		return ""
	}
	if t.Due.Datetime != nil && *t.Due.Datetime != "" {
		return *t.Due.Datetime
	}
	return t.Due.Date
}

// TaskURL returns the task's web link, synthesising one when the API omits it
func (t *TodoistTask) TaskURL() string {
	if t.URL != "" {
		return t.URL
	}
	return "https://app.todoist.com/app/task/" + t.ID
}

// NewIssue is the payload for creating an issue on GitHub or Forgejo
type NewIssue struct {
	Title  string
	Body   string
	Labels []string
}

// NewTask is the payload for creating a Todoist task
type NewTask struct {
	Content     string   `json:"content"`
	Description string   `json:"description,omitempty"`
	ProjectID   string   `json:"project_id,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// TaskUpdate is the payload for updating a Todoist task. Nil fields are left untouched.
type TaskUpdate struct {
	Labels   []string `json:"labels,omitempty"`
	Priority *int     `json:"priority,omitempty"`
}

// IssueComment is a comment as returned by the GitHub and Forgejo APIs
type IssueComment struct {
	ID        int64     `json:"id"`
	User      User      `json:"user"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoistComment is a task comment as returned by the Todoist API
type TodoistComment struct {
	ID       string     `json:"id"`
	Content  string     `json:"content"`
	PostedAt *time.Time `json:"posted_at"`
}

// Comment is a posted comment in the shape shared by all systems
type Comment struct {
	System   domain.System `json:"system"`
	ID       string        `json:"id"`
	Target   string        `json:"target"`
	Author   string        `json:"author,omitempty"`
	Body     string        `json:"body"`
	PostedAt *time.Time    `json:"posted_at,omitempty"`
	URL      string        `json:"url,omitempty"`
}

// FromIssueComment converts an issue tracker comment posted on repo#number
func FromIssueComment(system domain.System, repo string, number int, in *IssueComment) *Comment {
	c := &Comment{
		System: system,
		ID:     strconv.FormatInt(in.ID, 10),
		Target: repo + "#" + strconv.Itoa(number),
		Author: in.User.Login,
		Body:   in.Body,
		URL:    in.HTMLURL,
	}
	if !in.CreatedAt.IsZero() {
		t := in.CreatedAt
		c.PostedAt = &t
	}
	return c
}

// TodoistProject is a project as returned by the Todoist API
type TodoistProject struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color,omitempty"`
	IsFavorite   bool   `json:"is_favorite"`
	InboxProject bool   `json:"inbox_project"`
}
