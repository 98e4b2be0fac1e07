// Package normalize maps raw provider items onto the canonical domain.Item.
// Every function here is pure: no I/O, no clock.
package normalize

import (
	"fmt"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/labels"
	"github.com/lherron/todu/internal/provider"
)

// Source is the context a raw item was fetched in
type Source struct {
	// Repo is the "owner/name" repository for issue trackers
	Repo string
}

// Item dispatches on the raw shape
func Item(raw provider.RawItem, src Source) (domain.Item, error) {
	switch v := raw.(type) {
	case *provider.GitHubIssue:
		return GitHub(v, src.Repo), nil
	case *provider.ForgejoIssue:
		return Forgejo(v, src.Repo), nil
	case *provider.TodoistTask:
		return Todoist(v), nil
	case nil:
		return domain.Item{}, fmt.Errorf("normalize: nil item")
	default:
		return domain.Item{}, fmt.Errorf("normalize: unsupported item type %T", raw)
	}
}

// Timestamp formats t the way every canonical timestamp is stored
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func timestampPtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := Timestamp(*t)
	return &s
}

// issueStatus applies label precedence over the open/closed state
func issueStatus(names []string, state string) domain.Status {
	if s, ok := labels.Status(names); ok {
		return s
	}
	if state == "closed" {
		return domain.StatusClosed
	}
	return domain.StatusOpen
}

func labelNames(in []provider.Label) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		out = append(out, l.Name)
	}
	return out
}

func logins(in []provider.User) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		out = append(out, u.Login)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type issueFields struct {
	system      domain.System
	repo        string
	number      int
	title       string
	body        *string
	state       string
	stateReason *string
	url         string
	labels      []provider.Label
	assignees   []provider.User
	createdAt   time.Time
	updatedAt   time.Time
	closedAt    *time.Time
	due         *time.Time
}

func issue(f issueFields) domain.Item {
	names := labelNames(f.labels)
	status := issueStatus(names, f.state)
	priority, _ := labels.Priority(names)

	item := domain.Item{
		ID:          fmt.Sprintf("%d", f.number),
		System:      f.system,
		Type:        domain.ItemTypeIssue,
		Title:       f.title,
		Description: deref(f.body),
		Status:      status,
		Priority:    priority,
		DueDate:     timestampPtr(f.due),
		CreatedAt:   Timestamp(f.createdAt),
		UpdatedAt:   Timestamp(f.updatedAt),
		Labels:      names,
		Assignees:   logins(f.assignees),
		URL:         f.url,
		SystemData: domain.SystemData{
			Repo:        f.repo,
			Number:      f.number,
			State:       f.state,
			StateReason: f.stateReason,
		},
	}
	if status.IsTerminal() {
		if c := timestampPtr(f.closedAt); c != nil {
			item.CompletedAt = c
		} else {
			updated := item.UpdatedAt
			item.CompletedAt = &updated
		}
	}
	return item
}

// GitHub normalizes a GitHub issue fetched from repo
func GitHub(in *provider.GitHubIssue, repo string) domain.Item {
	return issue(issueFields{
		system:      domain.SystemGitHub,
		repo:        repo,
		number:      in.Number,
		title:       in.Title,
		body:        in.Body,
		state:       in.State,
		stateReason: in.StateReason,
		url:         in.HTMLURL,
		labels:      in.Labels,
		assignees:   in.Assignees,
		createdAt:   in.CreatedAt,
		updatedAt:   in.UpdatedAt,
		closedAt:    in.ClosedAt,
	})
}

// Forgejo normalizes a Forgejo issue fetched from repo. Unlike GitHub,
// Forgejo issues can carry a due date.
func Forgejo(in *provider.ForgejoIssue, repo string) domain.Item {
	return issue(issueFields{
		system:      domain.SystemForgejo,
		repo:        repo,
		number:      in.Number,
		title:       in.Title,
		body:        in.Body,
		state:       in.State,
		stateReason: in.StateReason,
		url:         in.HTMLURL,
		labels:      in.Labels,
		assignees:   in.Assignees,
		createdAt:   in.CreatedAt,
		updatedAt:   in.UpdatedAt,
		closedAt:    in.ClosedAt,
		due:         in.DueDate,
	})
}

// Todoist normalizes a Todoist task. The numeric provider priority is
// mirrored into the priority:* label family so both views agree.
func Todoist(in *provider.TodoistTask) domain.Item {
	names := make([]string, 0, len(in.Labels)+1)
	names = append(names, in.Labels...)

	priority := labels.FromTodoistPriority(in.Priority)
	if pl := labels.PriorityLabel(priority); pl != "" && !contains(names, pl) {
		names = append(names, pl)
	}
	if priority == domain.PriorityNone {
		priority, _ = labels.Priority(names)
	}

	var status domain.Status
	switch {
	case in.Checked && contains(names, labels.StatusLabel(domain.StatusCanceled)):
		status = domain.StatusCanceled
	case in.Checked:
		status = domain.StatusDone
	default:
		if s, ok := labels.Status(names); ok {
			status = s
		} else {
			status = domain.StatusOpen
		}
	}

	created := ""
	if in.AddedAt != nil {
		created = Timestamp(*in.AddedAt)
	}
	updated := created
	if in.UpdatedAt != nil {
		updated = Timestamp(*in.UpdatedAt)
	}

	var due *string
	if v := in.DueValue(); v != "" {
		due = &v
	}

	item := domain.Item{
		ID:          in.ID,
		System:      domain.SystemTodoist,
		Type:        domain.ItemTypeTask,
		Title:       in.Content,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
		CreatedAt:   created,
		UpdatedAt:   updated,
		Labels:      names,
		Assignees:   []string{},
		URL:         in.TaskURL(),
		SystemData: domain.SystemData{
			ProjectID:   in.ProjectID,
			Priority:    in.Priority,
			Due:         due,
			IsCompleted: in.Checked,
		},
	}
	if status.IsTerminal() {
		if c := timestampPtr(in.CompletedAt); c != nil {
			item.CompletedAt = c
		} else if updated != "" {
			u := updated
			item.CompletedAt = &u
		}
	}
	return item
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
