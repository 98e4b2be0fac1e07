// Package writeback pushes status and priority changes back to the source
// systems. Issue trackers carry both as status:* and priority:* labels;
// the task manager uses labels for status and its own priority field.
package writeback

import (
	"context"
	"fmt"
	"strings"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/labels"
	"github.com/lherron/todu/internal/provider"
)

// Close reasons understood by issue trackers that support them
const (
	ReasonCompleted  = "completed"
	ReasonNotPlanned = "not_planned"
)

// IssueEditor is the write surface of the GitHub and Forgejo clients
type IssueEditor interface {
	provider.Fetcher
	IssueLabels(ctx context.Context, repo string, number int) ([]provider.Label, error)
	ListLabels(ctx context.Context, repo string) ([]provider.Label, error)
	CreateLabel(ctx context.Context, repo string, label provider.Label) (provider.Label, error)
	SetLabels(ctx context.Context, repo string, number int, labels []provider.Label) error
	CloseIssue(ctx context.Context, repo string, number int, reason string) error
	CreateIssue(ctx context.Context, repo string, in provider.NewIssue) (provider.RawItem, error)
	CreateComment(ctx context.Context, repo string, number int, body string) (*provider.Comment, error)
}

// TaskEditor is the write surface of the Todoist client
type TaskEditor interface {
	GetTask(ctx context.Context, id string) (*provider.TodoistTask, error)
	CreateTask(ctx context.Context, in provider.NewTask) (*provider.TodoistTask, error)
	UpdateTask(ctx context.Context, id string, in provider.TaskUpdate) (*provider.TodoistTask, error)
	CloseTask(ctx context.Context, id string) error
	CreateComment(ctx context.Context, taskID, body string) (*provider.Comment, error)
}

// Change is a requested status/priority edit. Zero fields are left alone.
type Change struct {
	Status   domain.Status
	Priority domain.Priority
	Close    bool
	Cancel   bool
}

// resolve validates the change and folds Close/Cancel into Status.
// Cancel means status canceled plus close; Close without a status means done.
func (c Change) resolve() (Change, error) {
	if c.Status == "" && c.Priority == "" && !c.Close && !c.Cancel {
		return c, domain.Invalid("must specify at least one of: --status, --priority, --close, or --cancel")
	}
	if c.Close && c.Cancel {
		return c, domain.Invalid("cannot specify both --close and --cancel")
	}
	if c.Status != "" {
		if err := domain.ValidateStatus(string(c.Status)); err != nil {
			return c, err
		}
	}
	if c.Priority != "" {
		if err := domain.ValidatePriority(string(c.Priority)); err != nil {
			return c, err
		}
	}

	if c.Cancel {
		if c.Status != "" && c.Status != domain.StatusCanceled {
			return c, domain.Invalid("--cancel conflicts with --status %s", c.Status)
		}
		c.Status = domain.StatusCanceled
		c.Close = true
	}
	if c.Close && c.Status == "" {
		c.Status = domain.StatusDone
	}
	return c, nil
}

// required lists the labels the change needs present in the repository
func (c Change) required() []string {
	var out []string
	if c.Status != "" {
		out = append(out, labels.StatusLabel(c.Status))
	}
	if c.Priority != "" {
		out = append(out, labels.PriorityLabel(c.Priority))
	}
	return out
}

// Validate reports whether the change is acceptable without touching any provider
func (c Change) Validate() error {
	_, err := c.resolve()
	return err
}

// UpdateIssue applies the change to an issue and returns the refreshed raw issue.
// Only the label families the change touches are replaced.
func UpdateIssue(ctx context.Context, ed IssueEditor, repo string, number int, change Change) (provider.RawItem, error) {
	c, err := change.resolve()
	if err != nil {
		return nil, err
	}

	current, err := ed.IssueLabels(ctx, repo, number)
	if err != nil {
		return nil, err
	}

	ensured, err := EnsureLabels(ctx, ed, repo, c.required())
	if err != nil {
		return nil, err
	}

	next := make([]provider.Label, 0, len(current)+len(ensured))
	for _, l := range current {
		if c.Status != "" && labels.InFamily(l.Name, labels.FamilyStatus) {
			continue
		}
		if c.Priority != "" && labels.InFamily(l.Name, labels.FamilyPriority) {
			continue
		}
		next = append(next, l)
	}
	next = append(next, ensured...)

	if err := ed.SetLabels(ctx, repo, number, next); err != nil {
		return nil, fmt.Errorf("set labels on %s#%d: %w", repo, number, err)
	}

	if c.Close {
		reason := ReasonCompleted
		if c.Status == domain.StatusCanceled {
			reason = ReasonNotPlanned
		}
		if err := ed.CloseIssue(ctx, repo, number, reason); err != nil {
			return nil, fmt.Errorf("close %s#%d: %w", repo, number, err)
		}
	}

	return refetch(ctx, ed, repo, number)
}

// EnsureLabels returns the named labels, creating any missing ones with the
// status/priority colour scheme.
func EnsureLabels(ctx context.Context, ed IssueEditor, repo string, names []string) ([]provider.Label, error) {
	if len(names) == 0 {
		return nil, nil
	}
	existing, err := ed.ListLabels(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("list labels for %s: %w", repo, err)
	}
	byName := make(map[string]provider.Label, len(existing))
	for _, l := range existing {
		byName[l.Name] = l
	}

	out := make([]provider.Label, 0, len(names))
	for _, name := range names {
		if l, ok := byName[name]; ok {
			out = append(out, l)
			continue
		}
		created, err := ed.CreateLabel(ctx, repo, provider.Label{
			Name:        name,
			Color:       labels.Color(name),
			Description: "Auto-created label for " + name,
		})
		if err != nil {
			return nil, fmt.Errorf("create label %s in %s: %w", name, repo, err)
		}
		if created.Name == "" {
			created.Name = name
		}
		byName[name] = created
		out = append(out, created)
	}
	return out, nil
}

// CreateIssue opens an issue and returns the raw issue as created
func CreateIssue(ctx context.Context, ed IssueEditor, repo string, in provider.NewIssue) (provider.RawItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Invalid("title is required")
	}
	if repo == "" {
		return nil, domain.Invalid("repository is required")
	}
	return ed.CreateIssue(ctx, repo, in)
}

// CreateTask creates a task. A priority:<v> (or bare <v>) argument becomes
// the provider priority; no priority means 1.
func CreateTask(ctx context.Context, ed TaskEditor, in provider.NewTask, priority string) (*provider.TodoistTask, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.Invalid("title is required")
	}
	in.Priority = 1
	if priority != "" {
		p := labels.ParsePriorityArg(priority)
		if err := domain.ValidatePriority(p); err != nil {
			return nil, err
		}
		in.Priority = labels.TodoistPriority(domain.Priority(p))
	}
	return ed.CreateTask(ctx, in)
}

// UpdateTask applies the change to a task. Status travels as a label;
// done and canceled also close the task.
func UpdateTask(ctx context.Context, ed TaskEditor, id string, change Change) (*provider.TodoistTask, error) {
	c, err := change.resolve()
	if err != nil {
		return nil, err
	}

	var update provider.TaskUpdate
	if c.Status != "" {
		task, err := ed.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		update.Labels = labels.ReplaceFamily(task.Labels, labels.FamilyStatus, labels.StatusLabel(c.Status))
	}
	if c.Priority != "" {
		n := labels.TodoistPriority(c.Priority)
		update.Priority = &n
	}

	if update.Labels != nil || update.Priority != nil {
		if _, err := ed.UpdateTask(ctx, id, update); err != nil {
			return nil, fmt.Errorf("update task %s: %w", id, err)
		}
	}

	if c.Close || c.Status == domain.StatusDone || c.Status == domain.StatusCanceled {
		if err := ed.CloseTask(ctx, id); err != nil {
			return nil, fmt.Errorf("close task %s: %w", id, err)
		}
	}

	return ed.GetTask(ctx, id)
}

// CommentOnIssue posts body as a comment on repo#number
func CommentOnIssue(ctx context.Context, ed IssueEditor, repo string, number int, body string) (*provider.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, domain.Invalid("comment body is required")
	}
	if repo == "" {
		return nil, domain.Invalid("repository is required")
	}
	if number <= 0 {
		return nil, domain.Invalid("issue number must be positive, got %d", number)
	}
	c, err := ed.CreateComment(ctx, repo, number, body)
	if err != nil {
		return nil, fmt.Errorf("comment on %s#%d: %w", repo, number, err)
	}
	return c, nil
}

// CommentOnTask posts body as a comment on task id
func CommentOnTask(ctx context.Context, ed TaskEditor, id, body string) (*provider.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, domain.Invalid("comment body is required")
	}
	if id == "" {
		return nil, domain.Invalid("task id is required")
	}
	c, err := ed.CreateComment(ctx, id, body)
	if err != nil {
		return nil, fmt.Errorf("comment on task %s: %w", id, err)
	}
	return c, nil
}

func refetch(ctx context.Context, f provider.Fetcher, repo string, number int) (provider.RawItem, error) {
	items, err := f.Fetch(ctx, provider.Query{Scope: repo, ID: fmt.Sprint(number)})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s#%d not found after update", repo, number)
	}
	return items[0], nil
}
