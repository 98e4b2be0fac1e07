// Package todoist fetches and edits tasks through the Todoist API (v1).
package todoist

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
)

// DefaultBaseURL is the public Todoist API host
const DefaultBaseURL = "https://api.todoist.com"

const pageLimit = 200

// Client implements provider.Fetcher and the task editing calls used by writeback
type Client struct {
	api *provider.API
}

type taskPage struct {
	Results    []*provider.TodoistTask `json:"results"`
	NextCursor *string                 `json:"next_cursor"`
}

// New returns a client for baseURL authenticated with token
func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	api, err := provider.NewAPI(baseURL+"/api/v1", token)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// System returns domain.SystemTodoist
func (c *Client) System() domain.System {
	return domain.SystemTodoist
}

// Fetch lists active tasks, optionally scoped to the project in q.Scope.
// The API has no server-side "since" filter, so q.Since is applied here
// against updated_at (added_at when the task was never updated).
func (c *Client) Fetch(ctx context.Context, q provider.Query) ([]provider.RawItem, error) {
	if q.ID != "" {
		task, err := c.GetTask(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		return []provider.RawItem{task}, nil
	}

	var items []provider.RawItem
	cursor := ""
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageLimit))
		if q.Scope != "" {
			params.Set("project_id", q.Scope)
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page taskPage
		if err := c.api.Get(ctx, "/tasks", params, &page); err != nil {
			return nil, err
		}
		for _, task := range page.Results {
			if q.Since != nil && !changedSince(task, *q.Since) {
				continue
			}
			items = append(items, task)
		}
		if page.NextCursor == nil || *page.NextCursor == "" {
			break
		}
		cursor = *page.NextCursor
	}
	return items, nil
}

func changedSince(task *provider.TodoistTask, since time.Time) bool {
	switch {
	case task.UpdatedAt != nil:
		return !task.UpdatedAt.Before(since)
	case task.AddedAt != nil:
		return !task.AddedAt.Before(since)
	}
	return true
}

// GetTask fetches one task by id
func (c *Client) GetTask(ctx context.Context, id string) (*provider.TodoistTask, error) {
	var task provider.TodoistTask
	if err := c.api.Get(ctx, "/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask adds a task
func (c *Client) CreateTask(ctx context.Context, in provider.NewTask) (*provider.TodoistTask, error) {
	var task provider.TodoistTask
	if err := c.api.Do(ctx, http.MethodPost, "/tasks", nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask changes labels and/or priority of a task
func (c *Client) UpdateTask(ctx context.Context, id string, in provider.TaskUpdate) (*provider.TodoistTask, error) {
	var task provider.TodoistTask
	if err := c.api.Do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id), nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CloseTask completes a task
func (c *Client) CloseTask(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/close", nil, nil, nil)
}

// CreateComment adds a comment to a task
func (c *Client) CreateComment(ctx context.Context, taskID, body string) (*provider.Comment, error) {
	payload := map[string]string{"task_id": taskID, "content": body}
	var created provider.TodoistComment
	if err := c.api.Do(ctx, http.MethodPost, "/comments", nil, payload, &created); err != nil {
		return nil, err
	}
	return &provider.Comment{
		System:   domain.SystemTodoist,
		ID:       created.ID,
		Target:   taskID,
		Body:     created.Content,
		PostedAt: created.PostedAt,
	}, nil
}

type projectPage struct {
	Results    []provider.TodoistProject `json:"results"`
	NextCursor *string                   `json:"next_cursor"`
}

// ListProjects returns every project visible to the token
func (c *Client) ListProjects(ctx context.Context) ([]provider.TodoistProject, error) {
	var all []provider.TodoistProject
	cursor := ""
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageLimit))
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		var page projectPage
		if err := c.api.Get(ctx, "/projects", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if page.NextCursor == nil || *page.NextCursor == "" {
			break
		}
		cursor = *page.NextCursor
	}
	return all, nil
}
