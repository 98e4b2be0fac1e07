// Package github fetches and edits issues through the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
)

// DefaultBaseURL is the public GitHub API
const DefaultBaseURL = "https://api.github.com"

const perPage = 100

// Client implements provider.Fetcher and the issue editing calls used by writeback
type Client struct {
	api *provider.API
}

// New returns a client for baseURL authenticated with token
func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	api, err := provider.NewAPI(baseURL, token)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// System returns domain.SystemGitHub
func (c *Client) System() domain.System {
	return domain.SystemGitHub
}

// Fetch lists issues of the repository in q.Scope. Pull requests are
// returned as-is; filtering them is the caller's job.
func (c *Client) Fetch(ctx context.Context, q provider.Query) ([]provider.RawItem, error) {
	if q.Scope == "" {
		return nil, fmt.Errorf("github: repository required")
	}

	if q.ID != "" {
		number, err := strconv.Atoi(q.ID)
		if err != nil {
			return nil, fmt.Errorf("github: invalid issue number %q", q.ID)
		}
		issue, err := c.GetIssue(ctx, q.Scope, number)
		if err != nil {
			return nil, err
		}
		return []provider.RawItem{issue}, nil
	}

	var items []provider.RawItem
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("state", "all")
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))
		if q.Since != nil {
			params.Set("since", q.Since.UTC().Format(time.RFC3339))
		}

		var batch []*provider.GitHubIssue
		if err := c.api.Get(ctx, "/repos/"+provider.EscapeRepo(q.Scope)+"/issues", params, &batch); err != nil {
			return nil, err
		}
		for _, issue := range batch {
			items = append(items, issue)
		}
		if len(batch) < perPage {
			break
		}
	}
	return items, nil
}

// GetIssue fetches one issue (or pull request) by number
func (c *Client) GetIssue(ctx context.Context, repo string, number int) (*provider.GitHubIssue, error) {
	var issue provider.GitHubIssue
	if err := c.api.Get(ctx, c.issuePath(repo, number), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// IssueLabels returns the current labels of an issue, refusing pull requests
func (c *Client) IssueLabels(ctx context.Context, repo string, number int) ([]provider.Label, error) {
	issue, err := c.GetIssue(ctx, repo, number)
	if err != nil {
		return nil, err
	}
	if issue.IsPullRequest() {
		return nil, &provider.PullRequestError{System: domain.SystemGitHub, Repo: repo, Number: number}
	}
	return issue.Labels, nil
}

// ListLabels returns every label defined in the repository
func (c *Client) ListLabels(ctx context.Context, repo string) ([]provider.Label, error) {
	var all []provider.Label
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		var batch []provider.Label
		if err := c.api.Get(ctx, "/repos/"+provider.EscapeRepo(repo)+"/labels", params, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			break
		}
	}
	return all, nil
}

// CreateLabel creates a repository label
func (c *Client) CreateLabel(ctx context.Context, repo string, label provider.Label) (provider.Label, error) {
	body := map[string]string{
		"name":        label.Name,
		"color":       label.Color,
		"description": label.Description,
	}
	var created provider.Label
	err := c.api.Do(ctx, http.MethodPost, "/repos/"+provider.EscapeRepo(repo)+"/labels", nil, body, &created)
	return created, err
}

// SetLabels replaces the issue's label set. GitHub addresses labels by name.
func (c *Client) SetLabels(ctx context.Context, repo string, number int, labels []provider.Label) error {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	body := map[string][]string{"labels": names}
	return c.api.Do(ctx, http.MethodPut, c.issuePath(repo, number)+"/labels", nil, body, nil)
}

// CloseIssue closes an issue. reason is "completed" or "not_planned".
func (c *Client) CloseIssue(ctx context.Context, repo string, number int, reason string) error {
	body := map[string]string{"state": "closed"}
	if reason != "" {
		body["state_reason"] = reason
	}
	return c.api.Do(ctx, http.MethodPatch, c.issuePath(repo, number), nil, body, nil)
}

// CreateIssue opens a new issue
func (c *Client) CreateIssue(ctx context.Context, repo string, in provider.NewIssue) (provider.RawItem, error) {
	body := map[string]interface{}{
		"title": in.Title,
		"body":  in.Body,
	}
	if len(in.Labels) > 0 {
		body["labels"] = in.Labels
	}
	var issue provider.GitHubIssue
	if err := c.api.Do(ctx, http.MethodPost, "/repos/"+provider.EscapeRepo(repo)+"/issues", nil, body, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateComment posts a comment on an issue
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) (*provider.Comment, error) {
	var created provider.IssueComment
	payload := map[string]string{"body": body}
	if err := c.api.Do(ctx, http.MethodPost, c.issuePath(repo, number)+"/comments", nil, payload, &created); err != nil {
		return nil, err
	}
	return provider.FromIssueComment(domain.SystemGitHub, repo, number, &created), nil
}

func (c *Client) issuePath(repo string, number int) string {
	return fmt.Sprintf("/repos/%s/issues/%d", provider.EscapeRepo(repo), number)
}
