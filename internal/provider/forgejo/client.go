// Package forgejo fetches and edits issues through the Forgejo (Gitea-compatible) API.
package forgejo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
)

const pageLimit = 50

// Client implements provider.Fetcher and the issue editing calls used by writeback
type Client struct {
	api *provider.API
}

// New returns a client for the instance at baseURL (without the /api/v1 suffix)
func New(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("forgejo: base URL not configured (set FORGEJO_URL)")
	}
	api, err := provider.NewAPI(strings.TrimRight(baseURL, "/")+"/api/v1", token)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// System returns domain.SystemForgejo
func (c *Client) System() domain.System {
	return domain.SystemForgejo
}

// Fetch lists issues of the repository in q.Scope, paging until an empty page
func (c *Client) Fetch(ctx context.Context, q provider.Query) ([]provider.RawItem, error) {
	if q.Scope == "" {
		return nil, fmt.Errorf("forgejo: repository required")
	}

	if q.ID != "" {
		number, err := strconv.Atoi(q.ID)
		if err != nil {
			return nil, fmt.Errorf("forgejo: invalid issue number %q", q.ID)
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
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(pageLimit))
		if q.Since != nil {
			params.Set("since", q.Since.UTC().Format(time.RFC3339))
		}

		var batch []*provider.ForgejoIssue
		if err := c.api.Get(ctx, "/repos/"+provider.EscapeRepo(q.Scope)+"/issues", params, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		for _, issue := range batch {
			items = append(items, issue)
		}
	}
	return items, nil
}

// GetIssue fetches one issue (or pull request) by number
func (c *Client) GetIssue(ctx context.Context, repo string, number int) (*provider.ForgejoIssue, error) {
	var issue provider.ForgejoIssue
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
		return nil, &provider.PullRequestError{System: domain.SystemForgejo, Repo: repo, Number: number}
	}
	return issue.Labels, nil
}

// ListLabels returns every label defined in the repository
func (c *Client) ListLabels(ctx context.Context, repo string) ([]provider.Label, error) {
	var all []provider.Label
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(pageLimit))

		var batch []provider.Label
		if err := c.api.Get(ctx, "/repos/"+provider.EscapeRepo(repo)+"/labels", params, &batch); err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

// CreateLabel creates a repository label. Forgejo wants the colour with a leading #.
func (c *Client) CreateLabel(ctx context.Context, repo string, label provider.Label) (provider.Label, error) {
	body := map[string]string{
		"name":        label.Name,
		"color":       "#" + strings.TrimPrefix(label.Color, "#"),
		"description": label.Description,
	}
	var created provider.Label
	err := c.api.Do(ctx, http.MethodPost, "/repos/"+provider.EscapeRepo(repo)+"/labels", nil, body, &created)
	return created, err
}

// SetLabels replaces the issue's label set. Forgejo addresses labels by id.
func (c *Client) SetLabels(ctx context.Context, repo string, number int, labels []provider.Label) error {
	ids := make([]int64, 0, len(labels))
	for _, l := range labels {
		if l.ID == 0 {
			return fmt.Errorf("forgejo: label %q has no id", l.Name)
		}
		ids = append(ids, l.ID)
	}
	body := map[string][]int64{"labels": ids}
	return c.api.Do(ctx, http.MethodPut, c.issuePath(repo, number)+"/labels", nil, body, nil)
}

// CloseIssue closes an issue. Forgejo has no close reason; it is ignored.
func (c *Client) CloseIssue(ctx context.Context, repo string, number int, _ string) error {
	body := map[string]string{"state": "closed"}
	return c.api.Do(ctx, http.MethodPatch, c.issuePath(repo, number), nil, body, nil)
}

// CreateIssue opens a new issue, resolving label names to ids
func (c *Client) CreateIssue(ctx context.Context, repo string, in provider.NewIssue) (provider.RawItem, error) {
	body := map[string]interface{}{
		"title": in.Title,
		"body":  in.Body,
	}
	if len(in.Labels) > 0 {
		existing, err := c.ListLabels(ctx, repo)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]int64, len(existing))
		for _, l := range existing {
			byName[l.Name] = l.ID
		}
		var ids []int64
		for _, name := range in.Labels {
			if id, ok := byName[name]; ok {
				ids = append(ids, id)
			}
		}
		body["labels"] = ids
	}

	var issue provider.ForgejoIssue
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
	return provider.FromIssueComment(domain.SystemForgejo, repo, number, &created), nil
}

func (c *Client) issuePath(repo string, number int) string {
	return fmt.Sprintf("/repos/%s/issues/%d", provider.EscapeRepo(repo), number)
}

// DetectBaseURL derives the instance URL from the origin remote of the
// repository in the current directory. Returns "" when it cannot.
func DetectBaseURL(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "git", "remote", "get-url", "origin").Output()
	if err != nil {
		return ""
	}
	return BaseURLFromRemote(strings.TrimSpace(string(out)))
}

// BaseURLFromRemote maps a git remote URL to an https base URL.
// Handles ssh://git@host/owner/repo, git@host:owner/repo and http(s) remotes.
func BaseURLFromRemote(remote string) string {
	switch {
	case strings.HasPrefix(remote, "ssh://"):
		u, err := url.Parse(remote)
		if err != nil || u.Hostname() == "" {
			return ""
		}
		return "https://" + u.Hostname()
	case strings.HasPrefix(remote, "git@"):
		host, _, ok := strings.Cut(strings.TrimPrefix(remote, "git@"), ":")
		if !ok || host == "" {
			return ""
		}
		return "https://" + host
	case strings.HasPrefix(remote, "http://"), strings.HasPrefix(remote, "https://"):
		u, err := url.Parse(remote)
		if err != nil || u.Host == "" {
			return ""
		}
		return u.Scheme + "://" + u.Host
	}
	return ""
}
