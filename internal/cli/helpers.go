package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/config"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
	"github.com/lherron/todu/internal/provider/forgejo"
	"github.com/lherron/todu/internal/provider/github"
	"github.com/lherron/todu/internal/provider/todoist"
	"github.com/lherron/todu/internal/reconcile"
	"github.com/lherron/todu/internal/writeback"
)

// newClient builds the provider client for a system. The token is checked
// before anything touches the network. Tests replace it.
var newClient = func(ctx context.Context, cfg *config.Config, system domain.System) (provider.Fetcher, error) {
	if err := domain.ValidateSystem(string(system)); err != nil {
		return nil, err
	}
	token, err := cfg.Token(system)
	if err != nil {
		return nil, err
	}
	base, err := cfg.BaseURL(ctx, system)
	if err != nil {
		return nil, err
	}

	var c provider.Fetcher
	switch system {
	case domain.SystemGitHub:
		c, err = github.New(base, token)
	case domain.SystemForgejo:
		c, err = forgejo.New(base, token)
	default:
		c, err = todoist.New(base, token)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// fetcherFactory adapts newClient for SyncAll
func fetcherFactory(ctx context.Context, app *appctx.App) reconcile.FetcherFactory {
	return func(system domain.System) (provider.Fetcher, error) {
		return newClient(ctx, app.Config, system)
	}
}

func issueEditor(ctx context.Context, app *appctx.App, system domain.System) (writeback.IssueEditor, error) {
	if system == domain.SystemTodoist {
		return nil, domain.Invalid("todoist items are tasks; use --task-id")
	}
	c, err := newClient(ctx, app.Config, system)
	if err != nil {
		return nil, err
	}
	ed, ok := c.(writeback.IssueEditor)
	if !ok {
		return nil, fmt.Errorf("%s client cannot edit issues", system)
	}
	return ed, nil
}

func taskEditor(ctx context.Context, app *appctx.App) (writeback.TaskEditor, provider.Fetcher, error) {
	c, err := newClient(ctx, app.Config, domain.SystemTodoist)
	if err != nil {
		return nil, nil, err
	}
	ed, ok := c.(writeback.TaskEditor)
	if !ok {
		return nil, nil, fmt.Errorf("todoist client cannot edit tasks")
	}
	return ed, c, nil
}

// projectScope resolves --project against the registry, or validates the
// explicit --system/--repo/--project-id flags.
func projectScope(app *appctx.App, nickname string, system, repo, projectID string) (domain.Project, error) {
	if nickname != "" {
		if system != "" || repo != "" || projectID != "" {
			return domain.Project{}, domain.Invalid("--project cannot be combined with --system, --repo or --project-id")
		}
		reg, err := app.Registry()
		if err != nil {
			return domain.Project{}, err
		}
		return reg.Get(nickname)
	}

	if system == "" {
		return domain.Project{}, domain.Invalid("specify --project or --system")
	}
	if err := domain.ValidateSystem(system); err != nil {
		return domain.Project{}, err
	}
	p := domain.Project{System: domain.System(system), Repo: repo, ProjectID: projectID}
	if p.System != domain.SystemTodoist && repo == "" {
		return domain.Project{}, domain.Invalid("--repo is required for %s", system)
	}
	return p, nil
}

// splitList parses a comma-separated flag, dropping blanks
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// refresh runs a single-mode pass for one item so the cache reflects a write
// immediately. Its failure is returned, not swallowed.
func refresh(ctx context.Context, app *appctx.App, f provider.Fetcher, scope, id string) (*reconcile.Result, error) {
	r, err := app.Reconciler()
	if err != nil {
		return nil, err
	}
	res, err := r.Sync(ctx, f, reconcile.Request{System: f.System(), Scope: scope, ItemID: id})
	if err != nil {
		return nil, fmt.Errorf("refresh cache: %w", err)
	}
	return res, nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// expandPath resolves a leading ~ against the home directory
func expandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
