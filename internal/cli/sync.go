package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/reconcile"
	"github.com/lherron/todu/internal/render"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync one repository or project into the local cache",
	Long: `Fetches items from one system and upserts them into the local cache.

Modes:
  full         default, every item in the scope
  incremental  --since TIMESTAMP, items changed at or after it
  single       --issue N or --task-id ID, exactly one item

Pull requests are never cached. Remote deletions are not propagated.

Examples:
  todu sync --system github --repo acme/api
  todu sync --project api --since 2025-03-01T00:00:00Z
  todu sync --system todoist --task-id 6Xq2
  todu sync --project infra --diff`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runSync),
}

var (
	syncSystem    string
	syncRepo      string
	syncProject   string
	syncProjectID string
	syncSince     string
	syncIssue     int
	syncTaskID    string
	syncDiff      bool
	syncJSON      bool
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncSystem, "system", "", "System to sync (github, forgejo, todoist)")
	syncCmd.Flags().StringVar(&syncRepo, "repo", "", "Repository in owner/name format")
	syncCmd.Flags().StringVarP(&syncProject, "project", "p", "", "Registered project nickname")
	syncCmd.Flags().StringVar(&syncProjectID, "project-id", "", "Todoist project ID")
	syncCmd.Flags().StringVar(&syncSince, "since", "", "Only items changed since this ISO8601 timestamp")
	syncCmd.Flags().IntVar(&syncIssue, "issue", 0, "Sync a single issue by number")
	syncCmd.Flags().StringVar(&syncTaskID, "task-id", "", "Sync a single Todoist task")
	syncCmd.Flags().BoolVar(&syncDiff, "diff", false, "Print a unified diff of every changed item to stderr")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Output the result as JSON")
}

func runSync(app *appctx.App, cmd *cobra.Command, args []string) error {
	itemID := syncTaskID
	if syncIssue != 0 {
		if syncTaskID != "" {
			return domain.Invalid("cannot specify both --issue and --task-id")
		}
		itemID = strconv.Itoa(syncIssue)
	}

	req := reconcile.Request{ItemID: itemID}
	if syncSince != "" {
		since, err := domain.ValidateTimestamp(syncSince)
		if err != nil {
			return err
		}
		req.Since = &since
	}
	// reject before resolving credentials or touching the network
	if req.ItemID != "" && req.Since != nil {
		return domain.ErrConflictingModes
	}

	project, err := projectScope(app, syncProject, syncSystem, syncRepo, syncProjectID)
	if err != nil {
		return err
	}
	req.System = project.System
	req.Scope = project.Scope()
	if syncProject != "" {
		req.Nickname = syncProject
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	f, err := newClient(ctx, app.Config, req.System)
	if err != nil {
		return err
	}

	var opts []reconcile.Option
	if syncDiff {
		opts = append(opts, reconcile.WithDiff(cmd.ErrOrStderr()))
	}
	r, err := app.Reconciler(opts...)
	if err != nil {
		return err
	}

	res, err := r.Sync(ctx, f, req)
	if err != nil {
		return err
	}

	if syncJSON {
		return render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(res)
	}
	return printSyncResult(cmd, res)
}

func printSyncResult(cmd *cobra.Command, res *reconcile.Result) error {
	target := res.Scope
	if res.Nickname != "" {
		target = res.Nickname
	}
	if target == "" {
		target = "all projects"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Synced %d %s item(s) from %s (%s): %d new, %d updated\n",
		res.Synced, res.System, target, res.Mode, res.New, res.Updated)
	return err
}
