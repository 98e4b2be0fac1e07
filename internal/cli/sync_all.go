package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/reconcile"
	"github.com/lherron/todu/internal/registry"
	"github.com/lherron/todu/internal/render"
)

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Sync every registered project",
	Long: `Runs a full sync of every project in the registry, a few at a time.
A project that fails does not stop the others; the command exits non-zero
when any project failed.

Examples:
  todu sync-all
  todu sync-all --verbose
  todu sync-all --json`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runSyncAll),
}

var (
	syncAllVerbose bool
	syncAllJSON    bool
)

func init() {
	rootCmd.AddCommand(syncAllCmd)

	syncAllCmd.Flags().BoolVarP(&syncAllVerbose, "verbose", "v", false, "Print progress to stderr")
	syncAllCmd.Flags().BoolVar(&syncAllJSON, "json", false, "Output the summary as JSON")
}

func runSyncAll(app *appctx.App, cmd *cobra.Command, args []string) error {
	reg, err := app.Registry()
	if err != nil {
		return err
	}
	entries := reg.Sorted()
	if len(entries) == 0 {
		return fmt.Errorf("no projects registered; add one with 'todu projects register'")
	}

	r, err := app.Reconciler()
	if err != nil {
		return err
	}

	var progress reconcile.Progress
	if syncAllVerbose {
		progress = func(e registry.Entry) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Syncing %s (%s %s)...\n", e.Nickname, e.System, e.Scope())
		}
	}

	ctx := commandContext(cmd)
	summary := r.SyncAll(ctx, entries, fetcherFactory(ctx, app), progress)

	if syncAllJSON {
		if err := render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(summary); err != nil {
			return err
		}
		return summary.Err()
	}

	out := cmd.OutOrStdout()
	for _, res := range summary.Results {
		if res.Success {
			fmt.Fprintf(out, "✓ %s (%s): %d synced, %d new, %d updated\n", res.Nickname, res.System, res.Synced, res.New, res.Updated)
		} else {
			fmt.Fprintf(out, "✗ %s (%s): %s\n", res.Nickname, res.System, res.Error)
		}
	}
	fmt.Fprintf(out, "\n%d of %d projects synced: %d items, %d new, %d updated\n",
		summary.Successful, summary.TotalProjects, summary.TotalSynced, summary.TotalNew, summary.TotalUpdated)

	return summary.Err()
}
