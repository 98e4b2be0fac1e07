package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/events"
	"github.com/lherron/todu/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs",
	Long: `Lists sync passes recorded in the local history database, newest first.
Both successful and failed passes are recorded.

Examples:
  todu history
  todu history --system todoist --limit 5
  todu history --json`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.WithDB(), runHistory),
}

var (
	historySystem string
	historyLimit  int
	historyJSON   bool
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historySystem, "system", "", "Only runs for this system")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
}

func runHistory(app *appctx.App, cmd *cobra.Command, args []string) error {
	if historySystem != "" {
		if err := domain.ValidateSystem(historySystem); err != nil {
			return err
		}
	}
	if historyLimit < 0 {
		return domain.Invalid("--limit must not be negative")
	}

	runs, err := app.Ledger().ListRuns(events.RunFilter{
		System: domain.System(historySystem),
		Limit:  historyLimit,
	})
	if err != nil {
		return err
	}

	r := render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: render.FormatTable})
	if historyJSON {
		if runs == nil {
			runs = []events.Run{}
		}
		return r.RenderJSON(runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No sync runs recorded.")
		return err
	}

	rows := make([][]string, len(runs))
	for i := range runs {
		run := &runs[i]
		result := "ok"
		if !run.Succeeded() {
			result = render.Truncate(run.Error, 50)
		}
		target := run.Scope
		if run.Nickname != "" {
			target = run.Nickname
		}
		rows[i] = []string{
			run.StartedAt.In(app.Location).Format("2006-01-02 15:04:05"),
			string(run.System),
			target,
			string(run.Mode),
			strconv.Itoa(run.Total),
			strconv.Itoa(run.New),
			strconv.Itoa(run.Updated),
			run.Duration().Round(time.Millisecond).String(),
			result,
		}
	}
	return r.RenderTable([]string{"STARTED", "SYSTEM", "TARGET", "MODE", "TOTAL", "NEW", "UPDATED", "TOOK", "RESULT"}, rows)
}
