package cli

import (
	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/query"
	"github.com/lherron/todu/internal/render"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List cached items across all systems",
	Long: `Lists items from the local cache, newest first. Filters combine with AND;
--labels matches items carrying any of the given labels.

Examples:
  todu list
  todu list --system github --status in-progress
  todu list --assignee alice --labels bug,urgent
  todu list --project-id 2203306141 --format markdown`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.CacheOnly(), runList),
}

var (
	listSystem    string
	listStatus    string
	listAssignee  string
	listLabels    string
	listProjectID string
	listFormat    string
	listPorcelain bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listSystem, "system", "", "Filter by system")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&listAssignee, "assignee", "", "Filter by assignee username")
	listCmd.Flags().StringVar(&listLabels, "labels", "", "Comma-separated labels, any of which must match")
	listCmd.Flags().StringVar(&listProjectID, "project-id", "", "Filter by Todoist project ID")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "", "Output format: table, json, ndjson, yaml, markdown (default from config)")
	listCmd.Flags().BoolVar(&listPorcelain, "porcelain", false, "Machine-readable output")
}

func runList(app *appctx.App, cmd *cobra.Command, args []string) error {
	filter := query.Filter{
		System:    domain.System(listSystem),
		Status:    domain.Status(listStatus),
		Assignee:  listAssignee,
		Labels:    splitList(listLabels),
		ProjectID: listProjectID,
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	formatName := listFormat
	if formatName == "" {
		formatName = app.Config.Output
	}
	if formatName == "" {
		formatName = string(render.FormatTable)
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		return err
	}

	items, err := app.Store.ListAll(filter.Match)
	if err != nil {
		return err
	}
	query.SortByRecency(items)

	return render.NewRenderer(cmd.OutOrStdout(), render.Options{
		Format:    format,
		Porcelain: listPorcelain,
		MaxWidth:  60,
	}).RenderItems(items)
}
