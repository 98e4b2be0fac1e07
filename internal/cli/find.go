package cli

import (
	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/render"
)

var findCmd = &cobra.Command{
	Use:   "find <id>",
	Short: "Look up one cached item by its id",
	Long: `Finds the cached item with the given provider id: an issue number or a
Todoist task id. When the same id exists in several systems or repositories
the matches are listed; narrow with --system.

Examples:
  todu find 42
  todu find 42 --system forgejo
  todu find 6Xq2 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.CacheOnly(), runFind),
}

var (
	findSystem string
	findFormat string
)

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringVar(&findSystem, "system", "", "Restrict the lookup to one system")
	findCmd.Flags().StringVarP(&findFormat, "format", "f", "yaml", "Output format: table, json, ndjson, yaml, markdown")
}

func runFind(app *appctx.App, cmd *cobra.Command, args []string) error {
	if findSystem != "" {
		if err := domain.ValidateSystem(findSystem); err != nil {
			return err
		}
	}
	format, err := render.ParseFormat(findFormat)
	if err != nil {
		return err
	}

	item, err := app.Store.FindByID(args[0], domain.System(findSystem))
	if err != nil {
		return err
	}

	r := render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format})
	switch format {
	case render.FormatJSON:
		return r.RenderJSON(item)
	case render.FormatYAML:
		return r.RenderYAML(item)
	default:
		return r.RenderItems([]domain.Item{*item})
	}
}
