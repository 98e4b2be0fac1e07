package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/render"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Displays version, commit, and build date information.`,
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

var versionJSON bool

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output as JSON")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if versionJSON {
		output := map[string]interface{}{
			"version":    Version,
			"commit":     GitCommit,
			"build_date": BuildDate,
			"systems": []domain.System{
				domain.SystemGitHub, domain.SystemForgejo, domain.SystemTodoist,
			},
			"supported_formats": render.Formats,
		}
		return render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(output)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "todu version %s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", GitCommit)
	fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", BuildDate)
	return nil
}
