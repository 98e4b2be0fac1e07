package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "todu",
	Short: "Aggregate issues and tasks from GitHub, Forgejo and Todoist",
	Long: `todu syncs issues and tasks from GitHub, Forgejo and Todoist into one
local cache of normalized items, then lists, filters and reports on them
across systems. Status and priority travel as status:* and priority:*
labels so they can be written back to every system.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache root directory (overrides TODU_CACHE_DIR)")
	rootCmd.PersistentFlags().String("db", "", "Path to sync history database (overrides TODU_DB_PATH)")
	rootCmd.PersistentFlags().String("tz", "", "Timezone for reports, e.g. America/New_York (overrides TODU_TZ)")
}
