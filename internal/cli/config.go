package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cli/appctx"
	"github.com/lherron/todu/internal/config"
	"github.com/lherron/todu/internal/db"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration and validate settings",
	Long: `Displays the effective configuration values and their sources, and checks
that the cache directory exists and which provider tokens are set. Token
values are never printed.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.CacheOnly(), runConfig),
}

var configJSON bool

type configValue struct {
	Value  string `json:"value"`
	Source string `json:"source"`
	Valid  bool   `json:"valid"`
	Note   string `json:"note,omitempty"`
}

type configReport struct {
	Config   map[string]configValue `json:"config"`
	Warnings []string               `json:"warnings"`
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configJSON, "json", false, "Output as JSON")
}

// source names where a setting came from: flag, environment, or file/default
func source(cmd *cobra.Command, flag string, envVars ...string) string {
	if flag != "" {
		if f := cmd.Flag(flag); f != nil && f.Changed {
			return "command-line flag --" + flag
		}
	}
	for _, v := range envVars {
		if os.Getenv(v) != "" {
			return "environment variable " + v
		}
	}
	return "config file or default"
}

func runConfig(app *appctx.App, cmd *cobra.Command, args []string) error {
	cfg := app.Config
	report := &configReport{
		Config:   make(map[string]configValue),
		Warnings: []string{},
	}

	cacheValue := configValue{
		Value:  cfg.CacheDir,
		Source: source(cmd, "cache-dir", "TODU_CACHE_DIR", "TODU_CACHE_DIR_FILE"),
	}
	if info, err := os.Stat(cfg.CacheDir); err == nil && info.IsDir() {
		cacheValue.Valid = true
	} else if err == nil {
		cacheValue.Note = "Path exists but is not a directory"
		report.Warnings = append(report.Warnings, "Cache path is not a directory")
	} else {
		cacheValue.Note = "Directory does not exist"
		report.Warnings = append(report.Warnings, "Cache directory does not exist - run 'todu sync' to create it")
	}
	report.Config["cache_dir"] = cacheValue

	dbValue := configValue{
		Value:  cfg.DBPath,
		Source: source(cmd, "db", "TODU_DB_PATH", "TODU_DB_PATH_FILE"),
		Valid:  true,
	}
	if _, err := os.Stat(cfg.DBPath); err != nil {
		dbValue.Note = "Not created yet"
	} else if database, err := db.Open(cfg.DBPath); err != nil {
		dbValue.Valid = false
		dbValue.Note = fmt.Sprintf("File exists but failed to open: %v", err)
		report.Warnings = append(report.Warnings, "Sync history database cannot be opened")
	} else {
		if _, pending, err := database.MigrationStatus(); err != nil {
			dbValue.Note = fmt.Sprintf("Failed to read migrations: %v", err)
		} else if len(pending) > 0 {
			dbValue.Note = fmt.Sprintf("%d migration(s) pending; applied on next sync", len(pending))
		}
		database.Close()
	}
	report.Config["db_path"] = dbValue

	report.Config["timezone"] = configValue{
		Value:  app.Location.String(),
		Source: source(cmd, "tz", "TODU_TZ"),
		Valid:  true,
	}
	report.Config["output"] = configValue{Value: cfg.Output, Source: source(cmd, "", "TODU_OUTPUT"), Valid: true}
	report.Config["log_level"] = configValue{Value: cfg.LogLevel, Source: source(cmd, "", "TODU_LOG_LEVEL"), Valid: true}
	report.Config["sync_timeout"] = configValue{Value: cfg.SyncTimeout, Source: source(cmd, "", "TODU_SYNC_TIMEOUT"), Valid: true}
	report.Config["sync_concurrency"] = configValue{
		Value:  fmt.Sprint(cfg.SyncConcurrency),
		Source: source(cmd, "", "TODU_SYNC_CONCURRENCY"),
		Valid:  true,
	}

	for _, system := range domain.Systems {
		v := configValue{Value: "(set)", Valid: true}
		if _, err := cfg.Token(system); err != nil {
			v = configValue{Value: "(not set)", Note: err.Error()}
			report.Warnings = append(report.Warnings, fmt.Sprintf("No %s token - %s sync and writes will fail", system, system))
		}
		v.Source = source(cmd, "", config.TokenEnv(system), config.TokenEnv(system)+"_FILE")
		report.Config[string(system)+"_token"] = v
	}

	forgejoURL := configValue{Value: cfg.ForgejoURL, Source: source(cmd, "", "FORGEJO_URL"), Valid: true}
	if cfg.ForgejoURL == "" {
		forgejoURL.Value = "(detect from git remote)"
	}
	report.Config["forgejo_url"] = forgejoURL

	if configJSON {
		return render.NewRenderer(cmd.OutOrStdout(), render.Options{}).RenderJSON(report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration Report")
	fmt.Fprintln(out, "====================")
	fmt.Fprintln(out)

	keys := make([]string, 0, len(report.Config))
	for k := range report.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := report.Config[k]
		fmt.Fprintf(out, "%s: %s\n", k, v.Value)
		fmt.Fprintf(out, "    Source: %s\n", v.Source)
		switch {
		case v.Valid && v.Note != "":
			fmt.Fprintf(out, "    Status: ✓ %s\n", v.Note)
		case v.Valid:
			fmt.Fprintln(out, "    Status: ✓ Valid")
		default:
			fmt.Fprintf(out, "    Status: ✗ %s\n", v.Note)
		}
	}
	fmt.Fprintln(out)

	if len(report.Warnings) > 0 {
		fmt.Fprintln(out, "Warnings:")
		for _, warning := range report.Warnings {
			fmt.Fprintf(out, "  ⚠  %s\n", warning)
		}
	} else {
		fmt.Fprintln(out, "✓ No warnings")
	}
	return nil
}
