// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, flag overrides, cache and ledger opening
// to reduce boilerplate across commands.
package appctx

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lherron/todu/internal/cache"
	"github.com/lherron/todu/internal/config"
	"github.com/lherron/todu/internal/db"
	"github.com/lherron/todu/internal/events"
	"github.com/lherron/todu/internal/reconcile"
	"github.com/lherron/todu/internal/registry"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration with flag overrides applied
	Config *config.Config

	// Store is the item cache rooted at Config.CacheDir
	Store *cache.Store

	// DB is the sync history ledger (nil if NeedsDB is false or it failed to open)
	DB *db.DB

	// Location is the user timezone for reports
	Location *time.Location

	// Logger receives warnings; it writes to the command's stderr
	Logger *log.Logger
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
}

// Registry loads the project registry from the cache root
func (a *App) Registry() (*registry.Registry, error) {
	return registry.Load(a.Config.CacheDir)
}

// Ledger returns the run recorder, or nil when no ledger is open
func (a *App) Ledger() *events.Writer {
	if a.DB == nil {
		return nil
	}
	return events.NewWriter(a.DB.DB)
}

// Reconciler builds a reconciler over the app's store with the configured
// timeout, concurrency and ledger. Extra options are applied last.
func (a *App) Reconciler(opts ...reconcile.Option) (*reconcile.Reconciler, error) {
	timeout, err := a.Config.Timeout()
	if err != nil {
		return nil, err
	}
	base := []reconcile.Option{
		reconcile.WithLogger(a.Logger),
		reconcile.WithTimeout(timeout),
		reconcile.WithConcurrency(a.Config.SyncConcurrency),
	}
	if w := a.Ledger(); w != nil {
		base = append(base, reconcile.WithRecorder(w))
	}
	return reconcile.New(a.Store, append(base, opts...)...), nil
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB indicates whether to open the sync history ledger.
	NeedsDB bool

	// RequireDB makes a ledger that cannot be opened fatal. Otherwise the
	// failure is logged and the command runs without a ledger.
	RequireDB bool
}

// DefaultOptions returns default options (ledger opened, failures tolerated).
func DefaultOptions() Options {
	return Options{NeedsDB: true}
}

// CacheOnly returns options for commands that never touch the ledger.
func CacheOnly() Options {
	return Options{}
}

// WithDB returns options for commands that cannot run without the ledger.
func WithDB() Options {
	return Options{NeedsDB: true, RequireDB: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The ledger is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if v := flagValue(cmd, "cache-dir"); v != "" {
		cfg.CacheDir = v
	}
	if v := flagValue(cmd, "db"); v != "" {
		cfg.DBPath = v
	}
	if v := flagValue(cmd, "tz"); v != "" {
		cfg.Timezone = v
	}

	return New(cfg, cmd.ErrOrStderr(), opts)
}

// New assembles an App from an already loaded config
func New(cfg *config.Config, stderr io.Writer, opts Options) (*App, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	if cfg.Quiet() {
		stderr = io.Discard
	}
	app := &App{
		Config: cfg,
		Logger: log.New(stderr, "", 0),
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	app.Location = loc
	app.Store = cache.New(cfg.CacheDir, cache.WithLogger(app.Logger))

	if opts.NeedsDB {
		database, err := openLedger(cfg.DBPath)
		if err != nil {
			if opts.RequireDB {
				return nil, err
			}
			app.Logger.Printf("Warning: sync history disabled: %v", err)
		} else {
			app.DB = database
		}
	}

	return app, nil
}

func openLedger(path string) (*db.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}
