package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider/forgejo"
)

// Defaults
const (
	DefaultSyncTimeout     = 2 * time.Minute
	DefaultSyncConcurrency = 4
	DefaultGitHubURL       = "https://api.github.com"
	DefaultTodoistURL      = "https://api.todoist.com"
)

// Config represents the application configuration
type Config struct {
	CacheDir        string `yaml:"cache_dir"`
	DBPath          string `yaml:"db_path"`
	Timezone        string `yaml:"timezone"`
	SyncTimeout     string `yaml:"sync_timeout"`
	SyncConcurrency int    `yaml:"sync_concurrency"`
	GitHubURL       string `yaml:"github_url"`
	ForgejoURL      string `yaml:"forgejo_url"`
	TodoistURL      string `yaml:"todoist_url"`
	LogLevel        string `yaml:"log_level"`
	Output          string `yaml:"output"`
}

// credentialEnv names the token variable of each system
var credentialEnv = map[domain.System]string{
	domain.SystemGitHub:  "GITHUB_TOKEN",
	domain.SystemForgejo: "FORGEJO_TOKEN",
	domain.SystemTodoist: "TODOIST_TOKEN",
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/todu/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		SyncTimeout:     DefaultSyncTimeout.String(),
		SyncConcurrency: DefaultSyncConcurrency,
		GitHubURL:       DefaultGitHubURL,
		TodoistURL:      DefaultTodoistURL,
		LogLevel:        "info",
		Output:          "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if err := loadYAMLConfig(cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	if v := getEnvOrFile("TODU_CACHE_DIR", "TODU_CACHE_DIR_FILE"); v != "" {
		cfg.CacheDir = v
	}
	if v := getEnvOrFile("TODU_DB_PATH", "TODU_DB_PATH_FILE"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TODU_TZ"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("TODU_SYNC_TIMEOUT"); v != "" {
		cfg.SyncTimeout = v
	}
	if v := os.Getenv("TODU_SYNC_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TODU_SYNC_CONCURRENCY %q: %w", v, err)
		}
		cfg.SyncConcurrency = n
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHubURL = v
	}
	if v := os.Getenv("FORGEJO_URL"); v != "" {
		cfg.ForgejoURL = v
	}
	if v := os.Getenv("TODOIST_API_URL"); v != "" {
		cfg.TodoistURL = v
	}
	if v := os.Getenv("TODU_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODU_OUTPUT"); v != "" {
		cfg.Output = v
	}

	if cfg.CacheDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.CacheDir = filepath.Join(homeDir, ".local", "todu")
	}
	cfg.CacheDir = expandHome(cfg.CacheDir)
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.CacheDir, "history.db")
	}
	cfg.DBPath = expandHome(cfg.DBPath)

	if _, err := cfg.Timeout(); err != nil {
		return nil, err
	}
	if cfg.SyncConcurrency < 1 {
		return nil, fmt.Errorf("sync concurrency must be at least 1, got %d", cfg.SyncConcurrency)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error", cfg.LogLevel)
	}

	return cfg, nil
}

// Quiet reports whether warnings should be suppressed
func (c *Config) Quiet() bool {
	return c.LogLevel == "error"
}

// Timeout is the per-system sync budget
func (c *Config) Timeout() (time.Duration, error) {
	if c.SyncTimeout == "" {
		return DefaultSyncTimeout, nil
	}
	d, err := time.ParseDuration(c.SyncTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid sync timeout %q: %w", c.SyncTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sync timeout must be positive, got %s", d)
	}
	return d, nil
}

// Location resolves the report timezone; empty means the process zone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TokenEnv names the environment variable holding a system's token
func TokenEnv(system domain.System) string {
	return credentialEnv[system]
}

// Token returns the API token for a system, or a MissingCredentialError
func (c *Config) Token(system domain.System) (string, error) {
	env, ok := credentialEnv[system]
	if !ok {
		return "", domain.ValidateSystem(string(system))
	}
	token := getEnvOrFile(env, env+"_FILE")
	if token == "" {
		return "", &domain.MissingCredentialError{System: system, EnvVar: env}
	}
	return token, nil
}

// BaseURL returns the API base for a system. Forgejo falls back to the
// origin remote of the repository in the working directory.
func (c *Config) BaseURL(ctx context.Context, system domain.System) (string, error) {
	switch system {
	case domain.SystemGitHub:
		return c.GitHubURL, nil
	case domain.SystemTodoist:
		return c.TodoistURL, nil
	case domain.SystemForgejo:
		if c.ForgejoURL != "" {
			return strings.TrimRight(c.ForgejoURL, "/"), nil
		}
		if u := forgejo.DetectBaseURL(ctx); u != "" {
			return u, nil
		}
		return "", fmt.Errorf("FORGEJO_URL environment variable not set and could not detect from git remote")
	}
	return "", domain.ValidateSystem(string(system))
}

// loadYAMLConfig loads configuration from ~/.config/todu/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "todu", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(homeDir, strings.TrimPrefix(p, "~"))
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		if dir == homeDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
