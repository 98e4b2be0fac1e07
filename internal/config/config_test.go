package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lherron/todu/internal/domain"
)

// isolate points HOME and cwd at a fresh directory and clears every
// variable Load consults.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, v := range []string{
		"TODU_CACHE_DIR", "TODU_CACHE_DIR_FILE", "TODU_DB_PATH", "TODU_DB_PATH_FILE",
		"TODU_TZ", "TODU_SYNC_TIMEOUT", "TODU_SYNC_CONCURRENCY", "TODU_LOG_LEVEL", "TODU_OUTPUT",
		"GITHUB_API_URL", "FORGEJO_URL", "TODOIST_API_URL",
		"GITHUB_TOKEN", "GITHUB_TOKEN_FILE", "FORGEJO_TOKEN", "FORGEJO_TOKEN_FILE",
		"TODOIST_TOKEN", "TODOIST_TOKEN_FILE",
	} {
		t.Setenv(v, "")
	}

	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(home, ".local", "todu"); cfg.CacheDir != want {
		t.Errorf("CacheDir = %s, want %s", cfg.CacheDir, want)
	}
	if want := filepath.Join(home, ".local", "todu", "history.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %s, want %s", cfg.DBPath, want)
	}
	if cfg.GitHubURL != DefaultGitHubURL || cfg.TodoistURL != DefaultTodoistURL {
		t.Errorf("unexpected API defaults: %s %s", cfg.GitHubURL, cfg.TodoistURL)
	}
	if cfg.SyncConcurrency != DefaultSyncConcurrency {
		t.Errorf("SyncConcurrency = %d", cfg.SyncConcurrency)
	}
	if d, _ := cfg.Timeout(); d != DefaultSyncTimeout {
		t.Errorf("Timeout() = %s", d)
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("Location() = %v, want Local", loc)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", "todu")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	yaml := "cache_dir: ~/cache\ntimezone: America/New_York\nsync_timeout: 30s\noutput: json\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODU_OUTPUT", "yaml")
	t.Setenv("TODU_SYNC_CONCURRENCY", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(home, "cache"); cfg.CacheDir != want {
		t.Errorf("CacheDir = %s, want %s", cfg.CacheDir, want)
	}
	if want := filepath.Join(home, "cache", "history.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %s, want %s", cfg.DBPath, want)
	}
	if cfg.Output != "yaml" {
		t.Errorf("env should override yaml, Output = %s", cfg.Output)
	}
	if cfg.SyncConcurrency != 2 {
		t.Errorf("SyncConcurrency = %d", cfg.SyncConcurrency)
	}
	if d, _ := cfg.Timeout(); d != 30*time.Second {
		t.Errorf("Timeout() = %s", d)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("Location() = %s", loc)
	}
}

func TestLoad_EnvLocal(t *testing.T) {
	home := isolate(t)
	if err := os.WriteFile(filepath.Join(home, ".env.local"), []byte("TODU_CACHE_DIR=/srv/todu\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets real variables; register cleanup for the one we expect
	t.Setenv("TODU_CACHE_DIR", "")
	os.Unsetenv("TODU_CACHE_DIR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CacheDir != "/srv/todu" {
		t.Errorf("CacheDir = %s, want /srv/todu", cfg.CacheDir)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"timeout", "TODU_SYNC_TIMEOUT", "soon"},
		{"negative timeout", "TODU_SYNC_TIMEOUT", "-1s"},
		{"concurrency", "TODU_SYNC_CONCURRENCY", "many"},
		{"zero concurrency", "TODU_SYNC_CONCURRENCY", "0"},
		{"log level", "TODU_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.env, tt.value)
			}
		})
	}
}

func TestToken(t *testing.T) {
	home := isolate(t)
	cfg := &Config{}

	_, err := cfg.Token(domain.SystemGitHub)
	var missing *domain.MissingCredentialError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCredentialError, got %v", err)
	}
	if missing.EnvVar != "GITHUB_TOKEN" {
		t.Errorf("EnvVar = %s", missing.EnvVar)
	}

	t.Setenv("GITHUB_TOKEN", "ghp_abc")
	if tok, err := cfg.Token(domain.SystemGitHub); err != nil || tok != "ghp_abc" {
		t.Errorf("Token() = %q, %v", tok, err)
	}

	tokenFile := filepath.Join(home, "todoist.token")
	if err := os.WriteFile(tokenFile, []byte("secret\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TODOIST_TOKEN_FILE", tokenFile)
	if tok, err := cfg.Token(domain.SystemTodoist); err != nil || tok != "secret" {
		t.Errorf("Token() from file = %q, %v", tok, err)
	}

	if _, err := cfg.Token("jira"); err == nil {
		t.Error("expected error for unknown system")
	}
}

func TestBaseURL_ForgejoExplicit(t *testing.T) {
	cfg := &Config{ForgejoURL: "https://git.example.com/"}
	u, err := cfg.BaseURL(context.Background(), domain.SystemForgejo)
	if err != nil {
		t.Fatal(err)
	}
	if u != "https://git.example.com" {
		t.Errorf("BaseURL() = %s", u)
	}
}

func TestFindEnvLocal(t *testing.T) {
	tests := []struct {
		name    string
		envDirs []string // relative to the temp root
		cwd     string
		want    string // "" means not found
	}{
		{"current dir", []string{"."}, ".", "."},
		{"parent dir", []string{"."}, "child", "."},
		{"grandparent dir", []string{"."}, "parent/child", "."},
		{"closest wins", []string{".", "parent"}, "parent/child", "parent"},
		{"not found", nil, ".", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			t.Setenv("HOME", root)
			if err := os.MkdirAll(filepath.Join(root, tt.cwd), 0755); err != nil {
				t.Fatal(err)
			}
			for _, d := range tt.envDirs {
				if err := os.WriteFile(filepath.Join(root, d, ".env.local"), []byte("TEST=1"), 0644); err != nil {
					t.Fatal(err)
				}
			}

			oldCwd, _ := os.Getwd()
			defer os.Chdir(oldCwd)
			if err := os.Chdir(filepath.Join(root, tt.cwd)); err != nil {
				t.Fatal(err)
			}

			got := findEnvLocal()
			if tt.want == "" {
				if got != "" {
					t.Errorf("expected no .env.local, got %s", got)
				}
				return
			}
			// Resolve symlinks for comparison (macOS /var -> /private/var)
			want, _ := filepath.EvalSymlinks(filepath.Join(root, tt.want, ".env.local"))
			gotResolved, _ := filepath.EvalSymlinks(got)
			if gotResolved != want {
				t.Errorf("expected %s, got %s", want, gotResolved)
			}
		})
	}
}
