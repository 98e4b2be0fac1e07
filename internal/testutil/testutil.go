package testutil

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/lherron/todu/internal/db"
	"github.com/lherron/todu/internal/domain"
)

// TempDB creates a migrated history database for testing
func TempDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := database.Migrate(); err != nil {
		database.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database.DB, dbPath
}

// TempCache creates an empty cache root for testing
func TempCache(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// Str returns a pointer to s
func Str(s string) *string {
	return &s
}

// Issue returns an open issue item with fixed timestamps
func Issue(system domain.System, repo, id, title string) domain.Item {
	number, _ := strconv.Atoi(id)
	return domain.Item{
		ID:         id,
		System:     system,
		Type:       domain.ItemTypeIssue,
		Title:      title,
		Status:     domain.StatusOpen,
		CreatedAt:  "2025-01-01T00:00:00Z",
		UpdatedAt:  "2025-01-02T00:00:00Z",
		Labels:     []string{},
		Assignees:  []string{},
		URL:        "https://example.com/" + repo + "/issues/" + id,
		SystemData: domain.SystemData{Repo: repo, Number: number, State: "open"},
	}
}

// Task returns an open task item with fixed timestamps
func Task(id, projectID, title string) domain.Item {
	return domain.Item{
		ID:         id,
		System:     domain.SystemTodoist,
		Type:       domain.ItemTypeTask,
		Title:      title,
		Status:     domain.StatusOpen,
		CreatedAt:  "2025-01-01T00:00:00Z",
		UpdatedAt:  "2025-01-02T00:00:00Z",
		Labels:     []string{},
		Assignees:  []string{},
		URL:        "https://app.todoist.com/app/task/" + id,
		SystemData: domain.SystemData{ProjectID: projectID, Priority: 1},
	}
}

// WriteJSON encodes v into dir/filename, creating dir
func WriteJSON(t *testing.T, dir, filename string, v interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to encode %s: %v", filename, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	return WriteFile(t, dir, filename, string(data))
}

// WriteFile writes content to a file in a temporary directory
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// ReadFile reads content from a file
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

// AssertEqual asserts that two comparable values are equal
func AssertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if expected != actual {
		t.Fatalf("Expected %v, got %v", expected, actual)
	}
}
