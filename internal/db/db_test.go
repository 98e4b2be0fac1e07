package db_test

import (
	"path/filepath"
	"testing"

	"github.com/lherron/todu/internal/db"
)

func TestMigrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("could not open db: %v", err)
	}
	defer database.Close()

	if database.Path() != dbPath {
		t.Errorf("Path() = %q", database.Path())
	}

	_, pending, err := database.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("fresh database should have pending migrations")
	}

	applied, err := database.MigrateWithInfo()
	if err != nil {
		t.Fatalf("MigrateWithInfo failed: %v", err)
	}
	if len(applied) != len(pending) {
		t.Errorf("applied %v, want %v", applied, pending)
	}

	// second run is a no-op
	applied, err = database.MigrateWithInfo()
	if err != nil {
		t.Fatalf("second MigrateWithInfo failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("re-applied %v", applied)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM sync_runs").Scan(&count); err != nil {
		t.Fatalf("sync_runs table missing: %v", err)
	}
}
