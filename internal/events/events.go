// Package events writes and reads the sync-run ledger.
package events

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lherron/todu/internal/domain"
)

// Run is one reconciliation pass as recorded in the ledger
type Run struct {
	ID         string          `json:"id"`
	Nickname   string          `json:"nickname,omitempty"`
	System     domain.System   `json:"system"`
	Scope      string          `json:"scope,omitempty"`
	Mode       domain.SyncMode `json:"mode"`
	New        int             `json:"new"`
	Updated    int             `json:"updated"`
	Total      int             `json:"total"`
	Skipped    int             `json:"skipped"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Succeeded reports whether the pass completed
func (r *Run) Succeeded() bool {
	return r.Error == ""
}

// Duration is the wall-clock time the pass took
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFilter narrows ListRuns
type RunFilter struct {
	System domain.System
	Limit  int
}

// Writer handles writing runs to the ledger
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new ledger writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// RecordRun appends run to the ledger, assigning an id when it has none
func (w *Writer) RecordRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	var errText *string
	if run.Error != "" {
		errText = &run.Error
	}

	_, err := w.db.Exec(`
		INSERT INTO sync_runs (id, nickname, system, scope, mode, new_count, updated, total, skipped, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Nickname, string(run.System), run.Scope, string(run.Mode),
		run.New, run.Updated, run.Total, run.Skipped, errText,
		formatTime(run.StartedAt), formatTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}

// ListRuns returns recorded runs, newest first
func (w *Writer) ListRuns(f RunFilter) ([]Run, error) {
	query := `
		SELECT id, nickname, system, scope, mode, new_count, updated, total, skipped, error, started_at, finished_at
		FROM sync_runs
	`
	var args []interface{}
	if f.System != "" {
		query += " WHERE system = ?"
		args = append(args, string(f.System))
	}
	query += " ORDER BY started_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run               Run
			system, mode      string
			errText           sql.NullString
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Nickname, &system, &run.Scope, &mode,
			&run.New, &run.Updated, &run.Total, &run.Skipped, &errText, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		run.System = domain.System(system)
		run.Mode = domain.SyncMode(mode)
		run.Error = errText.String
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("sync run %s: bad started_at: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("sync run %s: bad finished_at: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}
	return runs, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
