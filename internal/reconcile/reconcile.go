// Package reconcile runs sync passes: fetch raw provider items, normalize
// them, upsert them into the cache and record per-system sync metadata.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/lherron/todu/internal/cache"
	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/events"
	"github.com/lherron/todu/internal/normalize"
	"github.com/lherron/todu/internal/provider"
)

const (
	defaultTimeout     = 2 * time.Minute
	defaultConcurrency = 4
)

// Recorder receives one ledger row per pass
type Recorder interface {
	RecordRun(run *events.Run) error
}

// Request describes one pass. ItemID selects single mode, Since selects
// incremental mode; neither means a full pass.
type Request struct {
	System   domain.System
	Nickname string
	Scope    string
	Since    *time.Time
	ItemID   string
}

// Mode derives the sync mode from the populated fields
func (r Request) Mode() domain.SyncMode {
	switch {
	case r.ItemID != "":
		return domain.SyncModeSingle
	case r.Since != nil:
		return domain.SyncModeIncremental
	default:
		return domain.SyncModeFull
	}
}

// Validate rejects requests that must not reach a provider
func (r Request) Validate() error {
	if r.ItemID != "" && r.Since != nil {
		return domain.ErrConflictingModes
	}
	if err := domain.ValidateSystem(string(r.System)); err != nil {
		return err
	}
	if r.System != domain.SystemTodoist && r.Scope == "" {
		return domain.Invalid("%s sync requires a repository (owner/name)", r.System)
	}
	return nil
}

// Result is the outcome of a successful pass
type Result struct {
	System    domain.System   `json:"system"`
	Nickname  string          `json:"nickname,omitempty"`
	Scope     string          `json:"scope,omitempty"`
	Mode      domain.SyncMode `json:"mode"`
	Synced    int             `json:"synced"`
	New       int             `json:"new"`
	Updated   int             `json:"updated"`
	Skipped   int             `json:"skipped,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	ItemID    string          `json:"item,omitempty"`
	Items     []domain.Item   `json:"-"`
}

// Stats returns the counts in metadata form
func (r *Result) Stats() domain.SyncStats {
	return domain.SyncStats{New: r.New, Updated: r.Updated, Total: r.Synced}
}

// Reconciler runs passes against one cache store
type Reconciler struct {
	store       *cache.Store
	logger      *log.Logger
	now         func() time.Time
	recorder    Recorder
	diff        io.Writer
	timeout     time.Duration
	concurrency int
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithLogger sets the warning logger
func WithLogger(l *log.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithRecorder appends every pass to a ledger
func WithRecorder(rec Recorder) Option {
	return func(r *Reconciler) { r.recorder = rec }
}

// WithDiff writes a unified diff of every changed item to w
func WithDiff(w io.Writer) Option {
	return func(r *Reconciler) { r.diff = w }
}

// WithTimeout bounds each pass; zero or negative disables the bound
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.timeout = d }
}

// WithConcurrency bounds how many passes SyncAll runs at once
func WithConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New returns a reconciler writing into store
func New(store *cache.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:       store,
		logger:      log.Default(),
		now:         time.Now,
		timeout:     defaultTimeout,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sync runs one pass. Validation failures are returned as-is before any
// fetch; fetch and write failures come back as *domain.SyncError and leave
// the system's sync metadata untouched.
func (r *Reconciler) Sync(ctx context.Context, f provider.Fetcher, req Request) (*Result, error) {
	if req.System == "" {
		req.System = f.System()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.System() != req.System {
		return nil, fmt.Errorf("fetcher for %s cannot sync %s", f.System(), req.System)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	started := r.now()
	res, err := r.pass(ctx, f, req)
	finished := r.now()

	run := &events.Run{
		Nickname:   req.Nickname,
		System:     req.System,
		Scope:      req.Scope,
		Mode:       req.Mode(),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", r.timeout, err)
		}
		run.Error = err.Error()
		r.record(run)
		return nil, &domain.SyncError{System: req.System, Nickname: req.Nickname, Err: err}
	}

	res.Timestamp = finished.UTC()
	md := domain.SyncMetadata{
		LastSync:  res.Timestamp,
		Mode:      res.Mode,
		TaskCount: res.Synced,
	}
	stats := res.Stats()
	md.Stats = &stats
	if req.System == domain.SystemTodoist {
		md.ProjectID = req.Scope
	}
	if err := r.store.Meta().Write(req.System, md); err != nil {
		run.Error = err.Error()
		r.record(run)
		return nil, &domain.SyncError{System: req.System, Nickname: req.Nickname, Err: err}
	}

	run.New, run.Updated, run.Total, run.Skipped = res.New, res.Updated, res.Synced, res.Skipped
	r.record(run)
	return res, nil
}

func (r *Reconciler) pass(ctx context.Context, f provider.Fetcher, req Request) (*Result, error) {
	mode := req.Mode()
	raws, err := f.Fetch(ctx, provider.Query{Scope: req.Scope, Since: req.Since, ID: req.ItemID})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		System:   req.System,
		Nickname: req.Nickname,
		Scope:    req.Scope,
		Mode:     mode,
		ItemID:   req.ItemID,
	}

	// normalize everything before the first write
	items := make([]domain.Item, 0, len(raws))
	for _, raw := range raws {
		if raw.IsPullRequest() {
			if mode == domain.SyncModeSingle {
				number, _ := strconv.Atoi(raw.NativeID())
				return nil, &provider.PullRequestError{System: req.System, Repo: req.Scope, Number: number}
			}
			res.Skipped++
			continue
		}
		item, err := normalize.Item(raw, normalize.Source{Repo: req.Scope})
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for i := range items {
		item := &items[i]
		var before *domain.Item
		if r.diff != nil {
			before, _ = r.store.Get(cache.Key(item))
		}

		existed, err := r.store.Upsert(item)
		if err != nil {
			return nil, err
		}
		if existed {
			res.Updated++
		} else {
			res.New++
		}
		if before != nil {
			if err := writeDiff(r.diff, before, item); err != nil {
				r.logger.Printf("Warning: failed to write diff for %s: %v", cache.Key(item), err)
			}
		}
	}

	res.Synced = res.New + res.Updated
	res.Items = items
	return res, nil
}

func (r *Reconciler) record(run *events.Run) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordRun(run); err != nil {
		r.logger.Printf("Warning: failed to record sync run for %s: %v", run.System, err)
	}
}
