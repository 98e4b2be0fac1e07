package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/provider"
	"github.com/lherron/todu/internal/registry"
)

// FetcherFactory builds the provider client for a system. It is expected to
// fail without network access when credentials are missing.
type FetcherFactory func(system domain.System) (provider.Fetcher, error)

// ProjectResult is one project's outcome within SyncAll
type ProjectResult struct {
	Nickname string          `json:"nickname"`
	System   domain.System   `json:"system"`
	Success  bool            `json:"success"`
	Mode     domain.SyncMode `json:"mode,omitempty"`
	Synced   int             `json:"synced"`
	New      int             `json:"new"`
	Updated  int             `json:"updated"`
	Error    string          `json:"error,omitempty"`
}

// Summary aggregates SyncAll
type Summary struct {
	TotalProjects int             `json:"total_projects"`
	Successful    int             `json:"successful"`
	Failed        int             `json:"failed"`
	TotalSynced   int             `json:"total_synced"`
	TotalNew      int             `json:"total_new"`
	TotalUpdated  int             `json:"total_updated"`
	Results       []ProjectResult `json:"results"`
}

// Err returns a non-nil error when any project failed
func (s *Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d projects failed to sync", s.Failed, s.TotalProjects)
}

// Progress is called as each project is handed to a worker; may be nil.
// Calls come from a single goroutine, one at a time.
type Progress func(entry registry.Entry)

// SyncAll runs a full pass for every entry, at most r.concurrency at a time.
// A failing project never stops the others; results keep entry order.
func (r *Reconciler) SyncAll(ctx context.Context, entries []registry.Entry, factory FetcherFactory, progress Progress) *Summary {
	results := make([]ProjectResult, len(entries))

	workers := r.concurrency
	if len(entries) < workers {
		workers = len(entries)
	}

	// fetchers are shared per system; building one may be slow or fail
	var (
		mu       sync.Mutex
		fetchers = make(map[domain.System]provider.Fetcher)
		failures = make(map[domain.System]error)
	)
	fetcherFor := func(system domain.System) (provider.Fetcher, error) {
		mu.Lock()
		defer mu.Unlock()
		if f, ok := fetchers[system]; ok {
			return f, nil
		}
		if err, ok := failures[system]; ok {
			return nil, err
		}
		f, err := factory(system)
		if err != nil {
			failures[system] = err
			return nil, err
		}
		fetchers[system] = f
		return f, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.syncEntry(ctx, entries[idx], fetcherFor)
			}
		}()
	}

	for idx := range entries {
		if progress != nil {
			progress(entries[idx])
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{TotalProjects: len(entries), Results: results}
	for _, res := range results {
		if res.Success {
			summary.Successful++
			summary.TotalSynced += res.Synced
			summary.TotalNew += res.New
			summary.TotalUpdated += res.Updated
		} else {
			summary.Failed++
		}
	}
	return summary
}

func (r *Reconciler) syncEntry(ctx context.Context, entry registry.Entry, fetcherFor func(domain.System) (provider.Fetcher, error)) ProjectResult {
	out := ProjectResult{Nickname: entry.Nickname, System: entry.System}

	f, err := fetcherFor(entry.System)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	res, err := r.Sync(ctx, f, Request{
		System:   entry.System,
		Nickname: entry.Nickname,
		Scope:    entry.Scope(),
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	out.Success = true
	out.Mode = res.Mode
	out.Synced = res.Synced
	out.New = res.New
	out.Updated = res.Updated
	return out
}
