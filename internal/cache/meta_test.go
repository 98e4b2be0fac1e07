package cache

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/testutil"
)

func TestMetaStore_WriteReplacesSystemRecord(t *testing.T) {
	s, _ := newStore(t)
	m := s.Meta()

	first := domain.SyncMetadata{
		LastSync:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Mode:      domain.SyncModeFull,
		TaskCount: 10,
		Stats:     &domain.SyncStats{New: 10, Total: 10},
		ProjectID: "p1",
	}
	testutil.AssertNoError(t, m.Write(domain.SystemTodoist, first))
	testutil.AssertNoError(t, m.Write(domain.SystemGitHub, domain.SyncMetadata{Mode: domain.SyncModeFull, TaskCount: 3}))

	second := domain.SyncMetadata{
		LastSync:  time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		Mode:      domain.SyncModeSingle,
		TaskCount: 1,
	}
	testutil.AssertNoError(t, m.Write(domain.SystemTodoist, second))

	got, err := m.Get(domain.SystemTodoist)
	testutil.AssertNoError(t, err)
	if got.Mode != domain.SyncModeSingle || got.TaskCount != 1 {
		t.Errorf("record = %+v", got)
	}
	if got.Stats != nil || got.ProjectID != "" {
		t.Errorf("record was merged with previous one: %+v", got)
	}

	gh, err := m.Get(domain.SystemGitHub)
	testutil.AssertNoError(t, err)
	if gh == nil || gh.TaskCount != 3 {
		t.Errorf("other system record lost: %+v", gh)
	}

	missing, err := m.Get(domain.SystemForgejo)
	testutil.AssertNoError(t, err)
	if missing != nil {
		t.Errorf("expected no forgejo record, got %+v", missing)
	}
}

func TestMetaStore_MalformedFile(t *testing.T) {
	s, logs := newStore(t)
	testutil.AssertNoError(t, os.MkdirAll(s.Root(), 0755))
	testutil.WriteFile(t, s.Root(), "sync.json", "[broken")

	all, err := s.Meta().ReadAll()
	testutil.AssertNoError(t, err)
	if len(all) != 0 {
		t.Errorf("expected empty metadata, got %v", all)
	}
	if logs.Len() == 0 {
		t.Error("expected a warning")
	}

	testutil.AssertNoError(t, s.Meta().Write(domain.SystemGitHub, domain.SyncMetadata{Mode: domain.SyncModeFull}))
}

func TestMetaStore_ConcurrentWrites(t *testing.T) {
	s, _ := newStore(t)
	m := s.Meta()

	var wg sync.WaitGroup
	for i, system := range domain.Systems {
		wg.Add(1)
		go func(i int, system domain.System) {
			defer wg.Done()
			if err := m.Write(system, domain.SyncMetadata{Mode: domain.SyncModeFull, TaskCount: i}); err != nil {
				t.Errorf("Write(%s): %v", system, err)
			}
		}(i, system)
	}
	wg.Wait()

	all, err := m.ReadAll()
	testutil.AssertNoError(t, err)
	if len(all) != len(domain.Systems) {
		t.Errorf("records = %s", fmt.Sprint(all))
	}
}
