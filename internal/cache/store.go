// Package cache persists canonical items as one JSON file per item under a
// cache root, and the per-system sync metadata next to them.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/paths"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Store reads and writes cached items under one root directory.
// It does not coordinate with other processes writing the same root.
type Store struct {
	layout paths.Layout
	logger *log.Logger
	meta   *MetaStore
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for corruption warnings
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a store rooted at root
func New(root string, opts ...Option) *Store {
	s := &Store{
		layout: paths.Layout{Root: root},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.meta = &MetaStore{path: s.layout.SyncFile(), logger: s.logger}
	return s
}

// Root returns the cache root directory
func (s *Store) Root() string {
	return s.layout.Root
}

// Meta returns the sync metadata store sharing this root
func (s *Store) Meta() *MetaStore {
	return s.meta
}

// Key returns the collision-safe cache key for item. Issue trackers are
// namespaced by system and repository; task ids are globally unique already.
func Key(item *domain.Item) string {
	if item.System == domain.SystemTodoist {
		return item.ID
	}
	return fmt.Sprintf("%s-%s-%s", item.System, paths.KeySegment(item.SystemData.Repo), item.ID)
}

// Upsert writes item, replacing any previous version at the same key.
// existed reports whether a file was already there.
func (s *Store) Upsert(item *domain.Item) (existed bool, err error) {
	if item.System == "" {
		return false, fmt.Errorf("cannot cache item %q without a system", item.ID)
	}
	if item.ID == "" {
		return false, fmt.Errorf("cannot cache %s item without an id", item.System)
	}

	path, err := s.layout.ItemPath(Key(item))
	if err != nil {
		return false, fmt.Errorf("cannot cache %s item %q: %w", item.System, item.ID, err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		existed = true
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to encode item %s: %w", Key(item), err)
	}
	data = append(data, '\n')

	if err := writeFile(path, data); err != nil {
		return false, err
	}
	return existed, nil
}

// Get reads the consolidated item at key. Returns an error wrapping
// fs.ErrNotExist when absent.
func (s *Store) Get(key string) (*domain.Item, error) {
	path, err := s.layout.ItemPath(key)
	if err != nil {
		return nil, err
	}
	return readItem(path)
}

// LoadAll returns every cached item. The consolidated layout is read first;
// the legacy per-system layout is consulted only when the consolidated one
// holds no readable item. ErrNoCachedItems is returned when both are empty.
func (s *Store) LoadAll() ([]domain.Item, error) {
	items, err := s.readDir(s.layout.ItemsDir())
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}

	for _, system := range domain.Systems {
		for _, dir := range s.layout.LegacyDirs(string(system)) {
			legacy, err := s.readDir(dir)
			if err != nil {
				return nil, err
			}
			items = append(items, legacy...)
		}
	}
	if len(items) == 0 {
		return nil, domain.ErrNoCachedItems
	}
	return items, nil
}

// ListAll returns the cached items accepted by keep (all items when nil)
func (s *Store) ListAll(keep func(*domain.Item) bool) ([]domain.Item, error) {
	items, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	if keep == nil {
		return items, nil
	}
	out := items[:0]
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// FindByID looks an item up by its bare provider id, optionally narrowed to
// one system. Zero matches is a NotFoundError; several an AmbiguousItemError.
func (s *Store) FindByID(id string, system domain.System) (*domain.Item, error) {
	items, err := s.ListAll(func(item *domain.Item) bool {
		return item.ID == id && (system == "" || item.System == system)
	})
	if errors.Is(err, domain.ErrNoCachedItems) {
		return nil, &domain.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}

	switch len(items) {
	case 0:
		return nil, &domain.NotFoundError{ID: id}
	case 1:
		return &items[0], nil
	}

	matches := make([]domain.Match, len(items))
	for i := range items {
		matches[i] = domain.MatchOf(&items[i])
	}
	return nil, &domain.AmbiguousItemError{ID: id, Matches: matches}
}

// readDir decodes every *.json file in dir. A missing directory is empty;
// unreadable or malformed files are skipped with a warning.
func (s *Store) readDir(dir string) ([]domain.Item, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory %s: %w", dir, err)
	}

	var items []domain.Item
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		item, err := readItem(path)
		if err != nil {
			s.logger.Printf("Warning: skipping unreadable cache file %s: %v", path, err)
			continue
		}
		items = append(items, *item)
	}
	return items, nil
}

func readItem(path string) (*domain.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var item domain.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("malformed item: %w", err)
	}
	if item.ID == "" || item.System == "" {
		return nil, fmt.Errorf("malformed item: missing id or system")
	}
	return &item, nil
}

// writeFile replaces path atomically, creating parent directories
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// atomic.WriteFile keeps the temp file's 0600 mode on new files
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}
