package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sync"

	"github.com/lherron/todu/internal/domain"
)

// MetaStore keeps the sync.json document: one SyncMetadata record per
// system. Writes replace the whole file; the mutex serializes concurrent
// passes within one process.
type MetaStore struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// Path returns the sync.json location
func (m *MetaStore) Path() string {
	return m.path
}

// ReadAll returns every system's record. A missing file is empty; a
// malformed one is treated as empty with a warning.
func (m *MetaStore) ReadAll() (map[domain.System]domain.SyncMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read()
}

// Get returns the record for system, or nil when there is none
func (m *MetaStore) Get(system domain.System) (*domain.SyncMetadata, error) {
	all, err := m.ReadAll()
	if err != nil {
		return nil, err
	}
	md, ok := all[system]
	if !ok {
		return nil, nil
	}
	return &md, nil
}

// Write replaces the record for system. Other systems' records are kept.
func (m *MetaStore) Write(system domain.System, md domain.SyncMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.read()
	if err != nil {
		return err
	}
	all[system] = md

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sync metadata: %w", err)
	}
	return writeFile(m.path, append(data, '\n'))
}

func (m *MetaStore) read() (map[domain.System]domain.SyncMetadata, error) {
	all := make(map[domain.System]domain.SyncMetadata)

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.path, err)
	}
	if err := json.Unmarshal(data, &all); err != nil {
		m.logger.Printf("Warning: ignoring malformed sync metadata %s: %v", m.path, err)
		return make(map[domain.System]domain.SyncMetadata), nil
	}
	return all, nil
}
