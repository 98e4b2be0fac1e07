package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Cache layout under the cache root
const (
	ItemsDirName     = "items"
	SyncFileName     = "sync.json"
	ProjectsFileName = "projects.json"
)

// Layout resolves the files of one cache root
type Layout struct {
	Root string
}

// ItemsDir is the consolidated item directory
func (l Layout) ItemsDir() string {
	return filepath.Join(l.Root, ItemsDirName)
}

// ItemFile is the consolidated path for a cache key
func (l Layout) ItemFile(key string) string {
	return filepath.Join(l.ItemsDir(), key+".json")
}

// ItemPath is ItemFile for a key that came from outside, such as a
// provider id. The key must name a file directly inside ItemsDir.
func (l Layout) ItemPath(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, "/\\\x00") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	path := l.ItemFile(key)
	if filepath.Dir(path) != l.ItemsDir() {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return path, nil
}

// LegacyDirs returns the read-only per-system directories of the old layout
// for system: <root>/<system>/issues and <root>/<system>/tasks.
func (l Layout) LegacyDirs(system string) []string {
	return []string{
		filepath.Join(l.Root, system, "issues"),
		filepath.Join(l.Root, system, "tasks"),
	}
}

// SyncFile holds per-system sync metadata
func (l Layout) SyncFile() string {
	return filepath.Join(l.Root, SyncFileName)
}

// ProjectsFile holds the project registry
func (l Layout) ProjectsFile() string {
	return filepath.Join(l.Root, ProjectsFileName)
}
