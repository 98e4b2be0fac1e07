// Package registry manages projects.json, the nickname → provider scope
// mapping that sync-all iterates over.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/natefinch/atomic"

	"github.com/lherron/todu/internal/domain"
	"github.com/lherron/todu/internal/paths"
)

// Entry is one registered project
type Entry struct {
	Nickname string `json:"nickname"`
	domain.Project
}

// Registry is the in-memory projects.json document
type Registry struct {
	path     string
	projects map[string]domain.Project
}

// Load reads the registry under cacheRoot. A missing file is an empty registry.
func Load(cacheRoot string) (*Registry, error) {
	path := paths.Layout{Root: cacheRoot}.ProjectsFile()
	r := &Registry{path: path, projects: make(map[string]domain.Project)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &r.projects); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return r, nil
}

// Path returns the registry file location
func (r *Registry) Path() string {
	return r.path
}

// Len returns the number of registered projects
func (r *Registry) Len() int {
	return len(r.projects)
}

// Get resolves a nickname
func (r *Registry) Get(nickname string) (domain.Project, error) {
	slug, err := paths.NormalizeSlug(nickname)
	if err != nil {
		return domain.Project{}, err
	}
	p, ok := r.projects[slug]
	if !ok {
		return domain.Project{}, fmt.Errorf("project %q not found", nickname)
	}
	return p, nil
}

// Register adds a project under the normalized nickname and saves the file.
// It returns the nickname actually used.
func (r *Registry) Register(nickname string, p domain.Project) (string, error) {
	slug, err := paths.NormalizeSlug(nickname)
	if err != nil {
		return "", err
	}
	if _, exists := r.projects[slug]; exists {
		return "", fmt.Errorf("project %q already registered", slug)
	}
	if err := validate(p); err != nil {
		return "", err
	}
	r.projects[slug] = p
	return slug, r.save()
}

// Update replaces a project's definition, optionally renaming it
func (r *Registry) Update(nickname, newNickname string, p domain.Project) (string, error) {
	slug, err := paths.NormalizeSlug(nickname)
	if err != nil {
		return "", err
	}
	if _, ok := r.projects[slug]; !ok {
		return "", fmt.Errorf("project %q not found", nickname)
	}
	if err := validate(p); err != nil {
		return "", err
	}

	target := slug
	if newNickname != "" {
		target, err = paths.NormalizeSlug(newNickname)
		if err != nil {
			return "", err
		}
		if _, exists := r.projects[target]; exists && target != slug {
			return "", fmt.Errorf("project %q already registered", target)
		}
	}

	delete(r.projects, slug)
	r.projects[target] = p
	return target, r.save()
}

// Remove deletes a project and saves the file
func (r *Registry) Remove(nickname string) error {
	slug, err := paths.NormalizeSlug(nickname)
	if err != nil {
		return err
	}
	if _, ok := r.projects[slug]; !ok {
		return fmt.Errorf("project %q not found", nickname)
	}
	delete(r.projects, slug)
	return r.save()
}

// Sorted returns every entry ordered by nickname
func (r *Registry) Sorted() []Entry {
	out := make([]Entry, 0, len(r.projects))
	for nick, p := range r.projects {
		out = append(out, Entry{Nickname: nick, Project: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nickname < out[j].Nickname })
	return out
}

func validate(p domain.Project) error {
	if err := domain.ValidateSystem(string(p.System)); err != nil {
		return err
	}
	if p.System == domain.SystemTodoist {
		if p.ProjectID == "" {
			return domain.Invalid("todoist projects require a project id")
		}
		return nil
	}
	if p.Repo == "" {
		return domain.Invalid("%s projects require a repository (owner/name)", p.System)
	}
	return nil
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.projects, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(r.path), err)
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	return nil
}
