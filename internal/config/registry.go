package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Registry errors.
var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
)

// Project is a registered project.
type Project struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	LastOpened int64  `json:"last_opened"` // Unix milliseconds
}

// LastOpenedTime returns LastOpened as a time.
func (p Project) LastOpenedTime() time.Time {
	return time.UnixMilli(p.LastOpened)
}

// DefaultRegistryPath returns the per-user registry file
// (~/Documents/jdg/projects.json).
func DefaultRegistryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Documents", "jdg", "projects.json")
}

// Registry is the JSON-backed list of known projects. The file holds a
// single JSON array and is rewritten on every change.
type Registry struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewRegistry opens the registry stored at path. The file is created on
// the first write.
func NewRegistry(path string) *Registry {
	return &Registry{path: path, now: time.Now}
}

// Path returns the registry file location.
func (r *Registry) Path() string { return r.path }

// List returns all registered projects in insertion order.
func (r *Registry) List() ([]Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Add registers a project rooted at path. If name is empty, it defaults to
// filepath.Base(path). A second project with the same path is rejected.
func (r *Registry) Add(name, path string) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if name == "" {
		name = filepath.Base(abs)
	}

	projects, err := r.read()
	if err != nil {
		return nil, err
	}

	var nextID int64 = 1
	for _, p := range projects {
		if p.Path == abs {
			return nil, fmt.Errorf("%w: %s", ErrProjectExists, abs)
		}
		nextID = max(nextID, p.ID+1)
	}

	p := Project{ID: nextID, Name: name, Path: abs, LastOpened: r.now().UnixMilli()}
	projects = append(projects, p)
	if err := r.write(projects); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns the project with the given id.
func (r *Registry) Get(id int64) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
}

// Open stamps the project's last-opened time with the current time and
// returns the updated project.
func (r *Registry) Open(id int64) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			projects[i].LastOpened = r.now().UnixMilli()
			if err := r.write(projects); err != nil {
				return nil, err
			}
			p := projects[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
}

// Remove deletes the project with the given id.
func (r *Registry) Remove(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := r.read()
	if err != nil {
		return err
	}
	for i, p := range projects {
		if p.ID == id {
			projects = append(projects[:i], projects[i+1:]...)
			return r.write(projects)
		}
	}
	return fmt.Errorf("%w: id %d", ErrProjectNotFound, id)
}

// Lookup finds the project whose path matches or is a parent of path.
func (r *Registry) Lookup(path string) (*Project, bool) {
	projects, err := r.List()
	if err != nil {
		return nil, false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	for _, p := range projects {
		if absPath == p.Path || strings.HasPrefix(absPath, p.Path+string(filepath.Separator)) {
			return &p, true
		}
	}
	return nil, false
}

// read loads the registry. A missing or empty file is an empty registry.
func (r *Registry) read() ([]Project, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Project{}, nil
	}

	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", r.path, err)
	}
	return projects, nil
}

func (r *Registry) write(projects []Project) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return os.Rename(tmp, r.path)
}
