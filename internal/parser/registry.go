package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry maps file extensions to parsers.
type Registry struct {
	mu       sync.RWMutex
	parsers  []Parser
	extIndex map[string]Parser
}

// NewRegistry creates a new parser registry.
func NewRegistry() *Registry {
	return &Registry{
		extIndex: make(map[string]Parser),
	}
}

// Register adds a parser to the registry, indexing it by its file extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers = append(r.parsers, p)
	for _, ext := range p.Extensions() {
		r.extIndex[strings.ToLower(ext)] = p
	}
}

// GetByExtension retrieves a parser by file extension (e.g. ".java").
func (r *Registry) GetByExtension(ext string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.extIndex[strings.ToLower(ext)]
	return p, ok
}

// ForPath retrieves the parser for the extension of path.
func (r *Registry) ForPath(path string) (Parser, bool) {
	return r.GetByExtension(filepath.Ext(path))
}

// Supports reports whether some registered parser handles path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForPath(path)
	return ok
}

// SupportedExtensions returns all file extensions that have a registered
// parser, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extIndex))
	for ext := range r.extIndex {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
