package watcher

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoredNames are directory names that are never walked or watched.
var DefaultIgnoredNames = []string{"node_modules", "target", "build", "dist", ".git"}

// GitIgnoreMatcher matches file paths against configured exclude patterns
// and the .gitignore files found under the repo roots.
type GitIgnoreMatcher struct {
	repoRoots       []string
	excludePatterns []string

	exclude *ignore.GitIgnore
	files   []gitIgnoreFile
}

// gitIgnoreFile is one loaded .gitignore. Its patterns apply below basePath.
type gitIgnoreFile struct {
	basePath string
	rules    *ignore.GitIgnore
}

// NewGitIgnoreMatcher creates a new matcher for the given repo roots.
// excludePatterns use gitignore syntax and are relative to each root.
func NewGitIgnoreMatcher(repoRoots []string, excludePatterns []string) *GitIgnoreMatcher {
	return &GitIgnoreMatcher{
		repoRoots:       repoRoots,
		excludePatterns: excludePatterns,
		exclude:         ignore.CompileIgnoreLines(excludePatterns...),
	}
}

// LoadPatterns finds and parses .gitignore files in repo roots and
// subdirectories.
func (m *GitIgnoreMatcher) LoadPatterns() error {
	m.exclude = ignore.CompileIgnoreLines(m.excludePatterns...)
	m.files = nil

	for _, root := range m.repoRoots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip inaccessible entries
			}
			if d.IsDir() {
				if path != root && slices.Contains(DefaultIgnoredNames, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() == ".gitignore" {
				rules, loadErr := ignore.CompileIgnoreFile(path)
				if loadErr != nil {
					return nil // skip unreadable gitignore files
				}
				m.files = append(m.files, gitIgnoreFile{basePath: filepath.Dir(path), rules: rules})
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Match returns true if the given path should be ignored.
func (m *GitIgnoreMatcher) Match(path string) bool {
	return m.match(path, false)
}

// MatchDir is Match for a path known to be a directory, so patterns with a
// trailing slash apply to the directory itself.
func (m *GitIgnoreMatcher) MatchDir(path string) bool {
	return m.match(path, true)
}

func (m *GitIgnoreMatcher) match(path string, isDir bool) bool {
	rel := m.relative(path)
	for _, part := range strings.Split(rel, "/") {
		if slices.Contains(DefaultIgnoredNames, part) {
			return true
		}
	}

	if matchesPath(m.exclude, rel, isDir) {
		return true
	}

	for _, f := range m.files {
		r, err := filepath.Rel(f.basePath, path)
		if err != nil || r == "." || strings.HasPrefix(r, "..") {
			continue
		}
		if matchesPath(f.rules, filepath.ToSlash(r), isDir) {
			return true
		}
	}
	return false
}

func matchesPath(rules *ignore.GitIgnore, rel string, isDir bool) bool {
	if rules == nil || rel == "" || rel == "." {
		return false
	}
	if rules.MatchesPath(rel) {
		return true
	}
	return isDir && rules.MatchesPath(rel+"/")
}

// relative returns path relative to the first repo root containing it, in
// slash form. Paths outside every root are returned as-is.
func (m *GitIgnoreMatcher) relative(path string) string {
	for _, root := range m.repoRoots {
		rel, err := filepath.Rel(root, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
