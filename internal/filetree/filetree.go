// Package filetree builds the browsable source tree of a project, pruned to
// the files a parser can handle.
package filetree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jdg-tools/jdg/internal/parser"
	"github.com/jdg-tools/jdg/internal/watcher"
)

// NodeType distinguishes files from folders.
type NodeType string

const (
	TypeFile   NodeType = "file"
	TypeFolder NodeType = "folder"
)

// Node is one entry of the tree. Folders always have at least one child.
type Node struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Type     NodeType `json:"type"`
	Children []*Node  `json:"children,omitempty"`
}

// ErrNoSourceFiles is returned when the root holds no matching file.
var ErrNoSourceFiles = errors.New("no source files found")

// Options controls tree construction.
type Options struct {
	// Extensions selects the files kept in the tree. Defaults to .java.
	Extensions []string
	// Ignore holds extra gitignore-style patterns relative to the root.
	Ignore []string
	// GitIgnore also honours .gitignore files found under the root.
	GitIgnore bool
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{parser.JavaExtension}
	}
	return o.Extensions
}

// Build walks root and returns the tree of matching files and the folders
// containing them. Entries are sorted by name. Directories named in
// watcher.DefaultIgnoredNames are skipped.
func Build(root string, opts Options) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	var roots []string
	if info.IsDir() {
		roots = []string{root}
	}
	matcher := watcher.NewGitIgnoreMatcher(roots, opts.Ignore)
	if opts.GitIgnore {
		if err := matcher.LoadPatterns(); err != nil {
			return nil, fmt.Errorf("load ignore patterns: %w", err)
		}
	}

	b := &builder{exts: opts.extensions(), matcher: matcher}
	node, err := b.build(root, info.IsDir())
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w under %s", ErrNoSourceFiles, root)
	}
	return node, nil
}

type builder struct {
	exts    []string
	matcher *watcher.GitIgnoreMatcher
}

func (b *builder) build(path string, isDir bool) (*Node, error) {
	node := &Node{Name: filepath.Base(path), Path: path}
	if !isDir {
		if !slices.Contains(b.exts, strings.ToLower(filepath.Ext(path))) {
			return nil, nil
		}
		node.Type = TypeFile
		return node, nil
	}

	node.Type = TypeFolder
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}
	for _, entry := range entries {
		childPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			if b.matcher.MatchDir(childPath) {
				continue
			}
		} else if b.matcher.Match(childPath) {
			continue
		}

		child, err := b.build(childPath, entry.IsDir())
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	if len(node.Children) == 0 {
		return nil, nil
	}
	return node, nil
}

// Search returns the leaves whose name contains term, ignoring case, in tree
// order. Folders are descended, never returned. An empty term returns nodes
// unchanged.
func Search(nodes []*Node, term string) []*Node {
	if term == "" {
		return nodes
	}
	needle := strings.ToLower(term)
	var results []*Node
	for _, n := range nodes {
		if len(n.Children) == 0 {
			if strings.Contains(strings.ToLower(n.Name), needle) {
				results = append(results, n)
			}
			continue
		}
		results = append(results, Search(n.Children, term)...)
	}
	return results
}

// Files returns the paths of every file under n in tree order.
func Files(n *Node) []string {
	if n == nil {
		return nil
	}
	if n.Type == TypeFile {
		return []string{n.Path}
	}
	var paths []string
	for _, c := range n.Children {
		paths = append(paths, Files(c)...)
	}
	return paths
}

// Count returns the number of files and folders in the tree.
func Count(n *Node) (files, folders int) {
	if n == nil {
		return 0, 0
	}
	if n.Type == TypeFile {
		return 1, 0
	}
	folders = 1
	for _, c := range n.Children {
		f, d := Count(c)
		files += f
		folders += d
	}
	return files, folders
}
