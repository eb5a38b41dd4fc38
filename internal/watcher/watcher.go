// Package watcher reports debounced batches of source file changes under a
// set of project roots.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation.
type EventOp int

const (
	Create EventOp = iota
	Write
	Remove
	Rename
)

// String returns the string representation of EventOp.
func (op EventOp) String() string {
	switch op {
	case Create:
		return "Create"
	case Write:
		return "Write"
	case Remove:
		return "Remove"
	case Rename:
		return "Rename"
	default:
		return "Unknown"
	}
}

// Event represents a file system change event.
type Event struct {
	Path string
	Op   EventOp
	Time time.Time
}

// Batch is the set of changes observed during one quiet window. Events are
// sorted by path and hold the last operation seen for each path.
type Batch struct {
	Events []Event
	Time   time.Time
}

// Paths returns the changed paths in the batch.
func (b Batch) Paths() []string {
	paths := make([]string, len(b.Events))
	for i, e := range b.Events {
		paths[i] = e.Path
	}
	return paths
}

// DefaultDebounce is the quiet window used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// WatcherConfig holds configuration for the file system watcher.
type WatcherConfig struct {
	Paths           []string
	ExcludePatterns []string
	// Extensions limits events to files with these extensions. Empty means
	// every file.
	Extensions []string
	Debounce   time.Duration
	// GitIgnore also applies the .gitignore files found under Paths.
	GitIgnore bool
}

// Watcher watches file system paths for changes and emits debounced batches.
type Watcher struct {
	cfg     WatcherConfig
	matcher *GitIgnoreMatcher
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	closed  bool
}

// NewWatcher creates a new file system watcher with the given configuration.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	matcher := NewGitIgnoreMatcher(cfg.Paths, cfg.ExcludePatterns)
	if cfg.GitIgnore {
		if err := matcher.LoadPatterns(); err != nil {
			return nil, err
		}
	}

	return &Watcher{
		cfg:     cfg,
		matcher: matcher,
	}, nil
}

// Start begins watching configured paths and returns a channel of batches.
// The channel is closed when ctx is cancelled or the watcher is closed.
func (w *Watcher) Start(ctx context.Context) (<-chan Batch, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	// Recursively add directories.
	for _, root := range w.cfg.Paths {
		if err := w.addRecursive(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	out := make(chan Batch, 16)
	go w.eventLoop(ctx, fsw, out)
	return out, nil
}

// Close shuts down the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.matcher.MatchDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// sourceFiles returns the wanted files already present under dir.
func (w *Watcher) sourceFiles(dir string) []string {
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && w.matcher.MatchDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.wanted(path) {
			files = append(files, path)
		}
		return nil
	})
	return files
}

// wanted reports whether events for path should be reported.
func (w *Watcher) wanted(path string) bool {
	if w.matcher.Match(path) {
		return false
	}
	if len(w.cfg.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.cfg.Extensions, strings.ToLower(filepath.Ext(path)))
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Batch) {
	defer close(out)

	// Debounce state: one timer for the whole batch, reset on every event.
	pending := make(map[string]Event)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	record := func(path string, op EventOp) {
		pending[path] = Event{Path: path, Op: op, Time: time.Now()}
		if timer == nil {
			timer = time.NewTimer(w.cfg.Debounce)
		} else {
			timer.Reset(w.cfg.Debounce)
		}
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-timerC:
			timerC = nil
			batch := Batch{Time: time.Now()}
			for _, e := range pending {
				batch.Events = append(batch.Events, e)
			}
			pending = make(map[string]Event)
			sort.Slice(batch.Events, func(i, j int) bool {
				return batch.Events[i].Path < batch.Events[j].Path
			})
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}

		case fsEvent, ok := <-fsw.Events:
			if !ok {
				return
			}

			// Convert fsnotify op to our EventOp.
			op, valid := convertOp(fsEvent.Op)
			if !valid {
				continue
			}

			// A new directory is watched from now on. Files it already holds,
			// such as a package moved in from elsewhere, emit no events of
			// their own and are reported as created.
			if op == Create {
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					if !w.matcher.MatchDir(fsEvent.Name) {
						_ = w.addRecursive(fsEvent.Name)
						for _, path := range w.sourceFiles(fsEvent.Name) {
							record(path, Create)
						}
					}
					continue
				}
			}

			if !w.wanted(fsEvent.Name) {
				continue
			}
			record(fsEvent.Name, op)

		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Errors are transient; keep watching.
		}
	}
}

func convertOp(op fsnotify.Op) (EventOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return Create, true
	case op.Has(fsnotify.Write):
		return Write, true
	case op.Has(fsnotify.Remove):
		return Remove, true
	case op.Has(fsnotify.Rename):
		return Rename, true
	default:
		return 0, false
	}
}
