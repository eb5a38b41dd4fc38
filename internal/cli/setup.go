package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jdg-tools/jdg/internal/cache"
	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/filetree"
	"github.com/jdg-tools/jdg/internal/generator"
	"github.com/jdg-tools/jdg/internal/parser"
	"github.com/jdg-tools/jdg/internal/parser/java"
)

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// stderrLogger returns a printf-style logger writing lines to w.
func stderrLogger(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// session holds the components built from one configuration.
type session struct {
	cfg     *config.Config
	parsers *parser.Registry
	java    *java.JavaParser
	store   cache.Store // nil when caching is off
	gen     *generator.Generator
}

// newSession wires the parser, the optional model cache and the generator.
func newSession(cfg *config.Config, useCache bool, logOut io.Writer) (*session, error) {
	jp := java.NewParser(java.Options{MemberScope: java.MemberScope(cfg.Parser.MemberScope)})
	parsers := parser.NewRegistry()
	parsers.Register(jp)

	s := &session{cfg: cfg, parsers: parsers, java: jp}
	if useCache && cfg.Cache.Enabled {
		store, err := openCache(cfg)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	s.gen = generator.New(generator.Config{
		Parser:  jp,
		Cache:   s.store,
		Workers: cfg.Generate.Workers,
		Verbose: verbose,
		Logger:  stderrLogger(logOut),
	})
	return s, nil
}

// openCache layers the in-memory LRU over the on-disk store.
func openCache(cfg *config.Config) (cache.Store, error) {
	mem, err := cache.NewMemory(cfg.Cache.MemoryEntries)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Cache.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	disk, err := cache.NewBadger(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("open model cache: %w", err)
	}
	return cache.NewTiered(mem, disk), nil
}

func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// treeOptions returns the file tree options for the registered parsers.
func (s *session) treeOptions() filetree.Options {
	return filetree.Options{
		Extensions: s.parsers.SupportedExtensions(),
		Ignore:     s.cfg.Tree.Ignore,
		GitIgnore:  s.cfg.Tree.GitIgnore,
	}
}

// expandPaths replaces each directory argument with the source files found
// under it, in tree order. File arguments are kept as given.
func (s *session) expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		root, err := filetree.Build(arg, s.treeOptions())
		if err != nil {
			return nil, err
		}
		paths = append(paths, filetree.Files(root)...)
	}
	return paths, nil
}

// projectRoot resolves a --project id to its root, stamping it as opened.
func projectRoot(cfg *config.Config, id string) (*config.Project, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid project id %q", id)
	}
	p, err := config.NewRegistry(cfg.RegistryPath()).Open(n)
	if errors.Is(err, config.ErrProjectNotFound) {
		return nil, fmt.Errorf("no project with id %d; see 'jdg project list'", n)
	}
	return p, err
}
