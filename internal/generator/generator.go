// Package generator turns a batch of Java source files into a class diagram.
package generator

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jdg-tools/jdg/internal/cache"
	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/graph"
	"github.com/jdg-tools/jdg/internal/parser"
)

// FileError reports the file that aborted a batch.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("Failed to parse %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Fingerprinter is implemented by parsers whose output depends on options.
// The fingerprint becomes part of every cache key.
type Fingerprinter interface {
	Fingerprint() string
}

// Config holds configuration for the Generator.
type Config struct {
	Parser  parser.Parser
	Cache   cache.Store // optional
	Workers int         // files extracted concurrently; <= 1 is sequential
	Verbose bool
	Logger  func(format string, args ...any) // optional logger, defaults to fmt.Fprintf(os.Stderr, ...)
}

// Result is the outcome of one batch.
type Result struct {
	Models        []*parser.ClassModel
	Relationships []graph.Relationship
}

// Render renders the result as a Mermaid class diagram.
func (r *Result) Render(opts diagram.Options) string {
	return diagram.Render(r.Models, r.Relationships, opts)
}

// Stats summarizes the result.
func (r *Result) Stats() *graph.Stats {
	return graph.ComputeStats(r.Models, r.Relationships)
}

// Generator extracts class models from files and infers their relationships.
type Generator struct {
	parser      parser.Parser
	cache       cache.Store
	fingerprint string
	workers     int
	verbose     bool
	log         func(format string, args ...any)

	readFile func(string) ([]byte, error)
}

// New creates a Generator with the given configuration.
func New(cfg Config) *Generator {
	logFn := cfg.Logger
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	fp := ""
	if f, ok := cfg.Parser.(Fingerprinter); ok {
		fp = f.Fingerprint()
	}
	return &Generator{
		parser:      cfg.Parser,
		cache:       cfg.Cache,
		fingerprint: fp,
		workers:     cfg.Workers,
		verbose:     cfg.Verbose,
		log:         logFn,
		readFile:    os.ReadFile,
	}
}

// Generate extracts every path in order and infers relationships over the
// whole batch. The first failing file aborts the batch with a *FileError and
// no partial result is returned.
func (g *Generator) Generate(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()

	var (
		models []*parser.ClassModel
		err    error
	)
	if g.workers > 1 && len(paths) > 1 {
		models, err = g.extractParallel(ctx, paths)
	} else {
		models, err = g.extractSequential(ctx, paths)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Models: models, Relationships: graph.Infer(models)}
	if g.verbose {
		g.log("Generated %d classes, %d relationships in %s",
			len(res.Models), len(res.Relationships), time.Since(start))
	}
	return res, nil
}

// GenerateDiagram runs Generate and renders the Mermaid text.
func (g *Generator) GenerateDiagram(ctx context.Context, paths []string, opts diagram.Options) (string, error) {
	res, err := g.Generate(ctx, paths)
	if err != nil {
		return "", err
	}
	return res.Render(opts), nil
}

func (g *Generator) extractSequential(ctx context.Context, paths []string) ([]*parser.ClassModel, error) {
	models := make([]*parser.ClassModel, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := g.ExtractFile(ctx, path)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

// extractParallel extracts files concurrently but reports the first failure
// in submission order. Files after a known failure are skipped; files before
// it still run so an earlier failure can take precedence.
func (g *Generator) extractParallel(ctx context.Context, paths []string) ([]*parser.ClassModel, error) {
	models := make([]*parser.ClassModel, len(paths))
	errs := make([]error, len(paths))

	var mu sync.Mutex
	firstFailed := len(paths)

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, path := range paths {
		eg.Go(func() error {
			mu.Lock()
			skip := i > firstFailed
			mu.Unlock()
			if skip {
				return nil
			}
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			m, err := g.ExtractFile(ctx, path)
			if err != nil {
				errs[i] = err
				mu.Lock()
				firstFailed = min(firstFailed, i)
				mu.Unlock()
				return nil
			}
			models[i] = m
			return nil
		})
	}
	_ = eg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return models, nil
}

// ExtractFile reads and extracts one file, consulting the cache when one is
// configured. Failures are returned as *FileError.
func (g *Generator) ExtractFile(ctx context.Context, path string) (*parser.ClassModel, error) {
	start := time.Now()

	content, err := g.readFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("%w: %v", parser.ErrIO, err)}
	}

	var key string
	if g.cache != nil {
		key = cache.Key(content, g.fingerprint)
		m, ok, err := g.cache.Get(key)
		if err != nil && g.verbose {
			g.log("  cache read failed for %s: %v", path, err)
		}
		if ok {
			m.FilePath = path
			if g.verbose {
				g.log("  %s: cache hit (%s %s)", path, m.Kind, m.Name)
			}
			return m, nil
		}
	}

	m, err := g.parser.ParseFile(ctx, path, content)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	if g.cache != nil {
		if err := g.cache.Put(key, m); err != nil && g.verbose {
			g.log("  cache write failed for %s: %v", path, err)
		}
	}

	if g.verbose {
		g.log("  %s: %s %s, %d fields, %d methods (%s)",
			path, m.Kind, m.Name, len(m.Fields), len(m.Methods), time.Since(start))
	}
	return m, nil
}

// GenerateDiagram parses paths with cfg and renders the Mermaid diagram.
// vertical adds the left-to-right direction directive.
func GenerateDiagram(ctx context.Context, paths []string, vertical bool, cfg Config) (string, error) {
	return New(cfg).GenerateDiagram(ctx, paths, diagram.Options{Vertical: vertical})
}
