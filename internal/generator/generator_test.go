package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdg-tools/jdg/internal/cache"
	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/parser"
	"github.com/jdg-tools/jdg/internal/parser/java"
)

// recordingParser wraps a parser and records every path it was asked to parse.
type recordingParser struct {
	parser.Parser

	mu    sync.Mutex
	calls []string
}

func (r *recordingParser) ParseFile(ctx context.Context, path string, content []byte) (*parser.ClassModel, error) {
	r.mu.Lock()
	r.calls = append(r.calls, path)
	r.mu.Unlock()
	return r.Parser.ParseFile(ctx, path, content)
}

func (r *recordingParser) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func shapesDir(t *testing.T) string {
	t.Helper()
	return filepath.Join("..", "..", "testdata", "java", "shapes")
}

func shapesPaths(t *testing.T) []string {
	dir := shapesDir(t)
	var paths []string
	for _, name := range []string{"Shape.java", "AbstractShape.java", "Circle.java", "Color.java", "Point.java"} {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

func writeJava(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func quietConfig(p parser.Parser) Config {
	return Config{Parser: p, Logger: func(string, ...any) {}}
}

func TestGenerateDiagramGolden(t *testing.T) {
	want, err := os.ReadFile(filepath.Join("testdata", "shapes.mmd"))
	require.NoError(t, err)

	got, err := GenerateDiagram(context.Background(), shapesPaths(t), false, quietConfig(java.NewParser(java.Options{})))
	require.NoError(t, err)
	assert.Equal(t, string(want), got)
}

func TestGenerateDiagramVertical(t *testing.T) {
	cfg := quietConfig(java.NewParser(java.Options{}))
	horizontal, err := GenerateDiagram(context.Background(), shapesPaths(t), false, cfg)
	require.NoError(t, err)
	vertical, err := GenerateDiagram(context.Background(), shapesPaths(t), true, cfg)
	require.NoError(t, err)

	assert.Equal(t, horizontal, strings.Replace(vertical, "    direction LR\n", "", 1))
}

func TestGenerateFailFast(t *testing.T) {
	dir := t.TempDir()
	first := writeJava(t, dir, "A.java", "class A {}")
	missing := filepath.Join(dir, "Missing.java")
	third := writeJava(t, dir, "C.java", "class C {}")

	rec := &recordingParser{Parser: java.NewParser(java.Options{})}
	res, err := New(quietConfig(rec)).Generate(context.Background(), []string{first, missing, third})

	require.Error(t, err)
	assert.Nil(t, res)

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, missing, fe.Path)
	assert.True(t, errors.Is(err, parser.ErrIO))
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to parse "+missing+": "))

	assert.Equal(t, []string{first}, rec.Calls(), "files after the failure must not be parsed")
}

func TestGenerateNoDeclaration(t *testing.T) {
	dir := t.TempDir()
	empty := writeJava(t, dir, "package-info.java", "package demo;\n")

	_, err := New(quietConfig(java.NewParser(java.Options{}))).Generate(context.Background(), []string{empty})

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, empty, fe.Path)
	assert.True(t, errors.Is(err, parser.ErrNoDeclarationFound))
}

func TestGenerateParallelKeepsOrder(t *testing.T) {
	p := java.NewParser(java.Options{})
	seq, err := New(quietConfig(p)).Generate(context.Background(), shapesPaths(t))
	require.NoError(t, err)

	cfg := quietConfig(p)
	cfg.Workers = 4
	par, err := New(cfg).Generate(context.Background(), shapesPaths(t))
	require.NoError(t, err)

	assert.Equal(t, seq.Models, par.Models)
	assert.Equal(t, seq.Relationships, par.Relationships)
}

func TestGenerateParallelReportsFirstFailure(t *testing.T) {
	dir := t.TempDir()
	ok := writeJava(t, dir, "A.java", "class A {}")
	bad1 := filepath.Join(dir, "Bad1.java")
	bad2 := writeJava(t, dir, "Bad2.java", "// nothing\n")

	cfg := quietConfig(java.NewParser(java.Options{}))
	cfg.Workers = 3
	_, err := New(cfg).Generate(context.Background(), []string{ok, bad1, bad2})

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, bad1, fe.Path)
}

func TestGenerateUsesCache(t *testing.T) {
	mem, err := cache.NewMemory(16)
	require.NoError(t, err)

	rec := &recordingParser{Parser: java.NewParser(java.Options{})}
	cfg := quietConfig(rec)
	cfg.Cache = mem
	g := New(cfg)

	first, err := g.Generate(context.Background(), shapesPaths(t))
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), shapesPaths(t))
	require.NoError(t, err)

	assert.Len(t, rec.Calls(), len(shapesPaths(t)), "second run should be served from cache")
	assert.Equal(t, first.Render(diagram.Options{}), second.Render(diagram.Options{}))
	assert.Equal(t, first.Models, second.Models)
}

func TestGenerateCacheHitUsesRequestPath(t *testing.T) {
	mem, err := cache.NewMemory(16)
	require.NoError(t, err)

	dir := t.TempDir()
	a := writeJava(t, dir, "A.java", "class Same {}")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "copy"), 0o755))
	b := writeJava(t, filepath.Join(dir, "copy"), "A.java", "class Same {}")

	cfg := quietConfig(java.NewParser(java.Options{}))
	cfg.Cache = mem
	res, err := New(cfg).Generate(context.Background(), []string{a, b})
	require.NoError(t, err)

	assert.Equal(t, a, res.Models[0].FilePath)
	assert.Equal(t, b, res.Models[1].FilePath)
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(quietConfig(java.NewParser(java.Options{}))).Generate(ctx, shapesPaths(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateVerboseLogging(t *testing.T) {
	var lines []string
	cfg := Config{
		Parser:  java.NewParser(java.Options{}),
		Verbose: true,
		Logger: func(format string, args ...any) {
			lines = append(lines, format)
		},
	}
	_, err := New(cfg).Generate(context.Background(), shapesPaths(t)[:1])
	require.NoError(t, err)
	assert.NotEmpty(t, lines)
}

func TestResultStats(t *testing.T) {
	res, err := New(quietConfig(java.NewParser(java.Options{}))).Generate(context.Background(), shapesPaths(t))
	require.NoError(t, err)

	s := res.Stats()
	assert.Equal(t, 5, s.ClassCount)
	assert.Equal(t, 6, s.RelationshipCount)
	assert.Equal(t, 1, s.ClassesByKind[parser.KindAbstractClass])
	assert.Equal(t, []string{"Drawable", "Comparable"}, s.ExternalTargets)
}

func TestGenerateGenericSupertypes(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeJava(t, dir, "Base.java", "abstract class Base<T> {}"),
		writeJava(t, dir, "Cmp.java", "interface Cmp<T> {}"),
		writeJava(t, dir, "Foo.java", "class Foo extends Base<String> implements Cmp<Foo> {}"),
	}

	res, err := New(quietConfig(java.NewParser(java.Options{}))).Generate(context.Background(), paths)
	require.NoError(t, err)

	out := res.Render(diagram.Options{})
	assert.Contains(t, out, "    Foo <|-- Base\n")
	assert.Contains(t, out, "    Foo <|-- Cmp\n")
	assert.NotContains(t, out, "<String>")
	assert.NotContains(t, out, "<Foo>")

	s := res.Stats()
	assert.Equal(t, 2, s.RelationshipCount)
	assert.Empty(t, s.ExternalTargets)
}
