package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/generator"
	"github.com/jdg-tools/jdg/internal/parser/java"
)

func shapesDir() string {
	return filepath.Join("..", "..", "testdata", "java", "shapes")
}

func newTestServer(t *testing.T) (*Server, *config.Registry) {
	t.Helper()
	registry := config.NewRegistry(filepath.Join(t.TempDir(), "projects.json"))
	gen := generator.New(generator.Config{
		Parser: java.NewParser(java.Options{}),
		Logger: func(string, ...any) {},
	})
	s := NewServer(Options{
		Generator: gen,
		Registry:  registry,
		Version:   "test",
		Logger:    func(string, ...any) {},
	})
	return s, registry
}

// connect starts s on an in-memory transport and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"generate_diagram", "file_tree", "list_projects", "add_project", "open_project",
	}, names)
}

func TestGenerateDiagramTool(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	paths := []any{
		filepath.Join(shapesDir(), "Shape.java"),
		filepath.Join(shapesDir(), "Circle.java"),
	}
	text, isErr := callTool(t, cs, "generate_diagram", map[string]any{"file_paths": paths})
	require.False(t, isErr, text)
	assert.True(t, strings.HasPrefix(text, "classDiagram\nclass Shape {\n"), text)
	assert.Contains(t, text, "    Circle <|-- AbstractShape\n")
	assert.NotContains(t, text, "direction LR")

	text, isErr = callTool(t, cs, "generate_diagram", map[string]any{"file_paths": paths, "vertical": true})
	require.False(t, isErr, text)
	assert.True(t, strings.HasPrefix(text, "classDiagram\n    direction LR\n"), text)
}

func TestGenerateDiagramToolJSON(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	text, isErr := callTool(t, cs, "generate_diagram", map[string]any{
		"file_paths": []any{filepath.Join(shapesDir(), "Color.java")},
		"format":     "json",
	})
	require.False(t, isErr, text)

	var doc struct {
		Classes []struct {
			Name string `json:"name"`
		} `json:"classes"`
		Relationships []any `json:"relationships"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &doc))
	require.Len(t, doc.Classes, 1)
	assert.Equal(t, "Color", doc.Classes[0].Name)
	assert.Empty(t, doc.Relationships)
}

func TestGenerateDiagramToolErrors(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	text, isErr := callTool(t, cs, "generate_diagram", map[string]any{"file_paths": []any{}})
	assert.True(t, isErr)
	assert.Contains(t, text, "file_paths")

	missing := filepath.Join(t.TempDir(), "Missing.java")
	text, isErr = callTool(t, cs, "generate_diagram", map[string]any{"file_paths": []any{missing}})
	assert.True(t, isErr)
	assert.Contains(t, text, "Failed to parse "+missing)

	text, isErr = callTool(t, cs, "generate_diagram", map[string]any{
		"file_paths": []any{filepath.Join(shapesDir(), "Color.java")},
		"format":     "svg",
	})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown diagram format")
}

func TestFileTreeTool(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	text, isErr := callTool(t, cs, "file_tree", map[string]any{"root": shapesDir()})
	require.False(t, isErr, text)

	var root struct {
		Type     string `json:"type"`
		Children []struct {
			Name string `json:"name"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &root))
	assert.Equal(t, "folder", root.Type)
	assert.Len(t, root.Children, 5)

	text, isErr = callTool(t, cs, "file_tree", map[string]any{"root": shapesDir(), "search": "SHAPE"})
	require.False(t, isErr, text)
	var matches []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, "AbstractShape.java", matches[0].Name)
	assert.Equal(t, "Shape.java", matches[1].Name)
}

func TestFileTreeToolNoSources(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi"), 0o644))

	text, isErr := callTool(t, cs, "file_tree", map[string]any{"root": dir})
	assert.True(t, isErr)
	assert.Contains(t, text, "no source files")
}

func TestProjectTools(t *testing.T) {
	s, registry := newTestServer(t)
	cs := connect(t, s)

	text, isErr := callTool(t, cs, "list_projects", map[string]any{})
	require.False(t, isErr, text)
	assert.JSONEq(t, "[]", text)

	abs, err := filepath.Abs(shapesDir())
	require.NoError(t, err)

	text, isErr = callTool(t, cs, "add_project", map[string]any{"name": "shapes", "path": abs})
	require.False(t, isErr, text)
	var added config.Project
	require.NoError(t, json.Unmarshal([]byte(text), &added))
	assert.Equal(t, int64(1), added.ID)
	assert.Equal(t, abs, added.Path)

	projects, err := registry.List()
	require.NoError(t, err)
	require.Len(t, projects, 1)

	text, isErr = callTool(t, cs, "add_project", map[string]any{"name": "again", "path": abs})
	assert.True(t, isErr)
	assert.Contains(t, text, "already exists")

	text, isErr = callTool(t, cs, "open_project", map[string]any{"id": 1})
	require.False(t, isErr, text)
	var opened struct {
		Project config.Project `json:"project"`
		Tree    struct {
			Path string `json:"path"`
		} `json:"tree"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &opened))
	assert.Equal(t, "shapes", opened.Project.Name)
	assert.Equal(t, abs, opened.Tree.Path)

	text, isErr = callTool(t, cs, "open_project", map[string]any{"id": 7})
	assert.True(t, isErr)
	assert.Contains(t, text, "No project with id 7")
}

func TestUsageResource(t *testing.T) {
	s, _ := newTestServer(t)
	cs := connect(t, s)

	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: usageURI})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, "generate_diagram")
}
