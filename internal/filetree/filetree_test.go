package filetree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeProject creates files (slash-separated, relative to a temp root) and
// returns the root.
func makeProject(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("class X {}"), 0o644))
	}
	return root
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildPrunesToJava(t *testing.T) {
	root := makeProject(t,
		"src/main/java/com/example/User.java",
		"src/main/java/com/example/Order.java",
		"src/main/resources/app.properties",
		"docs/readme.md",
		"target/classes/User.java",
		"node_modules/pkg/Index.java",
		"build/Gen.java",
		"Main.java",
	)

	tree, err := Build(root, Options{})
	require.NoError(t, err)

	assert.Equal(t, TypeFolder, tree.Type)
	assert.Equal(t, root, tree.Path)
	assert.Equal(t, []string{"Main.java", "src"}, names(tree.Children))

	src := tree.Children[1]
	require.Len(t, src.Children, 1)
	assert.Equal(t, "main", src.Children[0].Name)
	assert.Equal(t, []string{"java"}, names(src.Children[0].Children))

	files := Files(tree)
	assert.Equal(t, []string{
		filepath.Join(root, "Main.java"),
		filepath.Join(root, "src", "main", "java", "com", "example", "Order.java"),
		filepath.Join(root, "src", "main", "java", "com", "example", "User.java"),
	}, files)
}

func TestBuildIgnorePatterns(t *testing.T) {
	root := makeProject(t,
		"src/App.java",
		"src/generated/Gen.java",
		"legacy/Old.java",
	)

	tree, err := Build(root, Options{Ignore: []string{"src/generated/", "legacy"}})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "src", "App.java")}, Files(tree))
}

func TestBuildGitIgnore(t *testing.T) {
	root := makeProject(t, "src/App.java", "out/Compiled.java")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("out/\n"), 0o644))

	withoutGitIgnore, err := Build(root, Options{})
	require.NoError(t, err)
	assert.Len(t, Files(withoutGitIgnore), 2)

	withGitIgnore, err := Build(root, Options{GitIgnore: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "App.java")}, Files(withGitIgnore))
}

func TestBuildNoSources(t *testing.T) {
	root := makeProject(t, "README.md", "target/A.java")

	_, err := Build(root, Options{})
	assert.True(t, errors.Is(err, ErrNoSourceFiles))
}

func TestBuildSingleFile(t *testing.T) {
	root := makeProject(t, "A.java", "notes.txt")

	node, err := Build(filepath.Join(root, "A.java"), Options{})
	require.NoError(t, err)
	assert.Equal(t, TypeFile, node.Type)
	assert.Equal(t, "A.java", node.Name)

	_, err = Build(filepath.Join(root, "notes.txt"), Options{})
	assert.ErrorIs(t, err, ErrNoSourceFiles)
}

func TestBuildMissingRoot(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
}

func TestBuildExtensions(t *testing.T) {
	root := makeProject(t, "A.java", "B.kt")

	tree, err := Build(root, Options{Extensions: []string{".kt"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B.kt"}, names(tree.Children))
}

func TestSearch(t *testing.T) {
	tree := &Node{Name: "src", Type: TypeFolder, Children: []*Node{
		{Name: "main", Type: TypeFolder, Children: []*Node{
			{Name: "User.java", Type: TypeFile},
			{Name: "Order.java", Type: TypeFile},
			{Name: "UserService.java", Type: TypeFile},
		}},
		{Name: "test", Type: TypeFolder, Children: []*Node{
			{Name: "UserTest.java", Type: TypeFile},
		}},
	}}

	assert.Equal(t, []string{"User.java", "UserService.java", "UserTest.java"},
		names(Search([]*Node{tree}, "user")))
	assert.Empty(t, Search([]*Node{tree}, "main"), "folders are never results")
	assert.Equal(t, []*Node{tree}, Search([]*Node{tree}, ""))
}

func TestCount(t *testing.T) {
	root := makeProject(t, "a/A.java", "a/b/B.java", "C.java")
	tree, err := Build(root, Options{})
	require.NoError(t, err)

	files, folders := Count(tree)
	assert.Equal(t, 3, files)
	assert.Equal(t, 3, folders)
}
