package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdg-tools/jdg/internal/parser"
)

func testModel() *parser.ClassModel {
	return &parser.ClassModel{
		Name:    "User",
		Package: "com.example",
		Kind:    parser.KindClass,
		Fields:  []parser.Field{{Name: "id", Type: "long", Visibility: parser.VisibilityPrivate}},
		Methods: []parser.Method{{
			Name:       "rename",
			ReturnType: "void",
			Visibility: parser.VisibilityPublic,
			Parameters: []parser.Parameter{{Name: "to", Type: "String"}},
		}},
		Extends:    "Base",
		Implements: []string{"Serializable"},
	}
}

func newTestBadger(t *testing.T, dir string) *Badger {
	t.Helper()
	s, err := NewBadger(dir)
	require.NoError(t, err)
	return s
}

func TestKey(t *testing.T) {
	a := Key([]byte("class A {}"), "java:scope=declaration")
	assert.Equal(t, a, Key([]byte("class A {}"), "java:scope=declaration"), "Key is not deterministic")
	assert.NotEqual(t, a, Key([]byte("class A {}"), "java:scope=file"), "Key should depend on the fingerprint")
	assert.NotEqual(t, a, Key([]byte("class B {}"), "java:scope=declaration"), "Key should depend on the content")
}

func TestMemoryGetPut(t *testing.T) {
	m, err := NewMemory(2)
	require.NoError(t, err)
	defer m.Close()

	_, ok, _ := m.Get("missing")
	assert.False(t, ok, "expected miss")

	want := testModel()
	require.NoError(t, m.Put("k", want))
	got, ok, err := m.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Mutating a returned model must not affect the cache.
	got.Fields[0].Name = "changed"
	again, _, _ := m.Get("k")
	assert.Equal(t, "id", again.Fields[0].Name, "cached model was mutated through a returned copy")
}

func TestMemoryEviction(t *testing.T) {
	m, err := NewMemory(2)
	require.NoError(t, err)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, m.Put(k, testModel()))
	}
	assert.Equal(t, 2, m.Len())
	_, ok, _ := m.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
}

func TestBadgerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := newTestBadger(t, dir)

	want := testModel()
	require.NoError(t, s.Put("k", want))
	require.NoError(t, s.Close())

	// Reopen to make sure the model was persisted.
	s = newTestBadger(t, dir)
	defer s.Close()

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok, err = s.Get("missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBadgerCountClear(t *testing.T) {
	s := newTestBadger(t, t.TempDir())
	defer s.Close()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(k, testModel()))
	}
	n, err := s.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	dropped, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)

	n, err = s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTieredPromotesDiskHits(t *testing.T) {
	mem, err := NewMemory(8)
	require.NoError(t, err)
	disk := newTestBadger(t, t.TempDir())
	require.NoError(t, disk.Put("k", testModel()))

	tiered := NewTiered(mem, disk)
	defer tiered.Close()

	_, ok, _ := mem.Get("k")
	require.False(t, ok, "memory should start empty")

	_, ok, err = tiered.Get("k")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = mem.Get("k")
	assert.True(t, ok, "disk hit should be promoted to memory")
}

func TestTieredWritesBoth(t *testing.T) {
	mem, err := NewMemory(8)
	require.NoError(t, err)
	disk := newTestBadger(t, t.TempDir())
	tiered := NewTiered(mem, disk)
	defer tiered.Close()

	require.NoError(t, tiered.Put("k", testModel()))
	_, ok, _ := mem.Get("k")
	assert.True(t, ok, "memory store missing entry")
	_, ok, _ = disk.Get("k")
	assert.True(t, ok, "disk store missing entry")
}

func TestTieredMemoryOnly(t *testing.T) {
	mem, err := NewMemory(8)
	require.NoError(t, err)
	tiered := NewTiered(mem, nil)

	require.NoError(t, tiered.Put("k", testModel()))
	_, ok, _ := tiered.Get("k")
	assert.True(t, ok, "expected hit")
	_, ok, _ = tiered.Get("other")
	assert.False(t, ok, "expected miss")
	assert.NoError(t, tiered.Close())
}
