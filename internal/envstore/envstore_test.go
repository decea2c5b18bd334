package envstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessStore(t *testing.T) {
	t.Setenv("ROOST_STORE_TEST", "abc")

	var s Store = Process{}
	v, ok, err := s.Get("ROOST_STORE_TEST")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok, err = s.Get("ROOST_STORE_TEST_UNSET_12345")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("ROOST_STORE_TEST", "def"))
	assert.Equal(t, "def", os.Getenv("ROOST_STORE_TEST"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "state", "env.yaml")}

	// Unset key on a store whose file does not exist yet.
	_, ok, err := f.Get("EDITOR")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Set("EDITOR", "nvim"))
	require.NoError(t, f.Set("PAGER", "less"))

	v, ok, err := f.Get("EDITOR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nvim", v)

	// A second store instance sees the persisted values.
	f2 := &File{Path: f.Path}
	v, ok, err = f2.Get("PAGER")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "less", v)
}

func TestFileStoreSetPreservesOtherKeys(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), "env.yaml")}
	require.NoError(t, f.Set("A", "1"))

	// Write through a separate handle, then update through the first one.
	other := &File{Path: f.Path}
	require.NoError(t, other.Set("B", "2"))
	require.NoError(t, f.Set("A", "3"))

	keys, values, err := f.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, keys)
	assert.Equal(t, "3", values["A"])
	assert.Equal(t, "2", values["B"])
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Get("X")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("X", "a"))
	v, ok, err := m.Get("X")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestStoreInterfaceCompliance(t *testing.T) {
	var _ Store = Process{}
	var _ Store = (*File)(nil)
	var _ Store = (*Memory)(nil)
}
