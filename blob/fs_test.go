package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_WriteReadDelete(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Write("kb/1/notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "kb/1/notes.txt", path)

	data, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	removed, err := store.Delete(path)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = store.Read(path)
	assert.Error(t, err)

	// Deleting a missing file is not an error
	removed, err = store.Delete(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFSStore_Overwrite(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Write("doc.md", []byte("v1"))
	require.NoError(t, err)
	_, err = store.Write("doc.md", []byte("v2"))
	require.NoError(t, err)

	data, err := store.Read("doc.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestFSStore_RejectsEscapes(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"../outside.txt", "/etc/passwd", "a/../../b"} {
		_, err := store.Read(path)
		assert.Error(t, err, "expected rejection for %q", path)
	}
}

func TestFSStore_EmptyRoot(t *testing.T) {
	_, err := NewFSStore("")
	assert.Error(t, err)
}
