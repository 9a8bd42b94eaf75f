package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_ReadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "challenge.yaml"), []byte("hello"), 0644))

	ls := NewLocalStorage(dir)
	data, err := ls.ReadFile(context.Background(), "content/challenge.yaml")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStorage_MissingFile(t *testing.T) {
	ls := NewLocalStorage(t.TempDir())
	_, err := ls.ReadFile(context.Background(), "nope.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_StaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("x"), 0644))

	ls := NewLocalStorage(root)
	_, err := ls.ReadFile(context.Background(), "../secret.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanName(t *testing.T) {
	for in, want := range map[string]string{
		"a/b.yaml":      "a/b.yaml",
		"/a/b.yaml":     "a/b.yaml",
		"../../a.yaml":  "a.yaml",
		"a/../b/c.yaml": "b/c.yaml",
	} {
		got, err := cleanName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := cleanName("/")
	assert.Error(t, err)
}
