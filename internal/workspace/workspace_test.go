package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EphemeralMode(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(base)
	assert.Empty(t, mgr.Path())

	require.NoError(t, mgr.Create())
	path := mgr.Path()
	assert.True(t, strings.HasPrefix(filepath.Base(path), "docsite-"))
	assert.DirExists(t, path)

	other := NewManager(base)
	require.NoError(t, other.Create())
	assert.NotEqual(t, path, other.Path())

	require.NoError(t, mgr.Cleanup())
	assert.NoDirExists(t, path)
	assert.Empty(t, mgr.Path())
	require.NoError(t, mgr.Cleanup())
}

func TestManager_PersistentMode_KeepsContents(t *testing.T) {
	base := t.TempDir()
	mgr := NewPersistentManager(base, ".docsite-cache")
	require.NoError(t, mgr.Create())
	assert.Equal(t, filepath.Join(base, ".docsite-cache"), mgr.Path())

	marker := filepath.Join(mgr.Path(), "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	require.NoError(t, mgr.Cleanup())
	require.NoError(t, NewPersistentManager(base, ".docsite-cache").Create())
	assert.FileExists(t, marker)
}

func TestManager_Reset_EmptiesFolder(t *testing.T) {
	mgr := NewPersistentManager(t.TempDir(), "")
	assert.Equal(t, "cache", filepath.Base(mgr.Path()))
	require.NoError(t, mgr.Create())

	marker := filepath.Join(mgr.Path(), "a", "index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(marker), 0o750))
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

	require.NoError(t, mgr.Reset())
	assert.DirExists(t, mgr.Path())
	assert.NoFileExists(t, marker)
}

func TestManager_Subdir(t *testing.T) {
	mgr := NewManager(t.TempDir())
	_, err := mgr.Subdir("thumbnails")
	require.Error(t, err)

	require.NoError(t, mgr.Create())
	sub, err := mgr.Subdir("thumbnails")
	require.NoError(t, err)
	assert.DirExists(t, sub)
	assert.Equal(t, filepath.Join(mgr.Path(), "thumbnails"), sub)
}
