package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entry.conf")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "f"), []byte("x"), 0o644)
	assert.Error(t, err)
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bzImage")
	dst := filepath.Join(dir, "linux")
	require.NoError(t, os.WriteFile(src, []byte("kernel"), 0o644))

	require.NoError(t, CopyFileAtomic(src, dst, 0o755))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "kernel", string(data))
}

func TestCopyFileAtomicMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileAtomic(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"), 0o644)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "dst"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCopyFileAtomicSyncsBeforeRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bzImage")
	dst := filepath.Join(dir, "linux")
	require.NoError(t, os.WriteFile(src, []byte("kernel"), 0o644))

	orig := syncFile
	t.Cleanup(func() { syncFile = orig })
	var synced []string
	syncFile = func(f *os.File) error {
		synced = append(synced, f.Name())
		_, err := os.Stat(dst)
		assert.True(t, os.IsNotExist(err), "sync must happen before the rename")
		return orig(f)
	}

	require.NoError(t, CopyFileAtomic(src, dst, 0o755))
	assert.Len(t, synced, 1)
}

func TestCopyFileAtomicSyncFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bzImage")
	dst := filepath.Join(dir, "linux")
	require.NoError(t, os.WriteFile(src, []byte("kernel"), 0o644))

	orig := syncFile
	t.Cleanup(func() { syncFile = orig })
	syncFile = func(*os.File) error { return errors.New("io error") }

	err := CopyFileAtomic(src, dst, 0o755)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the source may remain")
}
