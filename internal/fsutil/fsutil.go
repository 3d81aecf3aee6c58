// Package fsutil provides file writes that never leave a partial file in place.
package fsutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// syncFile flushes a temp file to stable storage before it is renamed.
var syncFile = (*os.File).Sync

// WriteFileAtomic writes data to a temp file in the target directory and renames it over filename.
// filename is the destination; perm is applied before the rename.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return writeAtomic(filename, bytes.NewReader(data), perm)
}

// CopyFileAtomic copies src to dst through a temp file in dst's directory.
// src is read whole; dst is replaced only after the copy is synced; perm is dst's mode.
func CopyFileAtomic(src string, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	return writeAtomic(dst, in, perm)
}

// writeAtomic streams r into a synced temp file next to filename, then renames it into place.
func writeAtomic(filename string, r io.Reader, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return err
	}
	if err := syncFile(tmp); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filename)
}
