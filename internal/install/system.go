package install

import (
	"os"

	"github.com/conn-castle/kup/internal/fsutil"
)

// System abstracts filesystem operations needed by the installer.
// Each package defines its own System with only the operations it needs.
type System interface {
	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(path string) error
	CopyFileAtomic(src string, dst string, perm os.FileMode) error
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// MkdirAll creates a directory named path, along with any necessary parents.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// RemoveAll removes path and any children it contains.
func (RealSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// CopyFileAtomic copies src over dst without exposing a partial file.
func (RealSystem) CopyFileAtomic(src string, dst string, perm os.FileMode) error {
	return fsutil.CopyFileAtomic(src, dst, perm)
}
