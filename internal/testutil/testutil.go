package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) string {
	t.Helper()
	return WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("exit %d\n", exitCode))
}

// WriteStubEcho writes a stub that prints line to stdout and stderr before exiting with exitCode.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubEcho(t *testing.T, dir string, name string, line string, exitCode int) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("echo %q\necho %q >&2\nexit %d\n", line, line+" (stderr)", exitCode))
}

// WriteStubArgs writes a stub that appends its arguments, one per line, to argsFile.
// t is the active test; dir is the output directory; name is the executable file name;
// argsFile is created on first use.
func WriteStubArgs(t *testing.T, dir string, name string, argsFile string) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("for arg in \"$@\"; do\n  echo \"$arg\" >> %q\ndone\nexit 0\n", argsFile))
}

func writeScript(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// BoolPtr returns a pointer to v.
// v is the boolean value to take the address of.
func BoolPtr(v bool) *bool {
	return &v
}

// WriteFile writes content to path under root, creating parent directories.
// t is the active test; root is the fake filesystem root; path is relative to root.
// Returns the absolute path written.
func WriteFile(t *testing.T, root string, path string, content string) string {
	t.Helper()
	full := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", full, err)
	}
	return full
}

// Mkdir creates path under root.
// t is the active test; root is the fake filesystem root; path is relative to root.
func Mkdir(t *testing.T, root string, path string) string {
	t.Helper()
	full := filepath.Join(root, path)
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", full, err)
	}
	return full
}

// KernelTree creates /usr/src/linux-<version> with a Makefile under root and
// points /usr/src/linux at it with a relative link, the way eselect kernel does.
// t is the active test; root is the fake filesystem root; version is the kernel version.
// Returns the source directory.
func KernelTree(t *testing.T, root string, version string) string {
	t.Helper()
	name := "linux-" + version
	dir := WriteFile(t, root, filepath.Join("usr", "src", name, "Makefile"), "VERSION = 6\n")
	link := filepath.Join(root, "usr", "src", "linux")
	_ = os.Remove(link)
	if err := os.Symlink(name, link); err != nil {
		t.Fatalf("symlink %s: %v", link, err)
	}
	return filepath.Dir(dir)
}

// Exists reports whether path exists, failing the test on unexpected errors.
// t is the active test; path is absolute. Symlinks are not followed.
func Exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("lstat %s: %v", path, err)
	return false
}
