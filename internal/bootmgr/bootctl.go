package bootmgr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/version"
)

// BootctlSplit keeps kernel and initrd under /boot/<machine-id>/<version>/
// and describes them with a loader entry.
type BootctlSplit struct {
	layout
	title string
}

// Variant returns config.VariantBootctlSplit.
func (b *BootctlSplit) Variant() config.Variant { return config.VariantBootctlSplit }

// RequiredMountDir returns /boot/EFI.
func (b *BootctlSplit) RequiredMountDir() string {
	return filepath.Join(b.paths.BootDir, "EFI")
}

// KernelInstallMethod returns InstallByCopy.
func (b *BootctlSplit) KernelInstallMethod() InstallMethod { return InstallByCopy }

func (b *BootctlSplit) versionDir(vc version.Context, kernelVersion string) string {
	return filepath.Join(b.paths.BootDir, vc.MachineID, kernelVersion)
}

func (b *BootctlSplit) entriesDir() string {
	return filepath.Join(b.paths.BootDir, "loader", "entries")
}

// EntryPath returns /boot/loader/entries/<machine-id>-<version>.conf.
func (b *BootctlSplit) EntryPath(vc version.Context, kernelVersion string) string {
	return filepath.Join(b.entriesDir(), vc.MachineID+"-"+kernelVersion+".conf")
}

// KernelInstallPath returns /boot/<machine-id>/<version>/linux.
func (b *BootctlSplit) KernelInstallPath(vc version.Context) string {
	return filepath.Join(b.versionDir(vc, vc.KernelVersion), "linux")
}

// InitrdPath returns /boot/<machine-id>/<version>/initrd.
func (b *BootctlSplit) InitrdPath(vc version.Context) string {
	return filepath.Join(b.versionDir(vc, vc.KernelVersion), "initrd")
}

// ArtifactPaths returns the kernel, initrd, entry and version directory of kernelVersion.
func (b *BootctlSplit) ArtifactPaths(vc version.Context, kernelVersion string) []string {
	dir := b.versionDir(vc, kernelVersion)
	return []string{
		filepath.Join(dir, "linux"),
		filepath.Join(dir, "initrd"),
		b.EntryPath(vc, kernelVersion),
		dir,
	}
}

// Entry builds the loader entry for the active version.
func (b *BootctlSplit) Entry(vc version.Context, cmdline string) Entry {
	return Entry{
		Title:     b.title,
		Version:   vc.KernelVersion,
		MachineID: vc.MachineID,
		Linux:     b.relative(b.KernelInstallPath(vc)),
		Initrd:    b.relative(b.InitrdPath(vc)),
		Options:   cmdline,
	}
}

// relative returns path as seen from the root of the boot partition.
func (b *BootctlSplit) relative(path string) string {
	rel, err := filepath.Rel(b.paths.BootDir, path)
	if err != nil {
		return path
	}
	return "/" + filepath.ToSlash(rel)
}

// WriteBootEntry renders the entry and replaces the entry file atomically.
func (b *BootctlSplit) WriteBootEntry(_ context.Context, vc version.Context, cmdline string) error {
	dir := b.entriesDir()
	if err := b.sys.MkdirAll(dir, 0o755); err != nil {
		return fault.FS(messages.BootOpMkdir, dir, err)
	}
	path := b.EntryPath(vc, vc.KernelVersion)
	if err := b.sys.WriteFileAtomic(path, []byte(b.Entry(vc, cmdline).Render()), 0o644); err != nil {
		return fault.FS(messages.BootOpWrite, path, err)
	}
	return nil
}

// DeleteVersionArtifacts removes the entry and version directory of kernelVersion.
func (b *BootctlSplit) DeleteVersionArtifacts(vc version.Context, kernelVersion string) error {
	return b.deletePaths(b.ArtifactPaths(vc, kernelVersion))
}

// EnumerateOtherVersions collects versions from /boot/<machine-id>/ and the loader entries.
func (b *BootctlSplit) EnumerateOtherVersions(vc version.Context) ([]string, error) {
	versions := versionSet{}

	dirs, err := b.readDir(filepath.Join(b.paths.BootDir, vc.MachineID))
	if err != nil {
		return nil, err
	}
	for _, entry := range dirs {
		if entry.IsDir() {
			versions.add(vc.KernelVersion, entry.Name())
		}
	}

	entries, err := b.readDir(b.entriesDir())
	if err != nil {
		return nil, err
	}
	prefix := vc.MachineID + "-"
	for _, entry := range entries {
		name, ok := strings.CutPrefix(entry.Name(), prefix)
		if !ok || entry.IsDir() {
			continue
		}
		if v, ok := strings.CutSuffix(name, ".conf"); ok {
			versions.add(vc.KernelVersion, v)
		}
	}
	return versions.sorted(), nil
}
