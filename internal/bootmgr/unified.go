package bootmgr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/version"
)

// BootctlUnified boots a single EFI image per version from /boot/EFI/Linux.
// systemd-boot discovers those images itself, so there is no entry file.
type BootctlUnified struct {
	layout
}

// Variant returns config.VariantBootctlUnified.
func (u *BootctlUnified) Variant() config.Variant { return config.VariantBootctlUnified }

// RequiredMountDir returns /boot/EFI.
func (u *BootctlUnified) RequiredMountDir() string {
	return filepath.Join(u.paths.BootDir, "EFI")
}

// KernelInstallMethod returns InstallEmbedded.
func (u *BootctlUnified) KernelInstallMethod() InstallMethod { return InstallEmbedded }

func (u *BootctlUnified) imageDir() string {
	return filepath.Join(u.paths.BootDir, "EFI", "Linux")
}

func (u *BootctlUnified) imagePath(vc version.Context, kernelVersion string) string {
	return filepath.Join(u.imageDir(), "linux-"+kernelVersion+"-"+vc.MachineID+".efi")
}

// KernelInstallPath returns /boot/EFI/Linux/linux-<version>-<machine-id>.efi.
func (u *BootctlUnified) KernelInstallPath(vc version.Context) string {
	return u.imagePath(vc, vc.KernelVersion)
}

// InitrdPath returns a transient path outside /boot; the initrd is
// embedded into the unified image and then deleted.
func (u *BootctlUnified) InitrdPath(vc version.Context) string {
	return filepath.Join(u.paths.WorkDir, "initrd-"+vc.KernelVersion+".img")
}

// ArtifactPaths returns the unified image of kernelVersion.
func (u *BootctlUnified) ArtifactPaths(vc version.Context, kernelVersion string) []string {
	return []string{u.imagePath(vc, kernelVersion)}
}

// WriteBootEntry does nothing: the command line lives in the image's .cmdline section.
func (u *BootctlUnified) WriteBootEntry(context.Context, version.Context, string) error {
	return nil
}

// DeleteVersionArtifacts removes the unified image of kernelVersion.
func (u *BootctlUnified) DeleteVersionArtifacts(vc version.Context, kernelVersion string) error {
	return u.deletePaths(u.ArtifactPaths(vc, kernelVersion))
}

// EnumerateOtherVersions scans /boot/EFI/Linux for this machine's images.
func (u *BootctlUnified) EnumerateOtherVersions(vc version.Context) ([]string, error) {
	entries, err := u.readDir(u.imageDir())
	if err != nil {
		return nil, err
	}
	suffix := "-" + vc.MachineID + ".efi"
	versions := versionSet{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutPrefix(entry.Name(), "linux-")
		if !ok {
			continue
		}
		if v, ok := strings.CutSuffix(name, suffix); ok {
			versions.add(vc.KernelVersion, v)
		}
	}
	return versions.sorted(), nil
}
