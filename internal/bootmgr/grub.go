package bootmgr

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/version"
)

// Grub file name prefixes under /boot, as laid down by installkernel and dracut.
const (
	grubKernelPrefix    = "vmlinuz-"
	grubSystemMapPrefix = "System.map-"
	grubConfigPrefix    = "config-"
	grubInitrdPrefix    = "initramfs-"
	grubInitrdSuffix    = ".img"
)

// StepGrubMkconfig is the step name of the grub.cfg regeneration.
const StepGrubMkconfig = "grub-mkconfig"

// Grub keeps versioned files directly in /boot and regenerates grub.cfg.
type Grub struct {
	layout
	run runner.Runner
}

// Variant returns config.VariantGrub.
func (g *Grub) Variant() config.Variant { return config.VariantGrub }

// RequiredMountDir returns /boot/grub.
func (g *Grub) RequiredMountDir() string {
	return filepath.Join(g.paths.BootDir, "grub")
}

// KernelInstallMethod returns InstallViaBuildSystem; make install writes the image,
// System.map and config into /boot.
func (g *Grub) KernelInstallMethod() InstallMethod { return InstallViaBuildSystem }

// KernelInstallPath returns /boot/vmlinuz-<version>.
func (g *Grub) KernelInstallPath(vc version.Context) string {
	return filepath.Join(g.paths.BootDir, grubKernelPrefix+vc.KernelVersion)
}

// InitrdPath returns /boot/initramfs-<version>.img.
func (g *Grub) InitrdPath(vc version.Context) string {
	return g.initrdPath(vc.KernelVersion)
}

func (g *Grub) initrdPath(kernelVersion string) string {
	return filepath.Join(g.paths.BootDir, grubInitrdPrefix+kernelVersion+grubInitrdSuffix)
}

// ConfigPath returns the generated grub.cfg location.
func (g *Grub) ConfigPath() string {
	return filepath.Join(g.RequiredMountDir(), "grub.cfg")
}

// ArtifactPaths returns the four versioned files grub boots from.
func (g *Grub) ArtifactPaths(_ version.Context, kernelVersion string) []string {
	return []string{
		filepath.Join(g.paths.BootDir, grubKernelPrefix+kernelVersion),
		filepath.Join(g.paths.BootDir, grubSystemMapPrefix+kernelVersion),
		filepath.Join(g.paths.BootDir, grubConfigPrefix+kernelVersion),
		g.initrdPath(kernelVersion),
	}
}

// WriteBootEntry regenerates grub.cfg; grub discovers entries from /boot itself.
func (g *Grub) WriteBootEntry(ctx context.Context, _ version.Context, _ string) error {
	return g.run.Run(ctx, runner.Step{
		Name:    StepGrubMkconfig,
		Command: "grub-mkconfig",
		Args:    []string{"-o", g.ConfigPath()},
	})
}

// DeleteVersionArtifacts removes the versioned files of kernelVersion.
func (g *Grub) DeleteVersionArtifacts(vc version.Context, kernelVersion string) error {
	return g.deletePaths(g.ArtifactPaths(vc, kernelVersion))
}

// EnumerateOtherVersions scans /boot for versioned grub files.
func (g *Grub) EnumerateOtherVersions(vc version.Context) ([]string, error) {
	entries, err := g.readDir(g.paths.BootDir)
	if err != nil {
		return nil, err
	}
	versions := versionSet{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		for _, prefix := range []string{grubKernelPrefix, grubSystemMapPrefix, grubConfigPrefix} {
			if v, ok := strings.CutPrefix(name, prefix); ok {
				versions.add(vc.KernelVersion, v)
			}
		}
		if v, ok := strings.CutPrefix(name, grubInitrdPrefix); ok {
			if v, ok := strings.CutSuffix(v, grubInitrdSuffix); ok {
				versions.add(vc.KernelVersion, v)
			}
		}
	}
	return versions.sorted(), nil
}
