// Package install replaces the kernel image and module tree of the active version.
package install

import (
	"context"
	"path/filepath"

	"github.com/conn-castle/kup/internal/bootmgr"
	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/kbuild"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/version"
)

// Installer performs delete-old then install-new for one kernel version.
type Installer struct {
	adapter bootmgr.Adapter
	build   *kbuild.Builder
	paths   config.Paths
	sys     System
}

// New returns an installer. A nil sys uses RealSystem.
func New(adapter bootmgr.Adapter, build *kbuild.Builder, paths config.Paths, sys System) *Installer {
	if sys == nil {
		sys = RealSystem{}
	}
	return &Installer{adapter: adapter, build: build, paths: paths, sys: sys}
}

// ModulesPath returns /lib/modules/<version>.
func (i *Installer) ModulesPath(vc version.Context) string {
	return filepath.Join(i.paths.ModulesDir, vc.KernelVersion)
}

// Install removes every artifact of vc's version, then installs the kernel
// image and modules again. Re-running it for the same version replaces rather
// than accumulates. The first failure stops the install.
func (i *Installer) Install(ctx context.Context, vc version.Context) error {
	if err := i.adapter.DeleteVersionArtifacts(vc, vc.KernelVersion); err != nil {
		return err
	}
	modules := i.ModulesPath(vc)
	if err := i.sys.RemoveAll(modules); err != nil {
		return fault.FS(messages.BootOpRemove, modules, err)
	}

	if err := i.installKernel(ctx, vc); err != nil {
		return err
	}
	return i.build.ModulesInstall(ctx)
}

func (i *Installer) installKernel(ctx context.Context, vc version.Context) error {
	target := i.adapter.KernelInstallPath(vc)
	switch i.adapter.KernelInstallMethod() {
	case bootmgr.InstallViaBuildSystem:
		dir := filepath.Dir(target)
		if err := i.sys.MkdirAll(dir, 0o755); err != nil {
			return fault.FS(messages.BootOpMkdir, dir, err)
		}
		return i.build.Install(ctx, dir)
	case bootmgr.InstallByCopy:
		dir := filepath.Dir(target)
		if err := i.sys.MkdirAll(dir, 0o755); err != nil {
			return fault.FS(messages.BootOpMkdir, dir, err)
		}
		if err := i.sys.CopyFileAtomic(vc.KernelImage(), target, 0o644); err != nil {
			return fault.FS(messages.BootOpCopy, vc.KernelImage(), err)
		}
		return nil
	default:
		// Embedded images are written by the unified image composer.
		return nil
	}
}
