// Package bootmgr confines the on-disk layout and entry protocol of each
// supported boot manager behind the Adapter interface.
package bootmgr

import (
	"context"
	"errors"
	"io/fs"
	"sort"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
	"github.com/conn-castle/kup/internal/runner"
	"github.com/conn-castle/kup/internal/version"
)

// InstallMethod says how the kernel image reaches its install path.
type InstallMethod int

const (
	// InstallViaBuildSystem runs the build system's install target.
	InstallViaBuildSystem InstallMethod = iota
	// InstallByCopy copies the compiled image to KernelInstallPath.
	InstallByCopy
	// InstallEmbedded means the image is embedded into a unified image instead.
	InstallEmbedded
)

// Adapter is the uniform contract over the supported boot-manager layouts.
// Every path it returns is fully determined by the variant, the kernel
// version and the machine id.
type Adapter interface {
	Variant() config.Variant
	// RequiredMountDir is the directory whose presence shows /boot is mounted.
	RequiredMountDir() string
	KernelInstallMethod() InstallMethod
	KernelInstallPath(vc version.Context) string
	InitrdPath(vc version.Context) string
	// ArtifactPaths lists the boot artifacts owned by kernelVersion, files before directories.
	ArtifactPaths(vc version.Context, kernelVersion string) []string
	WriteBootEntry(ctx context.Context, vc version.Context, cmdline string) error
	DeleteVersionArtifacts(vc version.Context, kernelVersion string) error
	// EnumerateOtherVersions returns the versions present on disk, excluding the active one, sorted.
	EnumerateOtherVersions(vc version.Context) ([]string, error)
}

// Deps carries what the adapters need from the rest of kup.
type Deps struct {
	Paths  config.Paths
	System System
	Runner runner.Runner
	// Title is the human-readable entry title.
	Title string
}

// New returns the adapter for variant.
func New(variant config.Variant, deps Deps) (Adapter, error) {
	if deps.System == nil {
		deps.System = RealSystem{}
	}
	layout := layout{paths: deps.Paths, sys: deps.System}
	switch variant {
	case config.VariantGrub:
		return &Grub{layout: layout, run: deps.Runner}, nil
	case config.VariantBootctlSplit:
		return &BootctlSplit{layout: layout, title: deps.Title}, nil
	case config.VariantBootctlUnified:
		return &BootctlUnified{layout: layout}, nil
	default:
		return nil, fault.Configf(messages.BootUnknownVariantFmt, variant)
	}
}

// layout holds the state shared by every adapter.
type layout struct {
	paths config.Paths
	sys   System
}

// deletePaths removes every path, treating an already-absent path as removed.
func (l layout) deletePaths(paths []string) error {
	for _, path := range paths {
		if err := l.sys.RemoveAll(path); err != nil {
			return fault.FS(messages.BootOpRemove, path, err)
		}
	}
	return nil
}

// readDir lists dir, returning no names when dir does not exist.
func (l layout) readDir(dir string) ([]fs.DirEntry, error) {
	entries, err := l.sys.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fault.FS(messages.BootOpReadDir, dir, err)
	}
	return entries, nil
}

// versionSet collects versions, dropping the active one and invalid names.
type versionSet map[string]struct{}

func (s versionSet) add(active string, candidate string) {
	if candidate == active || version.Validate(candidate) != nil {
		return
	}
	s[candidate] = struct{}{}
}

func (s versionSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
