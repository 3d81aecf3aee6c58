// Package version resolves the kernel version and machine identity a run operates on.
package version

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/conn-castle/kup/internal/config"
	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
)

const (
	// SourcePrefix is stripped from the kernel source link target to form the version.
	SourcePrefix = "linux-"
	// BuildMarker must exist in the kernel source tree.
	BuildMarker = "Makefile"
)

// Context is the immutable per-run view of the active kernel.
type Context struct {
	KernelVersion string
	// MachineID is empty when the selected boot manager does not need it.
	MachineID string
	SourceDir string
	// Arch is the kernel's name for the architecture (x86, arm64, ...).
	Arch string
}

// Resolve reads the kernel source link and machine identity.
// When requireMachineID is set a missing or empty machine id is a ConfigurationError.
// sys reads the filesystem and uname; paths locates the source link and machine id.
func Resolve(sys System, paths config.Paths, requireMachineID bool) (Context, error) {
	link := paths.SourceLink
	info, err := sys.Lstat(link)
	if err != nil {
		return Context{}, fault.Configf(messages.VersionLinkMissingFmt, link, err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return Context{}, fault.Configf(messages.VersionNotSymlinkFmt, link)
	}
	target, err := sys.Readlink(link)
	if err != nil {
		return Context{}, fault.Configf(messages.VersionLinkMissingFmt, link, err)
	}

	base := filepath.Base(target)
	if !strings.HasPrefix(base, SourcePrefix) {
		return Context{}, fault.Configf(messages.VersionPrefixMissingFmt, link, target, SourcePrefix)
	}
	kernelVersion := strings.TrimPrefix(base, SourcePrefix)
	if err := Validate(kernelVersion); err != nil {
		return Context{}, err
	}

	sourceDir := target
	if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(filepath.Dir(link), target)
	}
	if dirInfo, err := sys.Stat(sourceDir); err != nil || !dirInfo.IsDir() {
		return Context{}, fault.Configf(messages.VersionSourceNotDirFmt, sourceDir)
	}
	if _, err := sys.Stat(filepath.Join(sourceDir, BuildMarker)); err != nil {
		return Context{}, fault.Configf(messages.VersionMarkerMissingFmt, sourceDir, BuildMarker)
	}

	machineID, err := readMachineID(sys, paths.MachineID)
	if err != nil && requireMachineID {
		return Context{}, err
	}

	machine, err := sys.Machine()
	if err != nil {
		return Context{}, fault.Configf(messages.VersionUnameFailedFmt, err)
	}

	return Context{
		KernelVersion: kernelVersion,
		MachineID:     machineID,
		SourceDir:     sourceDir,
		Arch:          KernelArch(machine),
	}, nil
}

// Validate rejects version strings that cannot be embedded in paths and command arguments.
func Validate(kernelVersion string) error {
	if kernelVersion == "" {
		return fault.Configf(messages.VersionEmpty)
	}
	for _, r := range kernelVersion {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			return fault.Configf(messages.VersionInvalidCharFmt, kernelVersion)
		}
	}
	return nil
}

func readMachineID(sys System, path string) (string, error) {
	data, err := sys.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fault.Configf(messages.VersionMachineIDMissingFmt, path)
	}
	if err != nil {
		return "", fault.Configf(messages.VersionMachineIDReadFmt, path, err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fault.Configf(messages.VersionMachineIDMissingFmt, path)
	}
	return id, nil
}

// KernelArch maps a uname machine name to the kernel's arch/ directory name.
// machine is uname's machine field, e.g. x86_64 or aarch64.
func KernelArch(machine string) string {
	switch machine {
	case "x86_64", "i386", "i486", "i586", "i686":
		return "x86"
	case "aarch64", "arm64":
		return "arm64"
	case "riscv64":
		return "riscv"
	case "ppc64", "ppc64le":
		return "powerpc"
	}
	if strings.HasPrefix(machine, "arm") {
		return "arm"
	}
	return machine
}

// KernelImage returns the path of the compiled kernel image in the source tree.
func (c Context) KernelImage() string {
	return filepath.Join(c.SourceDir, "arch", c.Arch, "boot", imageName(c.Arch))
}

func imageName(arch string) string {
	switch arch {
	case "x86":
		return "bzImage"
	case "arm64", "riscv":
		return "Image"
	case "arm", "powerpc":
		return "zImage"
	default:
		return "vmlinux"
	}
}
