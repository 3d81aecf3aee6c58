package config

import "path/filepath"

// Paths holds the well-known filesystem locations kup reads and writes.
// Every path is rooted at Root so a staging tree can stand in for "/".
type Paths struct {
	Root        string
	ConfigPath  string
	SourceLink  string
	SourceDir   string
	ModulesDir  string
	BootDir     string
	MachineID   string
	OSRelease   string
	ProcCmdline string
	StubDir     string
	WorkDir     string
	LogPath     string
	ConfigStore string
}

// DefaultConfigPath is the config location relative to the filesystem root.
const DefaultConfigPath = "/etc/kup/config.toml"

// DefaultPaths returns the default locations under root.
// root is the filesystem root, "/" outside tests.
func DefaultPaths(root string) Paths {
	return Paths{
		Root:        root,
		ConfigPath:  filepath.Join(root, DefaultConfigPath),
		SourceLink:  filepath.Join(root, "usr", "src", "linux"),
		SourceDir:   filepath.Join(root, "usr", "src"),
		ModulesDir:  filepath.Join(root, "lib", "modules"),
		BootDir:     filepath.Join(root, "boot"),
		MachineID:   filepath.Join(root, "etc", "machine-id"),
		OSRelease:   filepath.Join(root, "etc", "os-release"),
		ProcCmdline: filepath.Join(root, "proc", "cmdline"),
		StubDir:     filepath.Join(root, "usr", "lib", "systemd", "boot", "efi"),
		WorkDir:     filepath.Join(root, "var", "tmp", "kup"),
		LogPath:     filepath.Join(root, "var", "log", "kup.log"),
		ConfigStore: filepath.Join(root, "etc", "kernels", "kernel-config"),
	}
}

// ResolvePaths returns the default locations under root with the
// configurable ones taken from cfg.
func ResolvePaths(root string, cfg Config) Paths {
	paths := DefaultPaths(root)
	if cfg.Kernel.SourceLink != "" {
		paths.SourceLink = filepath.Join(root, cfg.Kernel.SourceLink)
		paths.SourceDir = filepath.Dir(paths.SourceLink)
	}
	if cfg.Kernel.ConfigStore != "" {
		paths.ConfigStore = filepath.Join(root, cfg.Kernel.ConfigStore)
	}
	return paths
}

// Under returns p re-rooted at the paths' filesystem root.
func (p Paths) Under(path string) string {
	return filepath.Join(p.Root, path)
}
