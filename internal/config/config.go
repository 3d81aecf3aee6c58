package config

// Variant identifies the boot-manager layout kup maintains.
type Variant string

// Boot-manager variants.
const (
	VariantGrub           Variant = "grub"
	VariantBootctlSplit   Variant = "bootctl-split"
	VariantBootctlUnified Variant = "bootctl-unified"
)

// Boot manager names accepted in boot.manager.
const (
	ManagerGrub    = "grub"
	ManagerBootctl = "bootctl"
)

// Config is the decoded kup configuration. It is built once per run and passed by value.
type Config struct {
	Boot    BootConfig    `toml:"boot"`
	Kernel  KernelConfig  `toml:"kernel"`
	Initrd  InitrdConfig  `toml:"initrd"`
	Modules ModulesConfig `toml:"modules"`
}

// BootConfig selects the boot manager and what goes into its entries.
type BootConfig struct {
	Manager string `toml:"manager"`
	Unified bool   `toml:"unified"`
	Mount   bool   `toml:"mount"`
	Cmdline string `toml:"cmdline"`
	Title   string `toml:"title"`
	Splash  string `toml:"splash"`
}

// KernelConfig describes the kernel source tree and how it is built.
type KernelConfig struct {
	SourceLink  string `toml:"source_link"`
	Jobs        int    `toml:"jobs"`
	SaveConfig  bool   `toml:"save_config"`
	ConfigStore string `toml:"config_store"`
}

// InitrdConfig controls the external ramdisk generator.
type InitrdConfig struct {
	Generator string   `toml:"generator"`
	Include   []string `toml:"include"`
}

// ModulesConfig controls the package-manager rebuild of out-of-tree modules.
type ModulesConfig struct {
	Rebuild    bool   `toml:"rebuild"`
	PackageSet string `toml:"package_set"`
}

// Overrides carries command-line flags that take precedence over the file.
// A nil field leaves the configured value in place.
type Overrides struct {
	RebuildModules *bool
	SaveConfig     *bool
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Boot: BootConfig{
			Manager: ManagerGrub,
		},
		Kernel: KernelConfig{
			SourceLink:  "/usr/src/linux",
			ConfigStore: "/etc/kernels/kernel-config",
		},
		Initrd: InitrdConfig{
			Generator: "dracut",
		},
		Modules: ModulesConfig{
			PackageSet: "@module-rebuild",
		},
	}
}

// Variant returns the boot-manager variant selected by the config.
// The result is only meaningful for a validated config.
func (c Config) Variant() Variant {
	if c.Boot.Manager == ManagerGrub {
		return VariantGrub
	}
	if c.Boot.Unified {
		return VariantBootctlUnified
	}
	return VariantBootctlSplit
}

// With returns a copy of c with the overrides applied.
func (c Config) With(o Overrides) Config {
	out := c
	out.Initrd.Include = append([]string(nil), c.Initrd.Include...)
	if o.RebuildModules != nil {
		out.Modules.Rebuild = *o.RebuildModules
	}
	if o.SaveConfig != nil {
		out.Kernel.SaveConfig = *o.SaveConfig
	}
	return out
}
