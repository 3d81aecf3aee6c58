package config

import (
	"path/filepath"
	"strings"

	"github.com/conn-castle/kup/internal/fault"
	"github.com/conn-castle/kup/internal/messages"
)

// Validate ensures the config is complete and consistent.
// Every failure is a ConfigurationError naming source.
func (c Config) Validate(source string) error {
	switch c.Boot.Manager {
	case ManagerGrub:
		if c.Boot.Unified {
			return fault.Configf(messages.ConfigUnifiedRequiresBootctlFmt, source)
		}
	case ManagerBootctl:
	default:
		return fault.Configf(messages.ConfigBootManagerInvalidFmt, source, c.Boot.Manager)
	}
	if c.Boot.Splash != "" {
		if !c.Boot.Unified {
			return fault.Configf(messages.ConfigSplashRequiresUnifiedFmt, source)
		}
		if !filepath.IsAbs(c.Boot.Splash) {
			return fault.Configf(messages.ConfigPathRelativeFmt, source, "boot.splash", c.Boot.Splash)
		}
	}
	if c.Kernel.Jobs < 0 {
		return fault.Configf(messages.ConfigJobsNegativeFmt, source)
	}
	if !filepath.IsAbs(c.Kernel.SourceLink) {
		return fault.Configf(messages.ConfigPathRelativeFmt, source, "kernel.source_link", c.Kernel.SourceLink)
	}
	if !filepath.IsAbs(c.Kernel.ConfigStore) {
		return fault.Configf(messages.ConfigPathRelativeFmt, source, "kernel.config_store", c.Kernel.ConfigStore)
	}
	if strings.TrimSpace(c.Initrd.Generator) == "" {
		return fault.Configf(messages.ConfigGeneratorRequiredFmt, source)
	}
	for i, path := range c.Initrd.Include {
		if !filepath.IsAbs(path) {
			return fault.Configf(messages.ConfigIncludeRelativeFmt, source, i, path)
		}
	}
	if strings.TrimSpace(c.Modules.PackageSet) == "" {
		return fault.Configf(messages.ConfigPackageSetRequiredFmt, source)
	}
	return nil
}
