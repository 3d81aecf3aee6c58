package messages

// Config messages for configuration loading and validation.
const (
	// ConfigReadFileFmt formats config read errors other than a missing file.
	ConfigReadFileFmt      = "read config file %s: %v"
	ConfigInvalidConfigFmt = "invalid config %s: %v"
	ConfigUnknownKeysFmt   = "%s: unrecognized keys: %v"

	ConfigBootManagerInvalidFmt     = "%s: boot.manager must be one of grub, bootctl (got %q)"
	ConfigUnifiedRequiresBootctlFmt = "%s: boot.unified requires boot.manager = \"bootctl\""
	ConfigSplashRequiresUnifiedFmt  = "%s: boot.splash is only used with boot.unified = true"
	ConfigJobsNegativeFmt           = "%s: kernel.jobs must not be negative"
	ConfigGeneratorRequiredFmt      = "%s: initrd.generator is required"
	ConfigPackageSetRequiredFmt     = "%s: modules.package_set is required"
	ConfigIncludeRelativeFmt        = "%s: initrd.include[%d] must be an absolute path (got %q)"
	ConfigPathRelativeFmt           = "%s: %s must be an absolute path (got %q)"
)
