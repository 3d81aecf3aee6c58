package messages

// CLI messages for user-facing commands and output.
const (
	// RootUse is the CLI command name.
	RootUse   = "kup"
	RootShort = "Build, install and register the active kernel"
	RootLong  = `kup rebuilds the kernel that /usr/src/linux points at and keeps its boot
artifacts consistent: kernel image, modules, initrd and boot entry.

Without a command every stage runs in order:
  compile, install, updatemods (when module rebuild is enabled), mkinitrd,
  updatebm, clean

Invoked as kup-<stage>, the binary runs that stage alone.`
	RootVersionFlag = "Print version and exit"

	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagConfig         = "Path to the configuration file (default /etc/kup/config.toml)"
	FlagRebuildModules = "Rebuild out-of-tree kernel modules before generating the initrd"
	FlagSaveConfig     = "Save the updated kernel configuration without asking (newconfig)"
	FlagRoot           = "Filesystem root to operate on"

	StageCompileShort    = "Compile the kernel and modules"
	StageInstallShort    = "Replace the installed kernel image and module tree"
	StageUpdateModsShort = "Rebuild out-of-tree kernel modules"
	StageMkinitrdShort   = "Generate the initrd (and the unified image when enabled)"
	StageUpdateBMShort   = "Register the kernel with the boot manager"
	StageNewConfigShort  = "Update .config for the active source tree and optionally save it"
	StageCleanShort      = "Remove kernels, sources and modules of other versions"

	// StageBannerFmt introduces each stage on the operator's terminal.
	StageBannerFmt = ">>> %s"
	RunSucceeded   = "All stages completed."

	FailureHeaderFmt  = "kup failed: %v"
	FailureStageFmt   = "  stage: %s"
	FailureStepFmt    = "  step:  %s"
	FailureKindFmt    = "  kind:  %s"
	FailureLogFmt     = "  log:   %s"
	FailureNoRollback = "Completed stages were not rolled back."
)
