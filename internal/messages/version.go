package messages

// Version messages for kernel version and machine identity resolution.
const (
	VersionLinkMissingFmt      = "kernel source link %s is unusable: %v"
	VersionNotSymlinkFmt       = "kernel source link %s is not a symbolic link"
	VersionPrefixMissingFmt    = "kernel source link %s points at %s, which does not start with %q"
	VersionSourceNotDirFmt     = "kernel source tree %s is not a directory"
	VersionMarkerMissingFmt    = "kernel source tree %s has no %s"
	VersionEmpty               = "kernel version is empty"
	VersionInvalidCharFmt      = "kernel version %q contains whitespace or quote characters"
	VersionMachineIDMissingFmt = "machine id missing or empty in %s (required by bootctl)"
	VersionMachineIDReadFmt    = "read machine id %s: %v"
	VersionUnameFailedFmt      = "uname: %v"
)
