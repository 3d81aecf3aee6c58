package messages

// Boot messages for boot-manager adapters and artifact handling.
const (
	BootUnknownVariantFmt = "unknown boot manager variant %q"

	BootOpRemove  = "remove"
	BootOpReadDir = "read directory"
	BootOpMkdir   = "create directory"
	BootOpWrite   = "write"
	BootOpCopy    = "copy"
	BootOpRename  = "rename"
	BootOpStat    = "stat"
)
