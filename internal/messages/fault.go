package messages

// Fault messages describe failure categories and their rendering.
const (
	FaultConfiguration = "configuration error"
	FaultExternalStep  = "external step failed"
	FaultFilesystem    = "filesystem error"

	FaultStepExitFmt  = "step %q (%s) exited with status %d"
	FaultStepStartFmt = "step %q (%s) could not run: %v"
	FaultFSFmt        = "%s %s: %v"
	FaultStageFmt     = "stage %s: %v"

	FaultKindConfiguration = "ConfigurationError"
	FaultKindExternalStep  = "ExternalStepFailure"
	FaultKindFilesystem    = "FilesystemError"
	FaultKindUnknown       = "Error"
)
