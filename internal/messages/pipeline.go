package messages

// Pipeline messages for stage selection and the run bracket.
const (
	PipelineUnknownStageFmt      = "unknown stage %q (want %s)"
	PipelineUnifiedStageFmt      = "stage %s is not available with %s: run all stages to rebuild the unified image"
	PipelineBootNotMountedFmt    = "%s not found: mount /boot or set boot.mount = true"
	PipelineBootStillMissingFmt  = "%s still missing after mounting %s"
	PipelineCmdlineUnreadableFmt = "boot.cmdline is empty and %s is unreadable: %v"
	PipelineTitleFallback        = "os-release unreadable; using default entry title"
	PipelineRunStart             = "run started"
	PipelineStageStart           = "stage started"
	PipelineStageDone            = "stage finished"
	PipelineUnmountFailed        = "unmounting /boot failed"
)
