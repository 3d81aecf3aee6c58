package messages

// Runner messages logged around external steps.
const (
	RunnerStartFmt     = "run: %s"
	RunnerNotCompleted = "step did not complete"
	RunnerFailed       = "step failed"
	RunnerFinished     = "step finished"
)
