package messages

// Clean messages for stale-version cleanup.
const (
	CleanBootVersion = "removing boot artifacts of stale version"
	CleanTree        = "removing stale tree"
)
