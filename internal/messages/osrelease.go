package messages

// OSRelease messages for os-release parsing.
const (
	OSReleaseLineErrorFmt      = "os-release line %d: %w"
	OSReleaseReadFailedFmt     = "read os-release: %w"
	OSReleaseExpectedKeyValue  = "expected KEY=VALUE"
	OSReleaseUnterminatedQuote = "unterminated quoted value"
)
