package smoke

import "time"

// Defaults for the CLI flags.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultSamples = 200
	DefaultRepeats = 20
	DefaultTimeout = 10 * time.Second
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// File permission constants.
const (
	directoryPermission = 0o750
	reportPermission    = 0o600
)
