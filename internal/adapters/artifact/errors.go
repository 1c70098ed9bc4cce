package artifact

import "errors"

// Sentinel error kinds for artifact loading and use.
var (
	ErrLoadArtifact    = errors.New("load artifact failed")
	ErrInvalidArtifact = errors.New("invalid artifact")
	ErrShape           = errors.New("input shape mismatch")
)
