package smoke

import "errors"

// Sentinel errors for smoke runs.
var (
	ErrUnreachable      = errors.New("service unreachable")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrChecksFailed     = errors.New("smoke checks failed")
)
