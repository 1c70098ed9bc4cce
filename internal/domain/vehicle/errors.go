package vehicle

import "errors"

// Sentinel errors for configuration parsing and validation.
var (
	ErrUnknownOption = errors.New("unknown option")
	ErrOutOfRange    = errors.New("value out of range")
)
