package predictor

import "errors"

// Sentinel error kinds for prediction.
var (
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	ErrNotReady          = errors.New("predictor not ready")
	ErrPredict           = errors.New("prediction failed")
)
