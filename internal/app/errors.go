package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrStart        = errors.New("service start failed")
	ErrNotStarted   = errors.New("service not started")
	ErrUnknownImage = errors.New("unknown image")
)
