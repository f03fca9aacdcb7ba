package service

import "errors"

// Sentinel errors for the service.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoStore    = errors.New("service has no store")
)
