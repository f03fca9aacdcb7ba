package queue

import "errors"

// Sentinel errors for queue producers.
var (
	// ErrFull is returned by callers that treat a refused enqueue as an error.
	ErrFull = errors.New("recompute queue full")
	// ErrStopped is returned once the queue has been closed.
	ErrStopped = errors.New("recompute queue stopped")
)
