package grading

import "errors"

var (
	// ErrUnknownScale is returned for a scale name outside Scales().
	ErrUnknownScale = errors.New("unknown grading scale")
	// ErrDomainMismatch is returned when a measure is classified under a scale
	// that expects a different input domain.
	ErrDomainMismatch = errors.New("measure domain does not match scale")
)
