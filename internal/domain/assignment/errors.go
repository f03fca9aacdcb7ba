package assignment

import "errors"

var (
	// ErrLocked rejects an evaluation write against a locked assignment.
	ErrLocked = errors.New("assignment is locked")
	// ErrInactive rejects writes against unassigned or cancelled assignments.
	ErrInactive = errors.New("assignment is not active")
	// ErrScoreOutOfRange rejects a score outside [0, max_score] of its point.
	ErrScoreOutOfRange = errors.New("score out of range")
	// ErrNotAssessor rejects evaluations by anyone but the assigned assessor.
	ErrNotAssessor = errors.New("assessor is not assigned")
	// ErrPointMismatch rejects a point that does not belong to the assignment's criterion.
	ErrPointMismatch = errors.New("criteria point does not belong to assignment")
)
