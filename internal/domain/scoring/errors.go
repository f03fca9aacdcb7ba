package scoring

import "errors"

// Sentinel kinds for aggregation errors. The invalid-data kinds are fatal for
// the node that carries them and never for its siblings.
var (
	ErrInvalidWeight   = errors.New("invalid weight")
	ErrInvalidMaxScore = errors.New("invalid max score")
	ErrInvalidScore    = errors.New("invalid evaluation score")
	ErrUnknownProgram  = errors.New("program not found")
)
