package api

import (
	"context"
	"errors"
	"net/http"

	jobqueue "github.com/okian/akreditasi/internal/adapters/mq/queue"
	"github.com/okian/akreditasi/internal/adapters/repository"
	service "github.com/okian/akreditasi/internal/app"
	"github.com/okian/akreditasi/internal/domain/assignment"
	"github.com/okian/akreditasi/internal/domain/grading"
	"github.com/okian/akreditasi/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// opError tags an error with the handler operation that produced it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	if e.err == nil {
		return e.op + ": " + e.kind.Error()
	}
	return e.op + ": " + e.kind.Error() + ": " + e.err.Error()
}

func (e *opError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// wrapKind attaches op and kind to err.
func wrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// newKind returns an error of kind for op.
func newKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// statusFor maps upstream errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, assignment.ErrLocked):
		return http.StatusConflict, "locked"
	case errors.Is(err, assignment.ErrInactive):
		return http.StatusConflict, "inactive"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, scoring.ErrUnknownProgram):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, assignment.ErrScoreOutOfRange):
		return http.StatusBadRequest, "score_out_of_range"
	case errors.Is(err, assignment.ErrNotAssessor):
		return http.StatusBadRequest, "not_assessor"
	case errors.Is(err, assignment.ErrPointMismatch):
		return http.StatusBadRequest, "point_mismatch"
	case errors.Is(err, grading.ErrUnknownScale):
		return http.StatusBadRequest, "unknown_scale"
	case errors.Is(err, repository.ErrInvalidLimit), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, jobqueue.ErrFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, jobqueue.ErrStopped), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
