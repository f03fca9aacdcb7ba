// Package assignment guards evaluation writes and derives assignment status.
package assignment

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/akreditasi/internal/domain/model"
)

// IsLocked reports whether a rejects evaluation writes.
func IsLocked(a model.Assignment) bool {
	return a.Lock != nil
}

// CheckWritable is the precondition for every evaluation write. Persistence
// layers call it again inside their write transaction after locking the row.
func CheckWritable(a model.Assignment) error {
	if IsLocked(a) {
		return fmt.Errorf("%w: %s locked by %s at %s", ErrLocked, a.ID, a.Lock.By, a.Lock.At.Format(time.RFC3339))
	}
	if !a.Active() || a.Status == model.StatusCancelled {
		return fmt.Errorf("%w: %s", ErrInactive, a.ID)
	}
	return nil
}

// CheckScore validates score against the point it is recorded on.
func CheckScore(p model.CriteriaPoint, score float64) error {
	if math.IsNaN(score) || score < 0 || score > p.MaxScore {
		return fmt.Errorf("%w: %v not in [0, %v] for point %s", ErrScoreOutOfRange, score, p.MaxScore, p.ID)
	}
	return nil
}

// CheckPoint validates that p, a point of program owner, may be scored under a.
func CheckPoint(a model.Assignment, p model.CriteriaPoint, owner model.Program) error {
	if !a.Covers(owner, p.CriterionID) {
		return fmt.Errorf("%w: point %s, assignment %s", ErrPointMismatch, p.ID, a.ID)
	}
	return nil
}

// CheckSubmission runs every precondition of writing e under a, where p is the
// point e scores and owner the program p belongs to.
func CheckSubmission(a model.Assignment, p model.CriteriaPoint, owner model.Program, e model.Evaluation) error {
	if err := CheckWritable(a); err != nil {
		return err
	}
	if e.AssessorID != a.AssessorID {
		return fmt.Errorf("%w: %s on %s", ErrNotAssessor, e.AssessorID, a.ID)
	}
	if err := CheckPoint(a, p, owner); err != nil {
		return err
	}
	return CheckScore(p, e.Score)
}
