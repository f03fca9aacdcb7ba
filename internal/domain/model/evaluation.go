package model

import (
	"time"

	"github.com/google/uuid"
)

// Terminal evaluation statuses set when an assessor finalizes a point.
const (
	EvaluationPassed     = "passed"
	EvaluationInadequate = "inadequate"
)

// EvaluationKey identifies the single row an assessor owns for one point of one assignment.
type EvaluationKey struct {
	AssignmentID    uuid.UUID `json:"assignment_id"`
	AssessorID      uuid.UUID `json:"assessor_id"`
	CriteriaPointID uuid.UUID `json:"criteria_point_id"`
}

// String renders the key for logging and lock striping.
func (k EvaluationKey) String() string {
	return k.AssignmentID.String() + "/" + k.AssessorID.String() + "/" + k.CriteriaPointID.String()
}

// Evaluation is one assessor's score for one criteria point.
type Evaluation struct {
	AssignmentID    uuid.UUID `json:"assignment_id"`
	AssessorID      uuid.UUID `json:"assessor_id"`
	CriteriaPointID uuid.UUID `json:"criteria_point_id"`
	Score           float64   `json:"score"`
	// Status is nil while the evaluation is in progress.
	Status    *string   `json:"status,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the upsert key of the evaluation.
func (e Evaluation) Key() EvaluationKey {
	return EvaluationKey{
		AssignmentID:    e.AssignmentID,
		AssessorID:      e.AssessorID,
		CriteriaPointID: e.CriteriaPointID,
	}
}

// Final reports whether the assessor finalized the evaluation.
func (e Evaluation) Final() bool {
	return e.Status != nil && *e.Status != ""
}
