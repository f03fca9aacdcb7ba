package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an assignment.
type Status string

// Assignment statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Lock records who locked an assignment and when. A nil *Lock means unlocked.
type Lock struct {
	By uuid.UUID `json:"by"`
	At time.Time `json:"at"`
}

// Assignment links a criterion (or a whole unit/program when CriterionID is
// uuid.Nil) to one assessor.
type Assignment struct {
	ID           uuid.UUID  `json:"id"`
	CriterionID  uuid.UUID  `json:"criterion_id"`
	ProgramID    uuid.UUID  `json:"program_id"`
	UnitID       uuid.UUID  `json:"unit_id"`
	AssessorID   uuid.UUID  `json:"assessor_id"`
	Status       Status     `json:"status"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
	Lock         *Lock      `json:"lock,omitempty"`
}

// Active reports whether the assignment still participates in aggregation.
func (a Assignment) Active() bool {
	return a.UnassignedAt == nil
}

// Locked reports whether the assignment rejects evaluation writes.
func (a Assignment) Locked() bool {
	return a.Lock != nil
}

// Unresolved reports whether an active assignment still awaits completion.
func (a Assignment) Unresolved() bool {
	return a.Active() && a.Status != StatusCompleted && a.Status != StatusCancelled
}

// UnitScoped reports whether the assignment covers a program or unit rather
// than a single criterion.
func (a Assignment) UnitScoped() bool {
	return a.CriterionID == uuid.Nil
}

// Covers reports whether points of criterionID, a criterion of program p, fall
// under the assignment. A unit-scoped assignment covers every criterion of its
// program, or of every program in its unit when it names no program.
func (a Assignment) Covers(p Program, criterionID uuid.UUID) bool {
	if !a.UnitScoped() {
		return a.CriterionID == criterionID
	}
	if a.ProgramID != uuid.Nil {
		return a.ProgramID == p.ID
	}
	return a.UnitID != uuid.Nil && a.UnitID == p.UnitID
}
