package model

import "github.com/google/uuid"

// Scope narrows aggregation the way a dashboard does. Zero values mean "all":
// uuid.Nil matches every unit/assessor and Year 0 matches every year.
type Scope struct {
	ProgramID  uuid.UUID `json:"program_id"`
	UnitID     uuid.UUID `json:"unit_id"`
	AssessorID uuid.UUID `json:"assessor_id"`
	Year       int       `json:"year"`
}

// Includes reports whether an assignment falls inside the scope.
func (s Scope) Includes(a Assignment) bool {
	if s.ProgramID != uuid.Nil && a.ProgramID != uuid.Nil && a.ProgramID != s.ProgramID {
		return false
	}
	if s.UnitID != uuid.Nil && a.UnitID != s.UnitID {
		return false
	}
	if s.AssessorID != uuid.Nil && a.AssessorID != s.AssessorID {
		return false
	}
	if s.Year != 0 && a.AssignedAt.Year() != s.Year {
		return false
	}
	return true
}

// IncludesEvaluation reports whether an evaluation's assessor is in scope.
func (s Scope) IncludesEvaluation(e Evaluation) bool {
	return s.AssessorID == uuid.Nil || e.AssessorID == s.AssessorID
}
