package assignment

import (
	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/model"
)

// NextStatus derives the status an assignment should move to given the
// criteria points it covers and the evaluations recorded under it. Only the
// assignment's own assessor's evaluations count. Cancelled is terminal.
func NextStatus(a model.Assignment, points []uuid.UUID, evals []model.Evaluation) model.Status {
	if a.Status == model.StatusCancelled {
		return model.StatusCancelled
	}

	final := make(map[uuid.UUID]bool, len(evals))
	n := 0
	for _, e := range evals {
		if e.AssignmentID != a.ID || e.AssessorID != a.AssessorID {
			continue
		}
		n++
		final[e.CriteriaPointID] = final[e.CriteriaPointID] || e.Final()
	}
	if n == 0 {
		return model.StatusPending
	}

	if len(points) == 0 {
		// Unit-scoped assignments complete once every recorded evaluation is final.
		for _, ok := range final {
			if !ok {
				return model.StatusInProgress
			}
		}
		return model.StatusCompleted
	}
	for _, p := range points {
		if !final[p] {
			return model.StatusInProgress
		}
	}
	return model.StatusCompleted
}

// Progress is completed over active, non-cancelled assignments as a
// percentage, or nil when there is nothing to measure.
func Progress(assignments []model.Assignment) *float64 {
	var active, completed int
	for _, a := range assignments {
		if !a.Active() || a.Status == model.StatusCancelled {
			continue
		}
		active++
		if a.Status == model.StatusCompleted {
			completed++
		}
	}
	if active == 0 {
		return nil
	}
	p := float64(completed) / float64(active) * 100
	return &p
}

// Unresolved counts active assignments that still await completion.
func Unresolved(assignments []model.Assignment) int {
	n := 0
	for _, a := range assignments {
		if a.Unresolved() {
			n++
		}
	}
	return n
}
