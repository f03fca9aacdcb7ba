// Package modeltest builds hierarchy snapshots for tests.
package modeltest

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/model"
)

// AssignedAt is the assignment date every builder assignment gets.
var AssignedAt = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

// Builder accumulates SnapshotData with deterministic ids.
type Builder struct {
	data model.SnapshotData
	seq  int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{data: model.SnapshotData{
		AssignmentDocuments: make(map[uuid.UUID]model.DocumentCounts),
		ProgramDocuments:    make(map[uuid.UUID]model.DocumentCounts),
	}}
}

// ID returns a deterministic id for kind.
func (b *Builder) ID(kind string) uuid.UUID {
	b.seq++
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s-%d", kind, b.seq)))
}

// Program adds a program.
func (b *Builder) Program(name string) uuid.UUID {
	id := b.ID("program")
	b.data.Programs = append(b.data.Programs, model.Program{ID: id, Name: name, UnitID: b.ID("unit")})
	return id
}

// Standard adds a standard to a program.
func (b *Builder) Standard(programID uuid.UUID, name string, weight float64) uuid.UUID {
	id := b.ID("standard")
	p := b.program(programID)
	p.Standards = append(p.Standards, model.Standard{ID: id, ProgramID: programID, Name: name, Weight: weight})
	return id
}

// Criterion adds a criterion to a standard.
func (b *Builder) Criterion(standardID uuid.UUID, name string, weight float64, category model.Category) uuid.UUID {
	id := b.ID("criterion")
	s := b.standard(standardID)
	s.Criteria = append(s.Criteria, model.Criterion{ID: id, StandardID: standardID, Name: name, Weight: weight, Category: category})
	return id
}

// Point adds a criteria point to a criterion.
func (b *Builder) Point(criterionID uuid.UUID, name string, maxScore float64) uuid.UUID {
	id := b.ID("point")
	c := b.criterion(criterionID)
	c.Points = append(c.Points, model.CriteriaPoint{ID: id, CriterionID: criterionID, Name: name, MaxScore: maxScore})
	return id
}

// Assign adds an active, pending assignment of a criterion.
func (b *Builder) Assign(criterionID, assessorID uuid.UUID) uuid.UUID {
	id := b.ID("assignment")
	programID := uuid.Nil
	unitID := uuid.Nil
	for _, p := range b.data.Programs {
		for _, s := range p.Standards {
			for _, c := range s.Criteria {
				if c.ID == criterionID {
					programID, unitID = p.ID, p.UnitID
				}
			}
		}
	}
	b.data.Assignments = append(b.data.Assignments, model.Assignment{
		ID:          id,
		CriterionID: criterionID,
		ProgramID:   programID,
		UnitID:      unitID,
		AssessorID:  assessorID,
		Status:      model.StatusPending,
		AssignedAt:  AssignedAt,
	})
	return id
}

// AssignProgram adds an active, pending assignment covering a whole program.
func (b *Builder) AssignProgram(programID, assessorID uuid.UUID) uuid.UUID {
	id := b.ID("assignment")
	p := b.program(programID)
	b.data.Assignments = append(b.data.Assignments, model.Assignment{
		ID:         id,
		ProgramID:  programID,
		UnitID:     p.UnitID,
		AssessorID: assessorID,
		Status:     model.StatusPending,
		AssignedAt: AssignedAt,
	})
	return id
}

// Evaluate records a score on a point under an assignment by its assessor.
func (b *Builder) Evaluate(assignmentID, pointID uuid.UUID, score float64) {
	a := b.assignment(assignmentID)
	b.data.Evaluations = append(b.data.Evaluations, model.Evaluation{
		AssignmentID:    assignmentID,
		AssessorID:      a.AssessorID,
		CriteriaPointID: pointID,
		Score:           score,
		CreatedAt:       AssignedAt,
		UpdatedAt:       AssignedAt,
	})
}

// SetStatus overrides an assignment status.
func (b *Builder) SetStatus(assignmentID uuid.UUID, status model.Status) {
	b.assignment(assignmentID).Status = status
}

// Unassign deactivates an assignment.
func (b *Builder) Unassign(assignmentID uuid.UUID) {
	at := AssignedAt.Add(24 * time.Hour)
	b.assignment(assignmentID).UnassignedAt = &at
}

// LockAssignment locks an assignment.
func (b *Builder) LockAssignment(assignmentID, by uuid.UUID) {
	b.assignment(assignmentID).Lock = &model.Lock{By: by, At: AssignedAt.Add(48 * time.Hour)}
}

// Documents sets the document counts of an assignment.
func (b *Builder) Documents(assignmentID uuid.UUID, c model.DocumentCounts) {
	b.data.AssignmentDocuments[assignmentID] = c
}

// ProgramDocuments sets the document counts of a program.
func (b *Builder) ProgramDocuments(programID uuid.UUID, c model.DocumentCounts) {
	b.data.ProgramDocuments[programID] = c
}

// Target adds a target.
func (b *Builder) Target(programID uuid.UUID, year int, score float64, domain model.Domain) {
	b.data.Targets = append(b.data.Targets, model.Target{ProgramID: programID, Year: year, Score: score, Domain: domain})
}

// Data returns the accumulated data.
func (b *Builder) Data() model.SnapshotData {
	return b.data
}

// Snapshot indexes the accumulated data.
func (b *Builder) Snapshot() *model.Snapshot {
	return model.NewSnapshot(b.data)
}

func (b *Builder) program(id uuid.UUID) *model.Program {
	for i := range b.data.Programs {
		if b.data.Programs[i].ID == id {
			return &b.data.Programs[i]
		}
	}
	panic("modeltest: unknown program " + id.String())
}

func (b *Builder) standard(id uuid.UUID) *model.Standard {
	for i := range b.data.Programs {
		for j := range b.data.Programs[i].Standards {
			if b.data.Programs[i].Standards[j].ID == id {
				return &b.data.Programs[i].Standards[j]
			}
		}
	}
	panic("modeltest: unknown standard " + id.String())
}

func (b *Builder) criterion(id uuid.UUID) *model.Criterion {
	for i := range b.data.Programs {
		for j := range b.data.Programs[i].Standards {
			s := &b.data.Programs[i].Standards[j]
			for k := range s.Criteria {
				if s.Criteria[k].ID == id {
					return &s.Criteria[k]
				}
			}
		}
	}
	panic("modeltest: unknown criterion " + id.String())
}

func (b *Builder) assignment(id uuid.UUID) *model.Assignment {
	for i := range b.data.Assignments {
		if b.data.Assignments[i].ID == id {
			return &b.data.Assignments[i]
		}
	}
	panic("modeltest: unknown assignment " + id.String())
}
