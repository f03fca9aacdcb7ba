package model

import (
	"sort"

	"github.com/google/uuid"
)

// SnapshotData is everything a dashboard needs, batch-loaded once.
type SnapshotData struct {
	Programs    []Program    `json:"programs"`
	Assignments []Assignment `json:"assignments"`
	Evaluations []Evaluation `json:"evaluations"`
	// AssignmentDocuments is keyed by assignment id.
	AssignmentDocuments map[uuid.UUID]DocumentCounts `json:"assignment_documents"`
	// ProgramDocuments is keyed by program id.
	ProgramDocuments map[uuid.UUID]DocumentCounts `json:"program_documents"`
	Targets          []Target                     `json:"targets"`
}

// Snapshot is an immutable, indexed view over SnapshotData. It is shared by
// reference between the aggregator, gap analyzer and risk scorer and is safe
// for concurrent reads.
type Snapshot struct {
	data SnapshotData

	programs         map[uuid.UUID]int
	criterionProgram map[uuid.UUID]uuid.UUID
	points           map[uuid.UUID]CriteriaPoint
	assignments      map[uuid.UUID]int
	byCriterion      map[uuid.UUID][]int
	byProgram        map[uuid.UUID][]int
	evaluations      map[uuid.UUID][]int
}

// NewSnapshot indexes data. The caller must not mutate data afterwards.
func NewSnapshot(data SnapshotData) *Snapshot {
	s := &Snapshot{
		data:             data,
		programs:         make(map[uuid.UUID]int, len(data.Programs)),
		criterionProgram: make(map[uuid.UUID]uuid.UUID),
		points:           make(map[uuid.UUID]CriteriaPoint),
		assignments:      make(map[uuid.UUID]int, len(data.Assignments)),
		byCriterion:      make(map[uuid.UUID][]int),
		byProgram:        make(map[uuid.UUID][]int),
		evaluations:      make(map[uuid.UUID][]int),
	}

	for i, p := range data.Programs {
		s.programs[p.ID] = i
		for _, st := range p.Standards {
			for _, c := range st.Criteria {
				s.criterionProgram[c.ID] = p.ID
				for _, pt := range c.Points {
					s.points[pt.ID] = pt
				}
			}
		}
	}

	for i, a := range data.Assignments {
		s.assignments[a.ID] = i
		if !a.UnitScoped() {
			s.byCriterion[a.CriterionID] = append(s.byCriterion[a.CriterionID], i)
			programID := a.ProgramID
			if programID == uuid.Nil {
				programID = s.criterionProgram[a.CriterionID]
			}
			if programID != uuid.Nil {
				s.byProgram[programID] = append(s.byProgram[programID], i)
			}
			continue
		}
		// Unit-scoped assignments are indexed under every criterion they cover.
		for _, p := range data.Programs {
			if !a.Covers(p, uuid.Nil) {
				continue
			}
			s.byProgram[p.ID] = append(s.byProgram[p.ID], i)
			for _, st := range p.Standards {
				for _, c := range st.Criteria {
					s.byCriterion[c.ID] = append(s.byCriterion[c.ID], i)
				}
			}
		}
	}

	for i, e := range data.Evaluations {
		s.evaluations[e.AssignmentID] = append(s.evaluations[e.AssignmentID], i)
	}

	return s
}

// Programs returns the programs in load order.
func (s *Snapshot) Programs() []Program {
	return s.data.Programs
}

// Program looks up a program by id.
func (s *Snapshot) Program(id uuid.UUID) (Program, bool) {
	i, ok := s.programs[id]
	if !ok {
		return Program{}, false
	}
	return s.data.Programs[i], true
}

// Point looks up a criteria point by id.
func (s *Snapshot) Point(id uuid.UUID) (CriteriaPoint, bool) {
	p, ok := s.points[id]
	return p, ok
}

// Assignment looks up an assignment by id.
func (s *Snapshot) Assignment(id uuid.UUID) (Assignment, bool) {
	i, ok := s.assignments[id]
	if !ok {
		return Assignment{}, false
	}
	return s.data.Assignments[i], true
}

// AssignmentsForCriterion returns every assignment (active or not) covering a
// criterion, unit-scoped ones included.
func (s *Snapshot) AssignmentsForCriterion(criterionID uuid.UUID) []Assignment {
	return s.collect(s.byCriterion[criterionID])
}

// AssignmentsForProgram returns every assignment attached to the program,
// including unit/program-scoped ones.
func (s *Snapshot) AssignmentsForProgram(programID uuid.UUID) []Assignment {
	return s.collect(s.byProgram[programID])
}

func (s *Snapshot) collect(idx []int) []Assignment {
	out := make([]Assignment, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.data.Assignments[i])
	}
	return out
}

// EvaluationsFor returns the evaluations recorded under an assignment.
func (s *Snapshot) EvaluationsFor(assignmentID uuid.UUID) []Evaluation {
	idx := s.evaluations[assignmentID]
	out := make([]Evaluation, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.data.Evaluations[i])
	}
	return out
}

// AssignmentDocuments returns the document counts of an assignment.
func (s *Snapshot) AssignmentDocuments(assignmentID uuid.UUID) DocumentCounts {
	return s.data.AssignmentDocuments[assignmentID]
}

// ProgramDocuments returns the document counts of a program.
func (s *Snapshot) ProgramDocuments(programID uuid.UUID) DocumentCounts {
	return s.data.ProgramDocuments[programID]
}

// Target returns the program's target for year. Year 0 picks the latest year.
func (s *Snapshot) Target(programID uuid.UUID, year int) (Target, bool) {
	var found []Target
	for _, t := range s.data.Targets {
		if t.ProgramID != programID {
			continue
		}
		if year != 0 && t.Year != year {
			continue
		}
		found = append(found, t)
	}
	if len(found) == 0 {
		return Target{}, false
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Year > found[j].Year })
	return found[0], true
}
