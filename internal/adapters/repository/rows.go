package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/okian/akreditasi/internal/domain/gap"
	"github.com/okian/akreditasi/internal/domain/model"
)

type programRow struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name   string    `gorm:"column:name;not null"`
	UnitID uuid.UUID `gorm:"column:unit_id;type:uuid"`
}

func (programRow) TableName() string { return "programs" }

type standardRow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProgramID uuid.UUID `gorm:"column:program_id;type:uuid;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Weight    float64   `gorm:"column:weight;not null;default:0"`
	Position  int       `gorm:"column:position;not null;default:0"`
}

func (standardRow) TableName() string { return "standards" }

type criterionRow struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StandardID uuid.UUID `gorm:"column:standard_id;type:uuid;index;not null"`
	Name       string    `gorm:"column:name;not null"`
	Weight     float64   `gorm:"column:weight;not null;default:0"`
	Category   string    `gorm:"column:category;not null;default:''"`
	Position   int       `gorm:"column:position;not null;default:0"`
}

func (criterionRow) TableName() string { return "criteria" }

type criteriaPointRow struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CriterionID uuid.UUID      `gorm:"column:criterion_id;type:uuid;index;not null"`
	Name        string         `gorm:"column:name;not null"`
	MaxScore    float64        `gorm:"column:max_score;not null"`
	Rubric      datatypes.JSON `gorm:"column:rubric;type:jsonb"`
	Position    int            `gorm:"column:position;not null;default:0"`
}

func (criteriaPointRow) TableName() string { return "criteria_points" }

type assignmentRow struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CriteriaID   *uuid.UUID `gorm:"column:criteria_id;type:uuid;index"`
	ProgramID    *uuid.UUID `gorm:"column:program_id;type:uuid;index"`
	UnitID       *uuid.UUID `gorm:"column:unit_id;type:uuid"`
	AssessorID   uuid.UUID  `gorm:"column:assessor_id;type:uuid;index;not null"`
	Status       string     `gorm:"column:status;not null;default:'pending'"`
	Deadline     *time.Time `gorm:"column:deadline"`
	AssignedDate time.Time  `gorm:"column:assigned_date;not null"`
	UnassignedAt *time.Time `gorm:"column:unassigned_at"`
	LockedAt     *time.Time `gorm:"column:locked_at"`
	LockedBy     *uuid.UUID `gorm:"column:locked_by;type:uuid"`
}

func (assignmentRow) TableName() string { return "assignments" }

type evaluationRow struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	AssignmentID     uuid.UUID `gorm:"column:assignment_id;type:uuid;not null;uniqueIndex:uq_evaluation_key"`
	AssessorID       uuid.UUID `gorm:"column:assessor_id;type:uuid;not null;uniqueIndex:uq_evaluation_key"`
	CriteriaPointID  uuid.UUID `gorm:"column:criteria_point_id;type:uuid;not null;uniqueIndex:uq_evaluation_key"`
	Score            float64   `gorm:"column:score;not null"`
	EvaluationStatus *string   `gorm:"column:evaluation_status"`
	Notes            string    `gorm:"column:notes"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (evaluationRow) TableName() string { return "evaluations" }

type targetRow struct {
	ProgramID   uuid.UUID `gorm:"column:program_id;type:uuid;primaryKey"`
	Year        int       `gorm:"column:year;primaryKey"`
	TargetScore float64   `gorm:"column:target_score;not null"`
	TargetGrade string    `gorm:"column:target_grade"`
	Scale       *string   `gorm:"column:scale"`
}

func (targetRow) TableName() string { return "akreditasi_targets" }

type documentRow struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	AssignmentID *uuid.UUID `gorm:"column:assignment_id;type:uuid;index"`
	ProgramID    *uuid.UUID `gorm:"column:program_id;type:uuid;index"`
	ValidatedAt  *time.Time `gorm:"column:validated_at"`
	IssueStatus  *string    `gorm:"column:issue_status"`
	RejectedBy   *uuid.UUID `gorm:"column:rejected_by;type:uuid"`
	ExpiredAt    *time.Time `gorm:"column:expired_at"`
}

func (documentRow) TableName() string { return "documents" }

// allRows lists every table the store migrates.
func allRows() []interface{} {
	return []interface{}{
		&programRow{}, &standardRow{}, &criterionRow{}, &criteriaPointRow{},
		&assignmentRow{}, &evaluationRow{}, &targetRow{}, &documentRow{},
	}
}

func deref(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

func (r assignmentRow) toModel() model.Assignment {
	a := model.Assignment{
		ID:           r.ID,
		CriterionID:  deref(r.CriteriaID),
		ProgramID:    deref(r.ProgramID),
		UnitID:       deref(r.UnitID),
		AssessorID:   r.AssessorID,
		Status:       model.Status(r.Status),
		Deadline:     r.Deadline,
		AssignedAt:   r.AssignedDate,
		UnassignedAt: r.UnassignedAt,
	}
	if r.LockedAt != nil {
		a.Lock = &model.Lock{By: deref(r.LockedBy), At: *r.LockedAt}
	}
	return a
}

func (r evaluationRow) toModel() model.Evaluation {
	return model.Evaluation{
		AssignmentID:    r.AssignmentID,
		AssessorID:      r.AssessorID,
		CriteriaPointID: r.CriteriaPointID,
		Score:           r.Score,
		Status:          r.EvaluationStatus,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (r criteriaPointRow) toModel() model.CriteriaPoint {
	p := model.CriteriaPoint{ID: r.ID, CriterionID: r.CriterionID, Name: r.Name, MaxScore: r.MaxScore}
	if len(r.Rubric) > 0 {
		var rubric map[string]string
		if err := json.Unmarshal(r.Rubric, &rubric); err == nil {
			p.Rubric = rubric
		}
	}
	return p
}

func (r targetRow) toModel() model.Target {
	t := model.Target{ProgramID: r.ProgramID, Year: r.Year, Score: r.TargetScore, Grade: r.TargetGrade}
	if r.Scale != nil {
		t.Domain = model.Domain(*r.Scale)
	}
	t.Domain = gap.TargetDomain(t)
	return t
}

func (r documentRow) toModel() model.Document {
	return model.Document{
		ID:           r.ID,
		AssignmentID: deref(r.AssignmentID),
		ProgramID:    deref(r.ProgramID),
		ValidatedAt:  r.ValidatedAt,
		IssueStatus:  r.IssueStatus,
		RejectedBy:   r.RejectedBy,
		ExpiredAt:    r.ExpiredAt,
	}
}

// assemble builds snapshot data from loaded rows. Child rows must arrive
// sorted by position so hierarchy order survives.
func assemble(
	programs []programRow,
	standards []standardRow,
	criteria []criterionRow,
	points []criteriaPointRow,
	assignments []assignmentRow,
	evaluations []evaluationRow,
	targets []targetRow,
	documents []documentRow,
	asOf time.Time,
) model.SnapshotData {
	pointsBy := make(map[uuid.UUID][]model.CriteriaPoint)
	for _, r := range points {
		pointsBy[r.CriterionID] = append(pointsBy[r.CriterionID], r.toModel())
	}
	criteriaBy := make(map[uuid.UUID][]model.Criterion)
	for _, r := range criteria {
		criteriaBy[r.StandardID] = append(criteriaBy[r.StandardID], model.Criterion{
			ID:         r.ID,
			StandardID: r.StandardID,
			Name:       r.Name,
			Weight:     r.Weight,
			Category:   model.Category(r.Category),
			Points:     pointsBy[r.ID],
		})
	}
	standardsBy := make(map[uuid.UUID][]model.Standard)
	for _, r := range standards {
		standardsBy[r.ProgramID] = append(standardsBy[r.ProgramID], model.Standard{
			ID:        r.ID,
			ProgramID: r.ProgramID,
			Name:      r.Name,
			Weight:    r.Weight,
			Criteria:  criteriaBy[r.ID],
		})
	}

	data := model.SnapshotData{
		AssignmentDocuments: make(map[uuid.UUID]model.DocumentCounts),
		ProgramDocuments:    make(map[uuid.UUID]model.DocumentCounts),
	}
	for _, r := range programs {
		data.Programs = append(data.Programs, model.Program{ID: r.ID, Name: r.Name, UnitID: r.UnitID, Standards: standardsBy[r.ID]})
	}
	for _, r := range assignments {
		data.Assignments = append(data.Assignments, r.toModel())
	}
	for _, r := range evaluations {
		data.Evaluations = append(data.Evaluations, r.toModel())
	}
	for _, r := range targets {
		data.Targets = append(data.Targets, r.toModel())
	}

	byAssignment := make(map[uuid.UUID][]model.Document)
	byProgram := make(map[uuid.UUID][]model.Document)
	for _, r := range documents {
		d := r.toModel()
		if d.AssignmentID != uuid.Nil {
			byAssignment[d.AssignmentID] = append(byAssignment[d.AssignmentID], d)
		}
		if d.ProgramID != uuid.Nil {
			byProgram[d.ProgramID] = append(byProgram[d.ProgramID], d)
		}
	}
	for id, docs := range byAssignment {
		data.AssignmentDocuments[id] = model.CountDocuments(docs, asOf)
	}
	for id, docs := range byProgram {
		data.ProgramDocuments[id] = model.CountDocuments(docs, asOf)
	}
	return data
}
