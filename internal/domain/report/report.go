// Package report assembles the per-program dashboard record: the aggregated
// tree, grades, target gap and risk.
package report

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/assignment"
	"github.com/okian/akreditasi/internal/domain/gap"
	"github.com/okian/akreditasi/internal/domain/grading"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/risk"
	"github.com/okian/akreditasi/internal/domain/scoring"
)

// Program is everything the dashboards show for one program.
type Program struct {
	ProgramID uuid.UUID   `json:"program_id"`
	Name      string      `json:"name"`
	Scope     model.Scope `json:"scope"`

	Scores scoring.Report `json:"scores"`
	// Grade is the grade under the requested scale.
	Grade grading.Grade `json:"grade"`
	// Grades holds the grade under every scale.
	Grades []grading.Grade `json:"grades"`
	// PointTotal is the aggregated score on the institutional point domain.
	PointTotal float64 `json:"point_total"`

	Gap  gap.Record  `json:"gap"`
	Risk risk.Record `json:"risk"`

	Documents model.DocumentCounts `json:"documents"`
	// Progress is nil when there are no active assignments to measure.
	Progress   *float64 `json:"progress"`
	Unresolved int      `json:"unresolved_assignments"`
}

// Score is the aggregated 0..4 program score.
func (p Program) Score() float64 {
	return p.Scores.Program.Score
}

// Builder turns a snapshot into Program records.
type Builder struct {
	agg   *scoring.Aggregator
	scale grading.Scale
}

// NewBuilder returns a Builder grading under scale by default.
func NewBuilder(agg *scoring.Aggregator, scale grading.Scale) *Builder {
	if agg == nil {
		agg = scoring.New()
	}
	if _, err := grading.ParseScale(string(scale)); err != nil {
		scale = grading.ScaleDescriptive4
	}
	return &Builder{agg: agg, scale: scale}
}

// Build computes the record of programID under scope. An empty scale uses the
// builder's default.
func (b *Builder) Build(snap *model.Snapshot, scope model.Scope, programID uuid.UUID, scale grading.Scale) (Program, error) {
	if scale == "" {
		scale = b.scale
	}
	if _, err := grading.ParseScale(string(scale)); err != nil {
		return Program{}, err
	}

	scores, err := b.agg.Program(snap, scope, programID)
	if err != nil {
		return Program{}, err
	}
	scope.ProgramID = programID
	p, _ := snap.Program(programID)

	out := Program{
		ProgramID:  programID,
		Name:       p.Name,
		Scope:      scope,
		Scores:     scores,
		PointTotal: grading.PointTotal(scores.Program.Score).Value,
	}

	for _, s := range grading.Scales() {
		g, err := grading.ClassifyScore(scores.Program.Score, s)
		if err != nil {
			return Program{}, fmt.Errorf("grade %s: %w", s, err)
		}
		out.Grades = append(out.Grades, g)
		if s == scale {
			out.Grade = g
		}
	}

	var target *model.Target
	if t, ok := snap.Target(programID, scope.Year); ok {
		target = &t
	}
	out.Gap = gap.Analyze(scores.Program, target)

	var assignments []model.Assignment
	for _, a := range snap.AssignmentsForProgram(programID) {
		if scope.Includes(a) {
			assignments = append(assignments, a)
		}
	}
	out.Progress = assignment.Progress(assignments)
	out.Unresolved = assignment.Unresolved(assignments)
	out.Documents = snap.ProgramDocuments(programID)

	out.Risk = risk.Score(risk.Input{
		AvgScore:              scores.Program.Score,
		Scored:                scores.Program.Basis != scoring.BasisNoEvidence,
		Completeness:          out.Documents.Completeness(),
		ProblematicDocuments:  out.Documents.Problematic,
		IncompleteAssessments: out.Unresolved,
	})
	return out, nil
}
