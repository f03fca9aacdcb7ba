package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"gorm.io/datatypes"

	"github.com/okian/akreditasi/internal/domain/model"
)

func TestAssemble(t *testing.T) {
	Convey("Given rows loaded from the database", t, func() {
		asOf := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		prog, std, crit, pt := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		asg, assessor, locker := uuid.New(), uuid.New(), uuid.New()
		lockedAt := asOf.Add(-time.Hour)
		validated := asOf.Add(-24 * time.Hour)
		points := "points"

		data := assemble(
			[]programRow{{ID: prog, Name: "Informatika"}},
			[]standardRow{{ID: std, ProgramID: prog, Name: "Standar 1", Weight: 1}},
			[]criterionRow{{ID: crit, StandardID: std, Name: "Kurikulum", Weight: 0.5, Category: "education"}},
			[]criteriaPointRow{{ID: pt, CriterionID: crit, Name: "Indikator", MaxScore: 4, Rubric: datatypes.JSON(`{"4":"Sangat lengkap","1":"Tidak ada"}`)}},
			[]assignmentRow{{ID: asg, CriteriaID: &crit, ProgramID: &prog, AssessorID: assessor, Status: "in_progress", AssignedDate: asOf, LockedAt: &lockedAt, LockedBy: &locker}},
			[]evaluationRow{{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: pt, Score: 3}},
			[]targetRow{{ProgramID: prog, Year: 2025, TargetScore: 320}, {ProgramID: prog, Year: 2024, TargetScore: 3.2, Scale: &points}},
			[]documentRow{
				{ID: uuid.New(), AssignmentID: &asg, ProgramID: &prog, ValidatedAt: &validated},
				{ID: uuid.New(), ProgramID: &prog},
			},
			asOf,
		)
		snap := model.NewSnapshot(data)

		Convey("Then the hierarchy nests in order", func() {
			p, ok := snap.Program(prog)
			So(ok, ShouldBeTrue)
			So(p.Standards, ShouldHaveLength, 1)
			c := p.Standards[0].Criteria[0]
			So(c.Category, ShouldEqual, model.CategoryEducation)
			So(c.Points[0].Rubric["4"], ShouldEqual, "Sangat lengkap")
		})

		Convey("Then nullable lock columns become a tagged lock", func() {
			a, ok := snap.Assignment(asg)
			So(ok, ShouldBeTrue)
			So(a.Lock, ShouldNotBeNil)
			So(a.Lock.By, ShouldEqual, locker)
			So(a.Status, ShouldEqual, model.StatusInProgress)
			So(snap.EvaluationsFor(asg), ShouldHaveLength, 1)
		})

		Convey("Then target domains are explicit or inferred", func() {
			t25, _ := snap.Target(prog, 2025)
			So(t25.Domain, ShouldEqual, model.DomainPoints)
			t24, _ := snap.Target(prog, 2024)
			So(t24.Domain, ShouldEqual, model.DomainPoints)
		})

		Convey("Then documents are counted per assignment and program", func() {
			So(snap.AssignmentDocuments(asg), ShouldResemble, model.DocumentCounts{Total: 1, Validated: 1})
			So(snap.ProgramDocuments(prog).Total, ShouldEqual, 2)
			So(snap.ProgramDocuments(prog).Completeness(), ShouldEqual, 50.0)
		})
	})
}

func TestAssignmentRowWithoutCriterion(t *testing.T) {
	Convey("Given a unit-scoped assignment row", t, func() {
		unit := uuid.New()
		a := assignmentRow{ID: uuid.New(), UnitID: &unit, Status: "pending"}.toModel()

		So(a.CriterionID, ShouldEqual, uuid.Nil)
		So(a.UnitID, ShouldEqual, unit)
		So(a.Lock, ShouldBeNil)
	})
}
