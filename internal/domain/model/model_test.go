package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/model/modeltest"
)

func TestScope(t *testing.T) {
	convey.Convey("Given an assignment assigned in 2025", t, func() {
		unit := uuid.New()
		assessor := uuid.New()
		a := model.Assignment{
			ID:         uuid.New(),
			UnitID:     unit,
			AssessorID: assessor,
			AssignedAt: time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
		}

		convey.Convey("Then the zero scope includes it", func() {
			convey.So(model.Scope{}.Includes(a), convey.ShouldBeTrue)
		})

		convey.Convey("Then a matching scope includes it", func() {
			convey.So(model.Scope{UnitID: unit, AssessorID: assessor, Year: 2025}.Includes(a), convey.ShouldBeTrue)
		})

		convey.Convey("Then another year excludes it", func() {
			convey.So(model.Scope{Year: 2024}.Includes(a), convey.ShouldBeFalse)
		})

		convey.Convey("Then another assessor excludes it", func() {
			convey.So(model.Scope{AssessorID: uuid.New()}.Includes(a), convey.ShouldBeFalse)
		})
	})
}

func TestDocumentCounts(t *testing.T) {
	convey.Convey("Given a set of documents", t, func() {
		asOf := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		validated := asOf.Add(-48 * time.Hour)
		expired := asOf.Add(-time.Hour)
		issue := "missing signature"
		rejector := uuid.New()

		docs := []model.Document{
			{ValidatedAt: &validated},
			{ValidatedAt: &validated, ExpiredAt: &expired},
			{ValidatedAt: &validated, RejectedBy: &rejector},
			{IssueStatus: &issue},
			{},
		}

		convey.Convey("When counting", func() {
			c := model.CountDocuments(docs, asOf)

			convey.Convey("Then only clean validated documents count as validated", func() {
				convey.So(c.Total, convey.ShouldEqual, 5)
				convey.So(c.Validated, convey.ShouldEqual, 1)
				convey.So(c.Problematic, convey.ShouldEqual, 3)
				convey.So(c.Completeness(), convey.ShouldEqual, 20.0)
			})
		})

		convey.Convey("When there are no documents", func() {
			convey.So(model.DocumentCounts{}.Completeness(), convey.ShouldEqual, 0.0)
		})
	})
}

func TestSnapshot(t *testing.T) {
	convey.Convey("Given a snapshot with one program", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Informatika")
		std := b.Standard(prog, "Standar 1", 1)
		crit := b.Criterion(std, "Visi dan Misi", 1, model.CategoryGovernance)
		pt := b.Point(crit, "Indikator 1", 4)
		asg := b.Assign(crit, uuid.New())
		b.Evaluate(asg, pt, 3)
		b.Target(prog, 2024, 300, model.DomainPoints)
		b.Target(prog, 2025, 340, model.DomainPoints)
		snap := b.Snapshot()

		convey.Convey("Then lookups resolve through the indexes", func() {
			p, ok := snap.Program(prog)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(p.Name, convey.ShouldEqual, "Informatika")

			_, ok = snap.Point(pt)
			convey.So(ok, convey.ShouldBeTrue)

			convey.So(snap.AssignmentsForCriterion(crit), convey.ShouldHaveLength, 1)
			convey.So(snap.AssignmentsForProgram(prog), convey.ShouldHaveLength, 1)
			convey.So(snap.EvaluationsFor(asg), convey.ShouldHaveLength, 1)
		})

		convey.Convey("Then the latest target wins when no year is given", func() {
			tgt, ok := snap.Target(prog, 0)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(tgt.Year, convey.ShouldEqual, 2025)

			tgt, ok = snap.Target(prog, 2024)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(tgt.Score, convey.ShouldEqual, 300.0)

			_, ok = snap.Target(prog, 2019)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestSnapshotUnitScopedAssignments(t *testing.T) {
	convey.Convey("Given a program-wide assignment and a unit-wide one", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Biologi")
		std := b.Standard(prog, "Standar 1", 1)
		c1 := b.Criterion(std, "Kurikulum", 1, model.CategoryEducation)
		c2 := b.Criterion(std, "Penelitian", 1, model.CategoryResearch)
		programWide := b.AssignProgram(prog, uuid.New())

		data := b.Data()
		unit := data.Programs[0].UnitID
		unitWide := model.Assignment{ID: uuid.New(), UnitID: unit, AssessorID: uuid.New(), Status: model.StatusPending}
		data.Assignments = append(data.Assignments, unitWide)
		snap := model.NewSnapshot(data)

		convey.Convey("Then both are indexed under every criterion of the program", func() {
			for _, crit := range []uuid.UUID{c1, c2} {
				ids := map[uuid.UUID]bool{}
				for _, a := range snap.AssignmentsForCriterion(crit) {
					ids[a.ID] = true
				}
				convey.So(ids, convey.ShouldResemble, map[uuid.UUID]bool{programWide: true, unitWide.ID: true})
			}
			convey.So(snap.AssignmentsForProgram(prog), convey.ShouldHaveLength, 2)
		})

		convey.Convey("Then they cover only their own program", func() {
			a, _ := snap.Assignment(programWide)
			convey.So(a.UnitScoped(), convey.ShouldBeTrue)
			convey.So(a.Covers(data.Programs[0], c1), convey.ShouldBeTrue)
			convey.So(a.Covers(model.Program{ID: uuid.New(), UnitID: unit}, c1), convey.ShouldBeFalse)
			convey.So(unitWide.Covers(model.Program{ID: uuid.New(), UnitID: unit}, c1), convey.ShouldBeTrue)
		})
	})
}

func TestCriterionCeiling(t *testing.T) {
	convey.Convey("Given criteria with and without points", t, func() {
		withPoints := model.Criterion{Points: []model.CriteriaPoint{{MaxScore: 2}, {MaxScore: 3}}}
		empty := model.Criterion{}

		convey.So(withPoints.Ceiling(), convey.ShouldEqual, 3.0)
		convey.So(empty.Ceiling(), convey.ShouldEqual, model.DefaultMaxScore)
	})
}
