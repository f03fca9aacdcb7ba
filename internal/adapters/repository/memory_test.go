package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/akreditasi/internal/adapters/repository"
	"github.com/okian/akreditasi/internal/domain/assignment"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/model/modeltest"
)

func fixedClock() time.Time {
	return time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
}

func TestMemoryStore_SubmitEvaluation(t *testing.T) {
	Convey("Given a store with one assignment over two points", t, func() {
		ctx := context.Background()
		b := modeltest.NewBuilder()
		prog := b.Program("Sistem Informasi")
		std := b.Standard(prog, "Standar 1", 1)
		crit := b.Criterion(std, "Kurikulum", 1, model.CategoryEducation)
		p1 := b.Point(crit, "Indikator 1", 4)
		p2 := b.Point(crit, "Indikator 2", 4)
		assessor := uuid.New()
		asg := b.Assign(crit, assessor)
		b.Evaluate(asg, p1, 2)

		store := repository.NewMemoryStore(b.Data(), repository.WithClock(fixedClock))
		passed := model.EvaluationPassed

		Convey("When a new key is submitted", func() {
			res, err := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p2, Score: 3})

			Convey("Then a row is created and the assignment moves in progress", func() {
				So(err, ShouldBeNil)
				So(res.Created, ShouldBeTrue)
				So(res.Evaluation.CreatedAt, ShouldEqual, fixedClock())
				So(res.Status, ShouldEqual, model.StatusInProgress)
				So(res.ProgramID, ShouldEqual, prog)

				snap, _ := store.LoadSnapshot(ctx)
				So(snap.EvaluationsFor(asg), ShouldHaveLength, 2)
				a, _ := snap.Assignment(asg)
				So(a.Status, ShouldEqual, model.StatusInProgress)
			})
		})

		Convey("When an existing key is submitted again", func() {
			res, err := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p1, Score: 3.5, Status: &passed})

			Convey("Then the row is overwritten in place", func() {
				So(err, ShouldBeNil)
				So(res.Created, ShouldBeFalse)
				snap, _ := store.LoadSnapshot(ctx)
				evals := snap.EvaluationsFor(asg)
				So(evals, ShouldHaveLength, 1)
				So(evals[0].Score, ShouldEqual, 3.5)
			})
		})

		Convey("When every point is finalized", func() {
			_, err1 := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p1, Score: 3, Status: &passed})
			res, err2 := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p2, Score: 4, Status: &passed})

			Convey("Then the assignment completes", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(res.Status, ShouldEqual, model.StatusCompleted)
			})
		})

		Convey("When the assignment is locked", func() {
			before, _ := store.LoadSnapshot(ctx)
			So(store.Lock(asg, uuid.New()), ShouldBeNil)
			_, err := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p1, Score: 4})

			Convey("Then the write is rejected and rows are unchanged", func() {
				So(errors.Is(err, assignment.ErrLocked), ShouldBeTrue)
				after, _ := store.LoadSnapshot(ctx)
				So(after.EvaluationsFor(asg), ShouldResemble, before.EvaluationsFor(asg))
				a, _ := after.Assignment(asg)
				So(a.Status, ShouldEqual, model.StatusPending)
			})
		})

		Convey("When the score exceeds the point max", func() {
			_, err := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p2, Score: 5})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, assignment.ErrScoreOutOfRange), ShouldBeTrue)
			})
		})

		Convey("When the assignment is unknown", func() {
			_, err := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: uuid.New(), AssessorID: assessor, CriteriaPointID: p2, Score: 1})

			Convey("Then it is not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When one key is submitted concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p2, Score: float64(i%4) + 0.5})
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one row exists for the key", func() {
				snap, _ := store.LoadSnapshot(ctx)
				n := 0
				for _, e := range snap.EvaluationsFor(asg) {
					if e.CriteriaPointID == p2 {
						n++
					}
				}
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When a snapshot is taken before a write", func() {
			snap, err := store.LoadSnapshot(ctx)
			So(err, ShouldBeNil)
			_, err = store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p2, Score: 1})
			So(err, ShouldBeNil)

			Convey("Then the snapshot does not see it", func() {
				So(snap.EvaluationsFor(asg), ShouldHaveLength, 1)
			})
		})
	})
}

func TestMemoryStore_ProgramWideAssignment(t *testing.T) {
	Convey("Given an assignment covering a whole program", t, func() {
		ctx := context.Background()
		b := modeltest.NewBuilder()
		prog := b.Program("Kimia")
		std := b.Standard(prog, "Standar 1", 1)
		c1 := b.Criterion(std, "Kurikulum", 1, model.CategoryEducation)
		p1 := b.Point(c1, "Indikator 1", 4)
		c2 := b.Criterion(std, "Sarana", 1, model.CategoryFinance)
		p2 := b.Point(c2, "Indikator 2", 4)
		other := b.Program("Fisika")
		otherStd := b.Standard(other, "Standar 1", 1)
		foreign := b.Point(b.Criterion(otherStd, "Kurikulum", 1, model.CategoryEducation), "Indikator", 4)
		assessor := uuid.New()
		asg := b.AssignProgram(prog, assessor)

		store := repository.NewMemoryStore(b.Data(), repository.WithClock(fixedClock))
		passed := model.EvaluationPassed

		Convey("When points of two criteria are scored", func() {
			res1, err1 := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p1, Score: 4, Status: &passed})
			res2, err2 := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: p2, Score: 3})

			Convey("Then both writes land and the status follows finality", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(res1.ProgramID, ShouldEqual, prog)
				So(res1.Status, ShouldEqual, model.StatusCompleted)
				So(res2.Status, ShouldEqual, model.StatusInProgress)
			})
		})

		Convey("When a point of another program is scored", func() {
			_, err := store.SubmitEvaluation(ctx, model.Evaluation{AssignmentID: asg, AssessorID: assessor, CriteriaPointID: foreign, Score: 3})

			Convey("Then it is rejected as a mismatch", func() {
				So(errors.Is(err, assignment.ErrPointMismatch), ShouldBeTrue)
			})
		})
	})
}
