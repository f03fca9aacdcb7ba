package scoring_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/model/modeltest"
	"github.com/okian/akreditasi/internal/domain/scoring"
)

// twoStandardProgram builds a program with two 50/50 standards, each holding one
// criterion of weight 1 scored 3.0 and 4.0 by its assessor.
func twoStandardProgram() (*modeltest.Builder, uuid.UUID) {
	b := modeltest.NewBuilder()
	prog := b.Program("Teknik Informatika")
	for _, name := range []string{"Standar Pendidikan", "Standar Penelitian"} {
		std := b.Standard(prog, name, 50)
		crit := b.Criterion(std, name+" - Kriteria", 1, model.CategoryEducation)
		p1 := b.Point(crit, "Indikator A", 4)
		p2 := b.Point(crit, "Indikator B", 4)
		asg := b.Assign(crit, uuid.New())
		b.Evaluate(asg, p1, 3.0)
		b.Evaluate(asg, p2, 4.0)
	}
	return b, prog
}

func TestAggregator_Program(t *testing.T) {
	Convey("Given a program with two equally weighted standards", t, func() {
		b, prog := twoStandardProgram()
		agg := scoring.New()

		Convey("When aggregating the program", func() {
			report, err := agg.Program(b.Snapshot(), model.Scope{}, prog)

			Convey("Then every level averages to 3.5", func() {
				So(err, ShouldBeNil)
				So(report.Skipped, ShouldBeEmpty)
				So(report.Program.Score, ShouldEqual, 3.5)
				So(report.Program.Basis, ShouldEqual, scoring.BasisEvidence)
				So(report.Program.EvidenceCount, ShouldEqual, 4)
				for _, std := range report.Program.Children {
					So(std.Score, ShouldEqual, 3.5)
					So(std.Children[0].Score, ShouldEqual, 3.5)
				}
				So(report.Criteria(), ShouldHaveLength, 2)
			})
		})

		Convey("When aggregating twice", func() {
			snap := b.Snapshot()
			first, err1 := agg.Program(snap, model.Scope{}, prog)
			second, err2 := agg.Program(snap, model.Scope{}, prog)

			Convey("Then both runs are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
			})
		})

		Convey("When the program is unknown", func() {
			_, err := agg.Program(b.Snapshot(), model.Scope{}, uuid.New())

			Convey("Then it reports ErrUnknownProgram", func() {
				So(errors.Is(err, scoring.ErrUnknownProgram), ShouldBeTrue)
			})
		})
	})
}

func TestAggregator_Criterion(t *testing.T) {
	Convey("Given a single criterion", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Manajemen")
		std := b.Standard(prog, "Standar 1", 1)
		crit := b.Criterion(std, "Kurikulum", 1, model.CategoryEducation)
		pt := b.Point(crit, "Indikator", 4)
		agg := scoring.New()

		criterion := func(snap *model.Snapshot) model.Criterion {
			p, _ := snap.Program(prog)
			return p.Standards[0].Criteria[0]
		}

		Convey("When it has no assignments", func() {
			snap := b.Snapshot()
			res, err := agg.Criterion(snap, model.Scope{}, criterion(snap))

			Convey("Then the score is 0 with no evidence", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 0.0)
				So(res.Basis, ShouldEqual, scoring.BasisNoEvidence)
				So(res.AssignmentCount, ShouldEqual, 0)
			})
		})

		Convey("When its only assignment was unassigned", func() {
			asg := b.Assign(crit, uuid.New())
			b.Evaluate(asg, pt, 4)
			b.Unassign(asg)
			snap := b.Snapshot()
			res, err := agg.Criterion(snap, model.Scope{}, criterion(snap))

			Convey("Then the inactive assignment is ignored", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 0.0)
				So(res.Basis, ShouldEqual, scoring.BasisNoEvidence)
			})
		})

		Convey("When an assignment has only validated documents", func() {
			asg := b.Assign(crit, uuid.New())
			b.Documents(asg, model.DocumentCounts{Total: 2, Validated: 1})
			snap := b.Snapshot()

			Convey("Then it contributes 80% of the ceiling", func() {
				res, err := agg.Criterion(snap, model.Scope{}, criterion(snap))
				So(err, ShouldBeNil)
				So(res.Score, ShouldAlmostEqual, 3.2)
				So(res.Basis, ShouldEqual, scoring.BasisCompleteness)
				So(res.EvidenceCount, ShouldEqual, 0)
			})

			Convey("And the factor is configurable", func() {
				res, err := scoring.New(scoring.WithCompletenessFactor(0.5)).Criterion(snap, model.Scope{}, criterion(snap))
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 2.0)
			})
		})

		Convey("When one assignment has evidence and another has none", func() {
			withEvidence := b.Assign(crit, uuid.New())
			b.Evaluate(withEvidence, pt, 3)
			b.Assign(crit, uuid.New())
			snap := b.Snapshot()
			res, err := agg.Criterion(snap, model.Scope{}, criterion(snap))

			Convey("Then contributions are averaged over both assignments", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 1.5)
				So(res.Basis, ShouldEqual, scoring.BasisEvidence)
				So(res.EvidenceCount, ShouldEqual, 1)
				So(res.AssignmentCount, ShouldEqual, 2)
			})
		})

		Convey("When a score exceeds the point's max", func() {
			asg := b.Assign(crit, uuid.New())
			b.Evaluate(asg, pt, 9)
			snap := b.Snapshot()
			res, err := agg.Criterion(snap, model.Scope{}, criterion(snap))

			Convey("Then it is clamped to the max", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 4.0)
			})
		})

		Convey("When the scope names a different assessor", func() {
			assessor := uuid.New()
			asg := b.Assign(crit, assessor)
			b.Evaluate(asg, pt, 3)
			other := b.Assign(crit, uuid.New())
			b.Evaluate(other, pt, 1)
			snap := b.Snapshot()
			res, err := agg.Criterion(snap, model.Scope{AssessorID: assessor}, criterion(snap))

			Convey("Then only that assessor's assignment counts", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 3.0)
				So(res.AssignmentCount, ShouldEqual, 1)
			})
		})
	})
}

func TestAggregator_InvalidData(t *testing.T) {
	Convey("Given a standard with one corrupt and one healthy criterion", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Akuntansi")
		std := b.Standard(prog, "Standar 1", 1)

		bad := b.Criterion(std, "Rusak", -1, model.CategoryFinance)
		b.Point(bad, "Indikator", 4)

		noMax := b.Criterion(std, "Tanpa Maks", 1, model.CategoryFinance)
		b.Point(noMax, "Indikator", 0)

		good := b.Criterion(std, "Sehat", 1, model.CategoryFinance)
		pt := b.Point(good, "Indikator", 4)
		asg := b.Assign(good, uuid.New())
		b.Evaluate(asg, pt, 2)

		Convey("When aggregating the program", func() {
			report, err := scoring.New().Program(b.Snapshot(), model.Scope{}, prog)

			Convey("Then corrupt criteria are skipped and siblings still aggregate", func() {
				So(err, ShouldBeNil)
				So(report.Skipped, ShouldHaveLength, 2)
				reasons := map[uuid.UUID]error{}
				for _, s := range report.Skipped {
					So(s.Level, ShouldEqual, scoring.LevelCriterion)
					reasons[s.NodeID] = s.Err
				}
				So(errors.Is(reasons[bad], scoring.ErrInvalidWeight), ShouldBeTrue)
				So(errors.Is(reasons[noMax], scoring.ErrInvalidMaxScore), ShouldBeTrue)
				So(report.Program.Score, ShouldEqual, 2.0)
			})
		})
	})

	Convey("Given a corrupt evaluation row beside a healthy criterion", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Statistika")
		std := b.Standard(prog, "Standar 1", 1)

		good := b.Criterion(std, "Sehat", 1, model.CategoryEducation)
		goodPt := b.Point(good, "Indikator", 4)
		b.Evaluate(b.Assign(good, uuid.New()), goodPt, 3)

		nanRow := b.Criterion(std, "Nilai Rusak", 1, model.CategoryEducation)
		nanPt := b.Point(nanRow, "Indikator", 4)
		b.Evaluate(b.Assign(nanRow, uuid.New()), nanPt, math.NaN())

		infMax := b.Criterion(std, "Maks Tak Hingga", 1, model.CategoryEducation)
		infPt := b.Point(infMax, "Indikator", math.Inf(1))
		b.Evaluate(b.Assign(infMax, uuid.New()), infPt, 2)

		report, err := scoring.New().Program(b.Snapshot(), model.Scope{}, prog)

		Convey("Then only the corrupt criteria are skipped", func() {
			So(err, ShouldBeNil)
			reasons := map[uuid.UUID]error{}
			for _, s := range report.Skipped {
				reasons[s.NodeID] = s.Err
			}
			So(reasons, ShouldHaveLength, 2)
			So(errors.Is(reasons[nanRow], scoring.ErrInvalidScore), ShouldBeTrue)
			So(errors.Is(reasons[infMax], scoring.ErrInvalidMaxScore), ShouldBeTrue)
			So(report.Program.Score, ShouldEqual, 3.0)
			for _, c := range report.Criteria() {
				So(math.IsNaN(c.Score), ShouldBeFalse)
				So(c.Skipped, ShouldEqual, c.ID != good)
			}
		})

		Convey("Then the report still encodes as JSON", func() {
			_, err := json.Marshal(report)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given a standard with a negative weight", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Hukum")
		badStd := b.Standard(prog, "Standar Rusak", -5)
		b.Criterion(badStd, "K1", 1, model.CategoryGovernance)
		okStd := b.Standard(prog, "Standar Sehat", 1)
		crit := b.Criterion(okStd, "K2", 1, model.CategoryGovernance)
		pt := b.Point(crit, "Indikator", 4)
		asg := b.Assign(crit, uuid.New())
		b.Evaluate(asg, pt, 3)

		report, err := scoring.New().Program(b.Snapshot(), model.Scope{}, prog)

		Convey("Then only the standard is skipped", func() {
			So(err, ShouldBeNil)
			So(report.Skipped, ShouldHaveLength, 1)
			So(report.Skipped[0].NodeID, ShouldEqual, badStd)
			So(report.Skipped[0].Level, ShouldEqual, scoring.LevelStandard)
			So(report.Program.Score, ShouldEqual, 3.0)
		})
	})

	Convey("Given standards whose weights sum to zero", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Farmasi")
		std := b.Standard(prog, "Standar 0", 0)
		crit := b.Criterion(std, "K", 0, model.CategoryResearch)
		pt := b.Point(crit, "Indikator", 4)
		asg := b.Assign(crit, uuid.New())
		b.Evaluate(asg, pt, 4)

		report, err := scoring.New().Program(b.Snapshot(), model.Scope{}, prog)

		Convey("Then the rollup is 0 rather than an error", func() {
			So(err, ShouldBeNil)
			So(report.Program.Score, ShouldEqual, 0.0)
			So(report.Program.Children[0].Score, ShouldEqual, 0.0)
		})
	})
}

func TestAggregator_OrderInvariance(t *testing.T) {
	Convey("Given a standard with unevenly weighted criteria", t, func() {
		b := modeltest.NewBuilder()
		prog := b.Program("Kedokteran")
		std := b.Standard(prog, "Standar 1", 1)
		weights := []float64{0.13, 0.29, 0.07, 0.51}
		scores := []float64{3.1, 2.2, 3.9, 1.7}
		for i, w := range weights {
			crit := b.Criterion(std, "K", w, model.CategoryEducation)
			pt := b.Point(crit, "Indikator", 4)
			asg := b.Assign(crit, uuid.New())
			b.Evaluate(asg, pt, scores[i])
		}

		data := b.Data()
		reordered := data
		reordered.Programs = []model.Program{data.Programs[0]}
		reordered.Programs[0].Standards = []model.Standard{data.Programs[0].Standards[0]}
		crits := append([]model.Criterion(nil), data.Programs[0].Standards[0].Criteria...)
		for i, j := 0, len(crits)-1; i < j; i, j = i+1, j-1 {
			crits[i], crits[j] = crits[j], crits[i]
		}
		reordered.Programs[0].Standards[0].Criteria = crits

		Convey("When aggregating both orders", func() {
			agg := scoring.New()
			a, errA := agg.Program(model.NewSnapshot(data), model.Scope{}, prog)
			r, errR := agg.Program(model.NewSnapshot(reordered), model.Scope{}, prog)

			Convey("Then the standard score is identical", func() {
				So(errA, ShouldBeNil)
				So(errR, ShouldBeNil)
				So(r.Program.Score, ShouldEqual, a.Program.Score)
				So(r.Program.Children[0].Score, ShouldEqual, a.Program.Children[0].Score)
			})
		})
	})
}
