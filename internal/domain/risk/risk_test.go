package risk_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/akreditasi/internal/domain/risk"
)

func TestScore(t *testing.T) {
	convey.Convey("Given a perfect entity", t, func() {
		rec := risk.Score(risk.Input{AvgScore: 4, Scored: true, Completeness: 100})

		convey.Convey("Then risk is 0 and the tier Very Low", func() {
			convey.So(rec.Score, convey.ShouldEqual, 0.0)
			convey.So(rec.Tier, convey.ShouldEqual, risk.TierVeryLow)
		})

		convey.Convey("Then it is classified a top performer", func() {
			convey.So(rec.Classification, convey.ShouldEqual, risk.TierTopPerformer)
		})
	})

	convey.Convey("Given the worst entity", t, func() {
		rec := risk.Score(risk.Input{AvgScore: 0, Scored: true, Completeness: 0, ProblematicDocuments: 7, IncompleteAssessments: 12})

		convey.Convey("Then risk clamps at 100 and the tier is High", func() {
			convey.So(rec.Score, convey.ShouldEqual, 100.0)
			convey.So(rec.Tier, convey.ShouldEqual, risk.TierHigh)
			convey.So(rec.Classification, convey.ShouldEqual, risk.TierHigh)
		})
	})

	convey.Convey("Given an entity without any evidence", t, func() {
		rec := risk.Score(risk.Input{Completeness: 50, ProblematicDocuments: 1, IncompleteAssessments: 3})

		convey.Convey("Then the score term is left out", func() {
			convey.So(rec.Score, convey.ShouldEqual, 10.0+5.0+6.0)
			convey.So(rec.Tier, convey.ShouldEqual, risk.TierLow)
		})
	})

	convey.Convey("Given middling inputs", t, func() {
		rec := risk.Score(risk.Input{AvgScore: 2, Scored: true, Completeness: 80, ProblematicDocuments: 1})

		convey.Convey("Then the terms add up", func() {
			convey.So(rec.Score, convey.ShouldAlmostEqual, 30.0+4.0+5.0)
			convey.So(rec.Tier, convey.ShouldEqual, risk.TierLow)
		})
	})

	convey.Convey("Given tier boundaries", t, func() {
		convey.So(risk.Score(risk.Input{AvgScore: 0, Scored: true, Completeness: 50}).Tier, convey.ShouldEqual, risk.TierHigh)
		convey.So(risk.Score(risk.Input{AvgScore: 2, Scored: true, Completeness: 50}).Tier, convey.ShouldEqual, risk.TierMedium)
		convey.So(risk.Score(risk.Input{Scored: true, AvgScore: 4, Completeness: 0}).Tier, convey.ShouldEqual, risk.TierLow)
	})

	convey.Convey("Given a high score with poor completeness", t, func() {
		rec := risk.Score(risk.Input{AvgScore: 3.8, Scored: true, Completeness: 85})

		convey.Convey("Then it is not a top performer", func() {
			convey.So(rec.Classification, convey.ShouldEqual, rec.Tier)
			convey.So(rec.Tier, convey.ShouldEqual, risk.TierVeryLow)
		})
	})
}
