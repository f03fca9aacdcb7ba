// Package risk combines score, document completeness and open work into a
// bounded risk score and tier.
package risk

import "math"

// Tier is a risk classification.
type Tier string

// Tiers. TierTopPerformer is only ever a Classification.
const (
	TierTopPerformer Tier = "Top Performer"
	TierHigh         Tier = "High"
	TierMedium       Tier = "Medium"
	TierLow          Tier = "Low"
	TierVeryLow      Tier = "Very Low"
)

const (
	maxScore         = 4.0
	scoreFactor      = 15.0
	completenessMax  = 100.0
	completenessRate = 0.2
	perProblematic   = 5.0
	problematicCap   = 10.0
	perIncomplete    = 2.0
	incompleteCap    = 10.0
	highThreshold    = 70.0
	mediumThreshold  = 40.0
	lowThreshold     = 20.0
	topScore         = 3.5
	topCompleteness  = 90.0
)

// Input is what the scorer needs about one program or unit.
type Input struct {
	// AvgScore is the aggregated 0..4 score.
	AvgScore float64
	// Scored reports whether AvgScore rests on any evidence. An unscored
	// aggregate contributes nothing to the score term.
	Scored bool
	// Completeness is validated / total documents, 0..100.
	Completeness          float64
	ProblematicDocuments  int
	IncompleteAssessments int
}

// Record is a computed risk.
type Record struct {
	Score float64 `json:"risk_score"`
	// Tier is the generic band of Score.
	Tier Tier `json:"tier"`
	// Classification is TierTopPerformer for entities that qualify, and Tier
	// otherwise.
	Classification Tier `json:"classification"`
}

// Score computes the composite risk of in.
func Score(in Input) Record {
	completeness := clamp(in.Completeness, 0, completenessMax)

	var risk float64
	if in.Scored {
		risk += (maxScore - clamp(in.AvgScore, 0, maxScore)) * scoreFactor
	}
	risk += (completenessMax - completeness) * completenessRate
	risk += math.Min(float64(max(in.ProblematicDocuments, 0))*perProblematic, problematicCap)
	risk += math.Min(float64(max(in.IncompleteAssessments, 0))*perIncomplete, incompleteCap)
	risk = clamp(risk, 0, 100)

	rec := Record{Score: risk, Tier: tier(risk)}
	rec.Classification = rec.Tier
	if in.Scored && in.AvgScore >= topScore && completeness >= topCompleteness && risk < lowThreshold {
		rec.Classification = TierTopPerformer
	}
	return rec
}

func tier(risk float64) Tier {
	switch {
	case risk >= highThreshold:
		return TierHigh
	case risk >= mediumThreshold:
		return TierMedium
	case risk >= lowThreshold:
		return TierLow
	default:
		return TierVeryLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
