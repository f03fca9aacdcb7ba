// Package gap compares aggregated scores against accreditation targets and
// turns weak criteria into categorized findings and recommendations.
package gap

import (
	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/grading"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/scoring"
)

// Score thresholds on the 0..4 scale.
const (
	LowScoreThreshold = 2.5
	LargeGapThreshold = 3.0
	TargetThreshold   = 3.5
	// LargeGapWeight is the criterion weight above which an underperforming
	// criterion counts as high impact.
	LargeGapWeight = 0.1
)

// Kind classifies a finding.
type Kind string

// Finding kinds.
const (
	KindLowScore               Kind = "low_score"
	KindLargeGap               Kind = "large_gap"
	KindImprovementOpportunity Kind = "improvement_opportunity"
)

// Finding flags one criterion.
type Finding struct {
	Kind        Kind           `json:"kind"`
	CriterionID uuid.UUID      `json:"criterion_id"`
	Name        string         `json:"name"`
	Category    model.Category `json:"category"`
	Score       float64        `json:"score"`
	Weight      float64        `json:"weight"`
	// PotentialImprovement is set on large gaps only.
	PotentialImprovement *float64 `json:"potential_improvement,omitempty"`
}

// CategoryFindings groups the findings of one category.
type CategoryFindings struct {
	Category model.Category `json:"category"`
	// Score is the mean score of the category's aggregated criteria.
	Score    float64   `json:"score"`
	Findings []Finding `json:"findings"`
}

// Record is the outcome of a gap analysis.
type Record struct {
	Realized grading.Measure  `json:"realized"`
	Target   *grading.Measure `json:"target,omitempty"`
	// Gap is realized minus target in the target's domain; nil without a target.
	Gap                      *float64           `json:"gap"`
	LowScores                []Finding          `json:"low_scores"`
	LargeGaps                []Finding          `json:"large_gaps"`
	ImprovementOpportunities []Finding          `json:"improvement_opportunities"`
	Categories               []CategoryFindings `json:"categories"`
	Recommendations          []Recommendation   `json:"recommendations"`
}

// Analyze compares node, a program or standard from a scoring report, against
// target. Skipped criteria produce no findings.
func Analyze(node scoring.Node, target *model.Target) Record {
	rec := Record{
		Realized:                 grading.Score4(node.Score),
		LowScores:                []Finding{},
		LargeGaps:                []Finding{},
		ImprovementOpportunities: []Finding{},
		Categories:               []CategoryFindings{},
		Recommendations:          []Recommendation{},
	}

	if target != nil {
		domain := TargetDomain(*target)
		t := grading.Measure{Value: target.Score, Domain: domain}
		g := rec.Realized.In(domain).Value - t.Value
		rec.Target = &t
		rec.Gap = &g
	}

	type bucket struct {
		sum      float64
		n        int
		findings []Finding
	}
	buckets := make(map[model.Category]*bucket)

	for _, c := range criteria(node) {
		b, ok := buckets[c.Category]
		if !ok {
			b = &bucket{findings: []Finding{}}
			buckets[c.Category] = b
		}
		b.sum += c.Score
		b.n++

		base := Finding{CriterionID: c.ID, Name: c.Name, Category: c.Category, Score: c.Score, Weight: c.Weight}
		if c.Score < LowScoreThreshold {
			f := base
			f.Kind = KindLowScore
			rec.LowScores = append(rec.LowScores, f)
			b.findings = append(b.findings, f)
		}
		if c.Score < LargeGapThreshold && c.Weight > LargeGapWeight {
			f := base
			f.Kind = KindLargeGap
			potential := TargetThreshold - c.Score
			f.PotentialImprovement = &potential
			rec.LargeGaps = append(rec.LargeGaps, f)
			b.findings = append(b.findings, f)
		}
		if c.Score >= LowScoreThreshold && c.Score < TargetThreshold {
			f := base
			f.Kind = KindImprovementOpportunity
			rec.ImprovementOpportunities = append(rec.ImprovementOpportunities, f)
			b.findings = append(b.findings, f)
		}
	}

	for _, cat := range categoryOrder() {
		b, ok := buckets[cat]
		if !ok {
			continue
		}
		avg := b.sum / float64(b.n)
		if len(b.findings) > 0 {
			rec.Categories = append(rec.Categories, CategoryFindings{Category: cat, Score: avg, Findings: b.findings})
		}
		if r, ok := Recommend(cat, avg); ok {
			rec.Recommendations = append(rec.Recommendations, r)
		}
	}
	return rec
}

// TargetDomain returns the domain a target is expressed in. Targets stored
// without one are point totals when they exceed the 0..4 range.
func TargetDomain(t model.Target) model.Domain {
	if t.Domain != "" {
		return t.Domain
	}
	if t.Score > model.DefaultMaxScore {
		return model.DomainPoints
	}
	return model.DomainScore4
}

// criteria collects the non-skipped criterion nodes under n in tree order.
func criteria(n scoring.Node) []scoring.Node {
	if n.Skipped {
		return nil
	}
	if n.Level == scoring.LevelCriterion {
		return []scoring.Node{n}
	}
	var out []scoring.Node
	for _, c := range n.Children {
		out = append(out, criteria(c)...)
	}
	return out
}

func categoryOrder() []model.Category {
	return append(model.Categories(), model.CategoryUncategorized)
}
