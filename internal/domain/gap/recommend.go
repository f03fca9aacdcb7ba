package gap

import "github.com/okian/akreditasi/internal/domain/model"

// Priority ranks a recommendation.
type Priority string

// Priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func priorityFor(score float64) Priority {
	switch {
	case score < LowScoreThreshold:
		return PriorityHigh
	case score < LargeGapThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

type band int

const (
	bandBelow band = iota // score < 3.0
	bandNear              // 3.0 <= score < 3.5
)

// Recommendation is a fixed action suggested for a category.
type Recommendation struct {
	Category model.Category `json:"category"`
	Priority Priority       `json:"priority"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
}

// recommendations is closed; reports depend on these exact strings.
var recommendations = map[model.Category][2]string{
	model.CategoryGovernance: {
		bandBelow: "Strengthen governance documentation and partnership evidence",
		bandNear:  "Formalize periodic governance reviews",
	},
	model.CategoryStudents: {
		bandBelow: "Improve student intake and support service evidence",
		bandNear:  "Expand student achievement tracking",
	},
	model.CategoryHumanResources: {
		bandBelow: "Raise lecturer qualification and workload evidence",
		bandNear:  "Extend staff development programs",
	},
	model.CategoryFinance: {
		bandBelow: "Document budget allocation and facility adequacy",
		bandNear:  "Review facility utilization records",
	},
	model.CategoryEducation: {
		bandBelow: "Revise curriculum and learning process evidence",
		bandNear:  "Strengthen curriculum evaluation cycles",
	},
	model.CategoryResearch: {
		bandBelow: "Increase research output and funding evidence",
		bandNear:  "Raise research publication quality",
	},
	model.CategoryCommunityService: {
		bandBelow: "Increase community service activities and evidence",
		bandNear:  "Link community service to research results",
	},
	model.CategoryOutcomes: {
		bandBelow: "Increase learning-outcome evidence",
		bandNear:  "Track graduate outcomes and impact",
	},
	model.CategoryUncategorized: {
		bandBelow: "Categorize and review evidence for unclassified criteria",
		bandNear:  "Review unclassified criteria for quick improvements",
	},
}

// Recommend returns the fixed recommendation for a category scoring score,
// or false when the score needs no action.
func Recommend(category model.Category, score float64) (Recommendation, bool) {
	var b band
	switch {
	case score < LargeGapThreshold:
		b = bandBelow
	case score < TargetThreshold:
		b = bandNear
	default:
		return Recommendation{}, false
	}
	texts, ok := recommendations[category]
	if !ok {
		texts = recommendations[model.CategoryUncategorized]
	}
	return Recommendation{
		Category: category,
		Priority: priorityFor(score),
		Score:    score,
		Text:     texts[b],
	}, true
}
