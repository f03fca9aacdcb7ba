// Package model contains domain models passed between layers.
package model

import "github.com/google/uuid"

// Category groups criteria for gap reporting.
type Category string

// Reporting categories. Values are stored as-is in the criteria table.
const (
	CategoryUncategorized    Category = ""
	CategoryGovernance       Category = "governance"
	CategoryStudents         Category = "students"
	CategoryHumanResources   Category = "human_resources"
	CategoryFinance          Category = "finance_facilities"
	CategoryEducation        Category = "education"
	CategoryResearch         Category = "research"
	CategoryCommunityService Category = "community_service"
	CategoryOutcomes         Category = "outcomes"
)

// Categories lists every known category in report order.
func Categories() []Category {
	return []Category{
		CategoryGovernance,
		CategoryStudents,
		CategoryHumanResources,
		CategoryFinance,
		CategoryEducation,
		CategoryResearch,
		CategoryCommunityService,
		CategoryOutcomes,
	}
}

// Valid reports whether c is a known category or the empty one.
func (c Category) Valid() bool {
	if c == CategoryUncategorized {
		return true
	}
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Program is the root of the accreditation hierarchy.
type Program struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	UnitID    uuid.UUID  `json:"unit_id"`   // organizational unit
	Standards []Standard `json:"standards"` // ordered
}

// Standard belongs to one program. Weight is relative and need not sum to a fixed total.
type Standard struct {
	ID        uuid.UUID   `json:"id"`
	ProgramID uuid.UUID   `json:"program_id"`
	Name      string      `json:"name"`
	Weight    float64     `json:"weight"`
	Criteria  []Criterion `json:"criteria"` // ordered
}

// Criterion belongs to one standard.
type Criterion struct {
	ID         uuid.UUID       `json:"id"`
	StandardID uuid.UUID       `json:"standard_id"`
	Name       string          `json:"name"`
	Weight     float64         `json:"weight"`
	Category   Category        `json:"category"`
	Points     []CriteriaPoint `json:"points"` // ordered
}

// Ceiling returns the largest max score among the criterion's points, or
// DefaultMaxScore when the criterion has no points.
func (c Criterion) Ceiling() float64 {
	ceiling := 0.0
	for _, p := range c.Points {
		if p.MaxScore > ceiling {
			ceiling = p.MaxScore
		}
	}
	if ceiling == 0 {
		return DefaultMaxScore
	}
	return ceiling
}

// DefaultMaxScore is the top of the evaluation scale used across the institution.
const DefaultMaxScore = 4.0

// CriteriaPoint (indicator) is the unit assessors score against.
type CriteriaPoint struct {
	ID          uuid.UUID `json:"id"`
	CriterionID uuid.UUID `json:"criterion_id"`
	Name        string    `json:"name"`
	MaxScore    float64   `json:"max_score"`
	// Rubric maps a score to its narrative. Metadata only.
	Rubric map[string]string `json:"rubric,omitempty"`
}
