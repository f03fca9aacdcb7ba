package model

import "github.com/google/uuid"

// Domain names the numeric range a score lives in.
type Domain string

// Score domains. Evaluations and aggregates are DomainScore4; institutional
// point totals are DomainPoints.
const (
	DomainScore4 Domain = "score4" // continuous 0..4
	DomainPoints Domain = "points" // weighted point total 0..400
)

// Max returns the top of the domain.
func (d Domain) Max() float64 {
	if d == DomainPoints {
		return PointsMax
	}
	return DefaultMaxScore
}

// PointsPerScore converts the 0..4 scale into the 0..400 point total.
const PointsPerScore = 100.0

// PointsMax is the top of the point-total domain.
const PointsMax = DefaultMaxScore * PointsPerScore

// Target is the accreditation target (AkreditasiTarget) of a program for one year.
type Target struct {
	ProgramID uuid.UUID `json:"program_id"`
	Year      int       `json:"year"`
	Score     float64   `json:"score"`
	Grade     string    `json:"grade,omitempty"`
	Domain    Domain    `json:"domain"`
}
