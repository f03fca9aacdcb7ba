package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is the read-only slice of a supporting document this engine needs.
type Document struct {
	ID           uuid.UUID
	AssignmentID uuid.UUID
	ProgramID    uuid.UUID
	ValidatedAt  *time.Time
	IssueStatus  *string
	RejectedBy   *uuid.UUID
	ExpiredAt    *time.Time
}

// Problematic reports whether the document carries an issue, a rejection or
// expired on or before asOf.
func (d Document) Problematic(asOf time.Time) bool {
	if d.IssueStatus != nil && *d.IssueStatus != "" {
		return true
	}
	if d.RejectedBy != nil {
		return true
	}
	return d.ExpiredAt != nil && !d.ExpiredAt.After(asOf)
}

// Validated reports whether the document counts toward completeness.
func (d Document) Validated(asOf time.Time) bool {
	return d.ValidatedAt != nil && !d.Problematic(asOf)
}

// DocumentCounts is the pre-aggregated completeness signal for one scope.
type DocumentCounts struct {
	Total       int `json:"total"`
	Validated   int `json:"validated"`
	Problematic int `json:"problematic"`
}

// Add returns the element-wise sum of two counts.
func (c DocumentCounts) Add(o DocumentCounts) DocumentCounts {
	return DocumentCounts{
		Total:       c.Total + o.Total,
		Validated:   c.Validated + o.Validated,
		Problematic: c.Problematic + o.Problematic,
	}
}

// Completeness returns validated/total as a percentage in [0,100]. No
// documents yields 0.
func (c DocumentCounts) Completeness() float64 {
	if c.Total <= 0 {
		return 0
	}
	ratio := float64(c.Validated) / float64(c.Total) * 100
	if ratio > 100 {
		return 100
	}
	return ratio
}

// CountDocuments folds documents into counts. asOf is passed in so the
// result does not depend on the wall clock.
func CountDocuments(docs []Document, asOf time.Time) DocumentCounts {
	var c DocumentCounts
	for _, d := range docs {
		c.Total++
		if d.Validated(asOf) {
			c.Validated++
		}
		if d.Problematic(asOf) {
			c.Problematic++
		}
	}
	return c
}
