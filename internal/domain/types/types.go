// Package types contains common types used across the application
package types

import "github.com/google/uuid"

// Entry represents a program ranking row.
type Entry struct {
	Rank      int       `json:"rank"`
	ProgramID uuid.UUID `json:"program_id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Grade     string    `json:"grade"`
}
