// Package repository loads hierarchy snapshots, persists evaluations and
// caches ranked program reports.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/model"
)

// SnapshotLoader batch-loads everything the engine computes over.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)
}

// SubmitResult is the outcome of an accepted evaluation write.
type SubmitResult struct {
	Evaluation model.Evaluation
	// ProgramID is the program owning the assignment, uuid.Nil when unknown.
	ProgramID uuid.UUID
	// Status is the assignment status after the write.
	Status model.Status
	// Created is false when an existing row for the key was overwritten.
	Created bool
}

// EvaluationWriter persists evaluations.
type EvaluationWriter interface {
	// SubmitEvaluation upserts e on its (assignment, assessor, point) key.
	// The lock guard is checked in the same critical section as the write, so a
	// rejected submission leaves every row untouched.
	SubmitEvaluation(ctx context.Context, e model.Evaluation) (SubmitResult, error)
}

// Store is a complete persistence backend.
type Store interface {
	SnapshotLoader
	EvaluationWriter
	Close() error
}
