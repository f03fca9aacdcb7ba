package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/assignment"
	"github.com/okian/akreditasi/internal/domain/model"
)

// MemoryStore keeps the whole data set in process. The hierarchy is fixed at
// construction; assignments and evaluations change through SubmitEvaluation.
type MemoryStore struct {
	mu     sync.RWMutex
	data   model.SnapshotData
	points map[uuid.UUID]model.CriteriaPoint
	// pointsByCriterion holds point ids in hierarchy order.
	pointsByCriterion map[uuid.UUID][]uuid.UUID
	// owners maps a criterion to its program, standards stripped.
	owners map[uuid.UUID]model.Program
	now    func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used for evaluation timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore builds a store over data. The store takes ownership of data.
func NewMemoryStore(data model.SnapshotData, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		data:              data,
		points:            make(map[uuid.UUID]model.CriteriaPoint),
		pointsByCriterion: make(map[uuid.UUID][]uuid.UUID),
		owners:            make(map[uuid.UUID]model.Program),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.data.AssignmentDocuments == nil {
		s.data.AssignmentDocuments = make(map[uuid.UUID]model.DocumentCounts)
	}
	if s.data.ProgramDocuments == nil {
		s.data.ProgramDocuments = make(map[uuid.UUID]model.DocumentCounts)
	}
	for _, p := range data.Programs {
		for _, st := range p.Standards {
			for _, c := range st.Criteria {
				s.owners[c.ID] = model.Program{ID: p.ID, Name: p.Name, UnitID: p.UnitID}
				for _, pt := range c.Points {
					s.points[pt.ID] = pt
					s.pointsByCriterion[c.ID] = append(s.pointsByCriterion[c.ID], pt.ID)
				}
			}
		}
	}
	return s
}

// LoadSnapshot returns a snapshot isolated from later writes.
func (s *MemoryStore) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := model.SnapshotData{
		Programs:            s.data.Programs,
		Assignments:         append([]model.Assignment(nil), s.data.Assignments...),
		Evaluations:         append([]model.Evaluation(nil), s.data.Evaluations...),
		AssignmentDocuments: make(map[uuid.UUID]model.DocumentCounts, len(s.data.AssignmentDocuments)),
		ProgramDocuments:    make(map[uuid.UUID]model.DocumentCounts, len(s.data.ProgramDocuments)),
		Targets:             append([]model.Target(nil), s.data.Targets...),
	}
	for k, v := range s.data.AssignmentDocuments {
		data.AssignmentDocuments[k] = v
	}
	for k, v := range s.data.ProgramDocuments {
		data.ProgramDocuments[k] = v
	}
	return model.NewSnapshot(data), nil
}

// SubmitEvaluation implements EvaluationWriter. The guard and the write run
// under the store's write lock.
func (s *MemoryStore) SubmitEvaluation(ctx context.Context, e model.Evaluation) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ai := s.assignmentIndex(e.AssignmentID)
	if ai < 0 {
		return SubmitResult{}, fmt.Errorf("assignment %s: %w", e.AssignmentID, ErrNotFound)
	}
	a := s.data.Assignments[ai]
	p, ok := s.points[e.CriteriaPointID]
	if !ok {
		return SubmitResult{}, fmt.Errorf("criteria point %s: %w", e.CriteriaPointID, ErrNotFound)
	}
	owner := s.owners[p.CriterionID]
	if err := assignment.CheckSubmission(a, p, owner, e); err != nil {
		return SubmitResult{}, err
	}

	now := s.now().UTC()
	res := SubmitResult{Created: true, ProgramID: a.ProgramID}
	if res.ProgramID == uuid.Nil {
		res.ProgramID = owner.ID
	}
	for i := range s.data.Evaluations {
		cur := &s.data.Evaluations[i]
		if cur.Key() != e.Key() {
			continue
		}
		cur.Score = e.Score
		cur.Status = e.Status
		cur.Notes = e.Notes
		cur.UpdatedAt = now
		res.Evaluation = *cur
		res.Created = false
		break
	}
	if res.Created {
		e.CreatedAt, e.UpdatedAt = now, now
		s.data.Evaluations = append(s.data.Evaluations, e)
		res.Evaluation = e
	}

	var evals []model.Evaluation
	for _, ev := range s.data.Evaluations {
		if ev.AssignmentID == a.ID {
			evals = append(evals, ev)
		}
	}
	res.Status = assignment.NextStatus(a, s.pointsByCriterion[a.CriterionID], evals)
	s.data.Assignments[ai].Status = res.Status
	return res, nil
}

// Lock locks an assignment. Locking is an administrative action; the engine
// itself only reads the lock.
func (s *MemoryStore) Lock(assignmentID, by uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ai := s.assignmentIndex(assignmentID)
	if ai < 0 {
		return fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	if s.data.Assignments[ai].Lock == nil {
		s.data.Assignments[ai].Lock = &model.Lock{By: by, At: s.now().UTC()}
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) assignmentIndex(id uuid.UUID) int {
	for i, a := range s.data.Assignments {
		if a.ID == id {
			return i
		}
	}
	return -1
}
