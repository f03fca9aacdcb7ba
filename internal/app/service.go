// Package service wires the scoring engine to its store, the recompute queue
// and the ranked report cache. It implements the dependencies required by the
// HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	jobqueue "github.com/okian/akreditasi/internal/adapters/mq/queue"
	workerpool "github.com/okian/akreditasi/internal/adapters/mq/worker"
	"github.com/okian/akreditasi/internal/adapters/repository"
	"github.com/okian/akreditasi/internal/domain/assignment"
	"github.com/okian/akreditasi/internal/domain/grading"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/internal/domain/report"
	"github.com/okian/akreditasi/internal/domain/scoring"
	"github.com/okian/akreditasi/internal/domain/types"
	"github.com/okian/akreditasi/pkg/logger"
	"github.com/okian/akreditasi/pkg/metrics"
)

// Submission outcomes used as the metrics label.
const (
	outcomeCreated  = "created"
	outcomeUpdated  = "updated"
	outcomeLocked   = "locked"
	outcomeInactive = "inactive"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Service implements the API dependencies for the accreditation engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	cache   *repository.ReportCache
	builder *report.Builder
	keys    *assignment.KeyLock
	queue   *jobqueue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	workerCount        int
	queueSize          int
	completenessFactor float64
	defaultScale       grading.Scale
	jobTimeout         time.Duration

	// State
	started   bool
	cancelRun context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers and the report fan-out.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCompletenessFactor sets the share of a criterion's ceiling credited to
// assignments that have validated documents but no evaluations.
func WithCompletenessFactor(f float64) Option {
	return func(s *Service) {
		if f >= 0 && f <= 1 {
			s.completenessFactor = f
		}
	}
}

// WithDefaultScale sets the scale used when a request names none.
func WithDefaultScale(scale grading.Scale) Option {
	return func(s *Service) {
		if scale != "" {
			s.defaultScale = scale
		}
	}
}

// WithJobTimeout bounds a single recompute job.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:              store,
		cache:              repository.NewReportCache(),
		keys:               assignment.NewKeyLock(),
		workerCount:        runtime.NumCPU() * 2,
		queueSize:          10000,
		completenessFactor: 0.8,
		defaultScale:       grading.ScaleDescriptive4,
		jobTimeout:         30 * time.Second,
		logger:             logger.Get().Named("service"),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.builder = report.NewBuilder(
		scoring.New(scoring.WithCompletenessFactor(s.completenessFactor)),
		s.defaultScale,
	)
	return s
}

// Start creates the recompute queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel
	s.queue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithCoalescing(true),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue,
		workerpool.HandlerFunc(s.handle),
		workerpool.WithJobTimeout(s.jobTimeout),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "accreditation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Float64("completeness_factor", s.completenessFactor),
		logger.String("default_scale", string(s.defaultScale)),
	)
	return nil
}

// Stop drains the recompute queue and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping accreditation service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.cancelRun()
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}

	s.started = false
	s.logger.Info(ctx, "accreditation service stopped")
	return errors.Join(errs...)
}

// Started reports whether Start has run.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Report computes one program's dashboard record from a fresh snapshot.
func (s *Service) Report(ctx context.Context, scope model.Scope, programID uuid.UUID, scale grading.Scale) (report.Program, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return report.Program{}, err
	}
	return s.build(ctx, snap, scope, programID, scale)
}

// Reports computes every program's record from one snapshot, fanning out
// across at most workerCount goroutines. Results keep the snapshot's program
// order.
func (s *Service) Reports(ctx context.Context, scope model.Scope, scale grading.Scale) ([]report.Program, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	programs := snap.Programs()
	out := make([]report.Program, len(programs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, p := range programs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, err := s.build(gctx, snap, scope, p.ID, scale)
			if err != nil {
				return err
			}
			out[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) build(ctx context.Context, snap *model.Snapshot, scope model.Scope, programID uuid.UUID, scale grading.Scale) (report.Program, error) {
	start := time.Now()
	rep, err := s.builder.Build(snap, scope, programID, scale)
	if err != nil {
		return report.Program{}, err
	}
	metrics.RecordAggregation(float64(time.Since(start).Milliseconds()))

	for _, skip := range rep.Scores.Skipped {
		metrics.RecordSkippedNode(string(skip.Level))
		s.logger.Warn(ctx, "skipped node with invalid data",
			logger.Stringer("program_id", programID),
			logger.Stringer("node_id", skip.NodeID),
			logger.String("level", string(skip.Level)),
			logger.String("reason", skip.Reason),
		)
	}
	return rep, nil
}

// SubmitEvaluation records an assessor's score. Writes to the same
// (assignment, assessor, point) key are serialized in process; the store
// re-checks the lock guard inside its own critical section. On success a
// recompute of the owning program is queued when the service is running.
func (s *Service) SubmitEvaluation(ctx context.Context, e model.Evaluation) (repository.SubmitResult, error) {
	start := time.Now()
	res, err := s.submit(ctx, e)
	outcome := submissionOutcome(res, err)
	metrics.RecordSubmission(outcome, float64(time.Since(start).Milliseconds()))

	fields := []logger.Field{
		logger.Stringer("assignment_id", e.AssignmentID),
		logger.Stringer("assessor_id", e.AssessorID),
		logger.Stringer("criteria_point_id", e.CriteriaPointID),
		logger.String("outcome", outcome),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
		if outcome == outcomeError {
			s.logger.Error(ctx, "evaluation submission failed", fields...)
		} else {
			s.logger.Info(ctx, "evaluation submission rejected", fields...)
		}
		return repository.SubmitResult{}, err
	}
	s.logger.Info(ctx, "evaluation submitted", append(fields, logger.String("status", string(res.Status)))...)

	if res.ProgramID != uuid.Nil {
		if err := s.enqueue(ctx, jobqueue.NewJob(res.ProgramID, model.Scope{}, "submission")); err != nil && !errors.Is(err, ErrNotStarted) {
			s.logger.Warn(ctx, "recompute not queued after submission",
				logger.Stringer("program_id", res.ProgramID),
				logger.Error(err),
			)
		}
	}
	return res, nil
}

func (s *Service) submit(ctx context.Context, e model.Evaluation) (repository.SubmitResult, error) {
	unlock, err := s.keys.Lock(ctx, e.Key())
	if err != nil {
		return repository.SubmitResult{}, err
	}
	defer unlock()
	return s.store.SubmitEvaluation(ctx, e)
}

func submissionOutcome(res repository.SubmitResult, err error) string {
	switch {
	case err == nil && res.Created:
		return outcomeCreated
	case err == nil:
		return outcomeUpdated
	case errors.Is(err, assignment.ErrLocked):
		return outcomeLocked
	case errors.Is(err, assignment.ErrInactive):
		return outcomeInactive
	case errors.Is(err, assignment.ErrScoreOutOfRange),
		errors.Is(err, assignment.ErrNotAssessor),
		errors.Is(err, assignment.ErrPointMismatch),
		errors.Is(err, repository.ErrNotFound):
		return outcomeRejected
	default:
		return outcomeError
	}
}

// Recompute queues a report rebuild for each program. No ids means every
// program in the current snapshot. It returns how many jobs were queued; a
// partially refused batch is reported with jobqueue.ErrFull.
func (s *Service) Recompute(ctx context.Context, programIDs []uuid.UUID) (int, error) {
	if !s.Started() {
		return 0, ErrNotStarted
	}
	if len(programIDs) == 0 {
		snap, err := s.store.LoadSnapshot(ctx)
		if err != nil {
			return 0, err
		}
		for _, p := range snap.Programs() {
			programIDs = append(programIDs, p.ID)
		}
	}

	queued := 0
	for _, id := range programIDs {
		if err := s.enqueue(ctx, jobqueue.NewJob(id, model.Scope{}, "recompute")); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

func (s *Service) enqueue(ctx context.Context, job jobqueue.Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	if s.queue.IsClosed() {
		return jobqueue.ErrStopped
	}
	if !s.queue.Enqueue(ctx, job) {
		return jobqueue.ErrFull
	}
	return nil
}

// handle rebuilds one program's report and publishes it to the ranking cache.
func (s *Service) handle(ctx context.Context, job jobqueue.Job) error {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	rep, err := s.build(ctx, snap, job.Scope, job.ProgramID, "")
	if err != nil {
		return err
	}
	return s.cache.Put(ctx, rep)
}

// Rankings returns the top programs by cached score.
func (s *Service) Rankings(ctx context.Context, limit int) ([]types.Entry, error) {
	return s.cache.TopN(ctx, limit)
}

// Rank returns one program's cached ranking entry.
func (s *Service) Rank(ctx context.Context, programID uuid.UUID) (types.Entry, error) {
	return s.cache.Rank(ctx, programID)
}

// CachedReport returns the last report published for a program.
func (s *Service) CachedReport(ctx context.Context, programID uuid.UUID) (report.Program, error) {
	return s.cache.Get(ctx, programID)
}

// Stats is a snapshot of the service's runtime state.
type Stats struct {
	Started        bool                     `json:"started"`
	WorkerCount    int                      `json:"worker_count"`
	QueueCapacity  int                      `json:"queue_capacity"`
	QueueLength    int                      `json:"queue_length"`
	RankedPrograms int                      `json:"ranked_programs"`
	HeldKeys       int64                    `json:"held_evaluation_keys"`
	DefaultScale   grading.Scale            `json:"default_scale"`
	Jobs           workerpool.StatsSnapshot `json:"jobs"`
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:        s.started,
		WorkerCount:    s.workerCount,
		QueueCapacity:  s.queueSize,
		RankedPrograms: s.cache.Count(ctx),
		HeldKeys:       s.keys.Size(),
		DefaultScale:   s.defaultScale,
	}
	if s.queue != nil {
		st.QueueLength = s.queue.Len(ctx)
	}
	if s.pool != nil {
		st.Jobs = s.pool.Stats()
	}
	return st
}
