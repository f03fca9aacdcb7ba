// Package queue carries program recompute jobs from the submission path to
// the worker pool.
//
// The queue is bounded: when it is full Enqueue refuses the job rather than
// blocking the caller, and the caller decides whether to retry or drop it.
// With coalescing enabled, a burst of submissions against one program
// collapses into a single pending recompute.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Job asks for one program's report to be rebuilt under a scope.
type Job struct {
	ID         uuid.UUID   `json:"id"`
	ProgramID  uuid.UUID   `json:"program_id"`
	Scope      model.Scope `json:"scope"`
	Reason     string      `json:"reason,omitempty"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
}

// NewJob builds a job stamped with a fresh id and the current time.
func NewJob(programID uuid.UUID, scope model.Scope, reason string) Job {
	return Job{
		ID:         uuid.New(),
		ProgramID:  programID,
		Scope:      scope,
		Reason:     reason,
		EnqueuedAt: time.Now(),
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns false if the queue is full or closed and the job was not enqueued.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel that receives jobs as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs and closes the dequeue channel once drained.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	coalesce bool
	now      func() time.Time

	mu      sync.Mutex
	closed  bool
	pending map[pendingKey]struct{}
}

type pendingKey struct {
	program uuid.UUID
	scope   model.Scope
}

func keyOf(j Job) pendingKey { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	return pendingKey{program: j.ProgramID, scope: j.Scope}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		now:      time.Now,
		pending:  make(map[pendingKey]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Capacity returns the maximum number of queued jobs.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Enqueue adds a job to the queue. A job merged into an identical pending
// one counts as accepted.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	if q.coalesce {
		if _, ok := q.pending[keyOf(j)]; ok {
			metrics.RecordQueueCoalesced()
			return true
		}
	}

	if len(q.jobs) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "capacity_exceeded")
		return false
	}

	if j.EnqueuedAt.IsZero() {
		j.EnqueuedAt = q.now()
	}

	select {
	case q.jobs <- j:
		if q.coalesce {
			q.pending[keyOf(j)] = struct{}{}
		}
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			// Forget the job before it runs so a submission racing with the
			// recompute queues a new one.
			q.release(j)
			select {
			case out <- j:
				metrics.RecordQueueDequeue()
				metrics.RecordQueueProcessingLatency(float64(q.now().Sub(j.EnqueuedAt).Milliseconds()))
				q.updateGauges()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) release(j Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if !q.coalesce {
		return
	}
	q.mu.Lock()
	delete(q.pending, keyOf(j))
	q.mu.Unlock()
}

	// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	q.updateGauges()
	return len(q.jobs)
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Close stops accepting jobs. Jobs already buffered are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.jobs)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
