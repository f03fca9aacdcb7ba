package queue

import "time"

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of pending jobs.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithCoalescing merges a job into an identical pending one (same program
// and scope) instead of queueing it twice. The pending job still loads a
// fresh snapshot when it runs, so no submission is lost.
func WithCoalescing(enabled bool) Option {
	return func(q *InMemoryQueue) {
		q.coalesce = enabled
	}
}

// WithClock overrides the clock used to stamp jobs and measure queue latency.
func WithClock(now func() time.Time) Option {
	return func(q *InMemoryQueue) {
		if now != nil {
			q.now = now
		}
	}
}
