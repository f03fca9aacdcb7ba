package assignment

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/akreditasi/internal/domain/model"
)

// KeyLock serializes evaluation submissions per (assignment, assessor, point)
// key inside one process. Distinct keys never block each other.
type KeyLock struct {
	mu    sync.Mutex
	held  map[model.EvaluationKey]*slot
	pool  sync.Pool
	count atomic.Int64
}

// slot is a one-token semaphore shared by every waiter on a key.
type slot struct {
	token chan struct{}
	refs  int
}

// NewKeyLock returns an empty KeyLock.
func NewKeyLock() *KeyLock {
	return &KeyLock{
		held: make(map[model.EvaluationKey]*slot),
		pool: sync.Pool{
			New: func() interface{} {
				return &slot{token: make(chan struct{}, 1)}
			},
		},
	}
}

// Lock blocks until key is free or ctx is done. The returned func releases
// the key and must be called exactly once.
func (k *KeyLock) Lock(ctx context.Context, key model.EvaluationKey) (func(), error) {
	k.mu.Lock()
	s, ok := k.held[key]
	if !ok {
		s = k.pool.Get().(*slot)
		k.held[key] = s
		k.count.Add(1)
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.token <- struct{}{}:
		return func() { k.release(key, s, true) }, nil
	case <-ctx.Done():
		k.release(key, s, false)
		return nil, ctx.Err()
	}
}

func (k *KeyLock) release(key model.EvaluationKey, s *slot, acquired bool) {
	if acquired {
		<-s.token
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.held, key)
		k.count.Add(-1)
		k.pool.Put(s)
	}
}

// Size returns the number of keys currently held or awaited.
func (k *KeyLock) Size() int64 {
	return k.count.Load()
}
