package dataset

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

const memoKey = "value"

// Memo caches the result of a loader until Invalidate is called.
// Concurrent callers share a single in-flight load; failed loads are not
// cached.
type Memo[T any] struct {
	load  func(ctx context.Context) (T, error)
	group singleflight.Group

	mu     sync.RWMutex
	value  T
	loaded bool
	gen    uint64
	loads  int
}

func NewMemo[T any](load func(ctx context.Context) (T, error)) *Memo[T] {
	return &Memo[T]{load: load}
}

func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	if v, ok := m.cached(); ok {
		return v, nil
	}

	ch := m.group.DoChan(memoKey, func() (interface{}, error) {
		m.mu.RLock()
		if m.loaded {
			v := m.value
			m.mu.RUnlock()
			return v, nil
		}
		gen := m.gen
		m.mu.RUnlock()

		v, err := m.load(ctx)

		m.mu.Lock()
		m.loads++
		// A load that raced an Invalidate is returned but not kept.
		if err == nil && gen == m.gen {
			m.value = v
			m.loaded = true
		}
		m.mu.Unlock()
		return v, err
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Invalidate drops the cached value; the next Get reloads.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	m.value = zero
	m.loaded = false
	m.gen++
	m.group.Forget(memoKey)
}

// Loads reports how many times the loader has run.
func (m *Memo[T]) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

func (m *Memo[T]) cached() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, m.loaded
}
