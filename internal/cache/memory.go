package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache used when no Redis address is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	opts    Options
	closed  bool
	stop    chan struct{}
}

func NewMemory(opts Options) *Memory {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultOptions().DefaultTTL
	}
	m := &Memory{
		entries: make(map[string]memoryEntry),
		opts:    opts,
		stop:    make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go m.janitor(opts.CleanupInterval)
	}
	return m
}

func (m *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	raw, err := encode(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = m.opts.DefaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = memoryEntry{value: raw, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) Get(ctx context.Context, key string, value interface{}) error {
	m.mu.RLock()
	entry, ok := m.entries[key]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !ok || time.Now().After(entry.expiresAt) {
		return ErrNotFound
	}
	return Decode(entry.value, value)
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.stop)
	return nil
}

func (m *Memory) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
