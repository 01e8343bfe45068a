package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/eqrev-analytics/pkg/cache"
)

// MemoryCacher is an in-process cache.Cacher that round-trips values through
// JSON like the redis implementation does.
type MemoryCacher struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    chan string
}

func NewMemoryCacher() *MemoryCacher {
	return &MemoryCacher{
		entries: make(map[string][]byte),
		sets:    make(chan string, 64),
	}
}

// Sets receives every key after it has been written.
func (m *MemoryCacher) Sets() <-chan string {
	return m.sets
}

func (m *MemoryCacher) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MemoryCacher) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = data
	m.mu.Unlock()

	select {
	case m.sets <- key:
	default:
	}
	return nil
}

func (m *MemoryCacher) Close() error {
	return nil
}
