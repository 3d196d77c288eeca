package seqstore

import (
	"context"
	"sync"
)

// MemoryStore keeps maps in process memory. It does not survive a restart.
type MemoryStore struct {
	mu   sync.Mutex
	maps map[string]Timestamps
}

// NewMemoryStore returns a process-local store, used in tests and single-node runs.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{maps: map[string]Timestamps{}}
}

func (m *MemoryStore) Load(_ context.Context, scope string) (Timestamps, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maps[SanitizeScope(scope)].Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, scope string, fn func(Timestamps) error) (Timestamps, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	scope = SanitizeScope(scope)
	ts := m.maps[scope].Clone()
	if err := fn(ts); err != nil {
		return nil, err
	}
	m.maps[scope] = ts
	return ts.Clone(), nil
}
