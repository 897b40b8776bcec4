package repository

import (
	"context"
	"sort"
	"sync"
)

type memoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

// NewMemoryBackend returns a process-local backend. Bodies are copied on the
// way in and out so callers never share buffers with the store.
func NewMemoryBackend() Backend {
	return &memoryBackend{collections: make(map[string]map[string][]byte)}
}

func (m *memoryBackend) List(_ context.Context, collection string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([][]byte, 0, len(ids))
	for _, id := range ids {
		result = append(result, cloneBytes(docs[id]))
	}
	return result, nil
}

func (m *memoryBackend) Get(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	body, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(body), nil
}

func (m *memoryBackend) Put(_ context.Context, collection, id string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		m.collections[collection] = docs
	}
	docs[id] = cloneBytes(body)
	return nil
}

func (m *memoryBackend) Ping(context.Context) error {
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
