package kvbackend

import (
	"context"
	"strings"
	"sync"

	"github.com/nest-os/nest/storage"
)

// Memory stores key-value pairs in memory.
//
// Scan matches the keys of a bucket, like Bolt.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.KVBackend = (*Memory)(nil)

// Put creates or updates a value.
func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Get returns a value, or storage.ErrNotFound.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Delete deletes a value.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.data, key)
	return nil
}

// Scan returns the values directly below prefix.
func (m *Memory) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte)
	for k, v := range m.data {
		rest := strings.TrimPrefix(k, prefix+"/")
		if rest == k || strings.Contains(rest, "/") {
			continue
		}
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}
