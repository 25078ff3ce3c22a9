package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

// Memory keeps objects in a map. It backs tests and dry runs.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Location returns a mem:// URL for key.
func (m *Memory) Location(key string) string { return "mem://" + key }

// Put stores a copy of data.
func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	cp := append([]byte(nil), data...)
	m.mu.Lock()
	m.objects[key] = cp
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the stored object.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, m.Location(key))
	}
	return append([]byte(nil), data...), nil
}
