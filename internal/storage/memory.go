package storage

import (
	"context"
	"sync"

	"todomcp/internal/domain"
)

// MemoryBackend keeps the document in process. Load and Save deep-copy so
// callers never share state with the backend.
type MemoryBackend struct {
	mu    sync.Mutex
	data  *domain.Data
	saves int
}

// NewMemory returns a memory backend preloaded with initial (may be nil).
func NewMemory(initial *domain.Data) *MemoryBackend {
	return &MemoryBackend{data: initial.Clone()}
}

func (b *MemoryBackend) Load(_ context.Context) (*domain.Data, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, ErrNotExist
	}
	return b.data.Clone(), nil
}

func (b *MemoryBackend) Save(_ context.Context, data *domain.Data) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data.Clone()
	b.data.Normalize()
	b.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *MemoryBackend) Describe() string { return DriverMemory }

func (b *MemoryBackend) Close() error { return nil }
