package options

import (
	"context"
	"sync"
)

type MemoryStore struct {
	data map[string]string
	mu   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

func (ms *MemoryStore) Get(_ context.Context, key string) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	value, exists := ms.data[key]
	if !exists {
		return "", ErrOptionNotFound
	}

	return value, nil
}

func (ms *MemoryStore) Set(_ context.Context, key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data[key] = value
	return nil
}

func (ms *MemoryStore) Add(_ context.Context, key, value string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.data[key]; exists {
		return false, nil
	}
	ms.data[key] = value
	return true, nil
}

func (ms *MemoryStore) Delete(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.data, key)
	return nil
}

// Keys returns a snapshot of the stored keys, in no particular order.
func (ms *MemoryStore) Keys() []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	keys := make([]string, 0, len(ms.data))
	for k := range ms.data {
		keys = append(keys, k)
	}
	return keys
}

func (ms *MemoryStore) Close() error {
	return nil
}
