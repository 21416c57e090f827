package store

import (
	"context"
	"sync"

	"github.com/always-cache/conditional/rfc7232"
)

// MemoryStore is an in-memory ValidatorStore backed by a mutex-protected map.
type MemoryStore struct {
	mutex *sync.RWMutex
	db    map[string]rfc7232.TimedValidator
}

func NewMemoryStore() MemoryStore {
	return MemoryStore{
		mutex: &sync.RWMutex{},
		db:    make(map[string]rfc7232.TimedValidator),
	}
}

func (m MemoryStore) Get(_ context.Context, key string) (rfc7232.TimedValidator, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	v, ok := m.db[key]
	return v, ok, nil
}

func (m MemoryStore) Put(_ context.Context, key string, v rfc7232.TimedValidator) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[key] = v
	return nil
}

func (m MemoryStore) Purge(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, key)
	return nil
}
