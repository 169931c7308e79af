package cache

import (
	"context"
	"sync"
)

// memoryStore is the in-process Store used in tests and single-node
// deployments without Redis.
type memoryStore struct {
	mu         sync.RWMutex
	namespaces map[Namespace]map[string][]byte
}

func NewMemoryStore() Store {
	return &memoryStore{
		namespaces: make(map[Namespace]map[string][]byte),
	}
}

func (s *memoryStore) Get(_ context.Context, ns Namespace, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.namespaces[ns]
	if !ok {
		return nil, ErrMiss
	}
	value, ok := entries[key]
	if !ok {
		return nil, ErrMiss
	}
	cloned := append([]byte(nil), value...)
	return cloned, nil
}

func (s *memoryStore) Put(_ context.Context, ns Namespace, key string, value []byte) error {
	cloned := append([]byte(nil), value...)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.namespaces[ns]
	if !ok {
		entries = make(map[string][]byte)
		s.namespaces[ns] = entries
	}
	entries[key] = cloned
	return nil
}

func (s *memoryStore) Evict(_ context.Context, ns Namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries, ok := s.namespaces[ns]; ok {
		delete(entries, key)
	}
	return nil
}

func (s *memoryStore) EvictAll(_ context.Context, ns Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.namespaces, ns)
	return nil
}
