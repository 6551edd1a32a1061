package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mamadbah2/herdboard/internal/repository"
)

// Store keeps blobs in a process-local map. Useful for tests and throwaway runs.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Get returns a copy of the stored blob.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, repository.ErrNotFound)
	}
	return append([]byte(nil), value...), nil
}

// Put stores a copy of value under key.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key; missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Keys lists the stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
