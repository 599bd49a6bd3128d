// Package memory implements the KeyValueStore port with a process-local map.
// Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeyValueStore = (*KVStore)(nil)

// KVStore is an in-memory KeyValueStore.
type KVStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewKVStore creates an empty KVStore.
func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string]string)}
}

// Get returns the value under key, or "" if it was never set.
func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores or replaces the value under key.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
