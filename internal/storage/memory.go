// Package storage provides the key-value backends behind the engagement
// store: in-memory, a directory of files, SQLite and Badger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// ErrClosed is returned by every operation on a closed store.
var ErrClosed = errors.New("store is closed")

// Compile-time interface checks.
var (
	_ domain.KVStore = (*MemoryKV)(nil)
	_ domain.KVStore = (*FileKV)(nil)
	_ domain.KVStore = (*SQLiteKV)(nil)
	_ domain.KVStore = (*BadgerKV)(nil)
)

// MemoryKV is an in-memory key-value store. Safe for concurrent access.
type MemoryKV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
	log    *logger.Logger
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV(log *logger.Logger) *MemoryKV {
	return &MemoryKV{
		data: make(map[string][]byte),
		log:  log,
	}
}

// Get returns a copy of the value stored under key.
func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		s.log.Debug("key not found: %s", key)
		return nil, fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	}
	return slices.Clone(v), nil
}

// Set stores a copy of value under key, overwriting any previous value.
func (s *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.data[key] = slices.Clone(value)
	s.log.Debug("stored %s (%d bytes)", key, len(value))
	return nil
}

// Close marks the store closed. The data is dropped.
func (s *MemoryKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}
