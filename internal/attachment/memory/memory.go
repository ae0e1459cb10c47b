// Package memory implements an in-memory attachment store for development
// and testing.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/campusfolio/platform/internal/records"
)

// Store keeps attachment blobs in a mutex-guarded map.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New constructs a Store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Put stores a blob and returns a mem:// reference.
func (s *Store) Put(_ context.Context, path string, _ string, data []byte) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	ref := "mem://" + path
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = append([]byte(nil), data...)
	return ref, nil
}

// Get returns a stored blob. Mainly for tests.
func (s *Store) Get(ref string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[ref]
	return data, ok
}

// Delete removes a stored blob.
func (s *Store) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		return records.ErrNotFound
	}
	delete(s.blobs, ref)
	return nil
}

// Len reports the number of stored blobs. Mainly for tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
