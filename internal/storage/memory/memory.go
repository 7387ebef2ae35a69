// Package memory provides a simple in-memory implementation used for
// development and tests. It keeps code paths easy to follow while allowing
// us to plug in a real store later.
package memory

import (
	"context"
	"sync"

	"github.com/finflow/finflow/internal/kv"
)

// Store is an in-memory key-value store guarded by an RWMutex for
// concurrent reads/writes. Values are copied on the way in and out so
// callers never share backing arrays with the store.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Reset drops all keys. Test helper.
func (s *Store) Reset() {
	s.mu.Lock()
	s.data = make(map[string][]byte)
	s.mu.Unlock()
}

// Get implements kv.Store.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put implements kv.Store.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.mu.Lock()
	s.data[key] = cp
	s.mu.Unlock()
	return nil
}

// Delete implements kv.Store. Deleting a missing key is a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

var _ kv.Store = (*Store)(nil)
