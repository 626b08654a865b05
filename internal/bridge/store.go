package bridge

import (
	"sync"

	"github.com/dokzlo13/huemqtt/internal/entity"
)

type storeKey struct {
	kind entity.Kind
	id   int
}

// Store is the last-known-state cache, one snapshot per (kind, id).
// Entries live for the lifetime of the process.
type Store struct {
	mu      sync.RWMutex
	entries map[storeKey]entity.Entity
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[storeKey]entity.Entity)}
}

// Get returns the snapshot for (kind, id), or ok=false if never observed.
func (s *Store) Get(kind entity.Kind, id int) (entity.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[storeKey{kind, id}]
	return e, ok
}

// Put replaces the snapshot for (kind, id).
func (s *Store) Put(kind entity.Kind, id int, e entity.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[storeKey{kind, id}] = e
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
