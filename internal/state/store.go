package state

import (
	"sort"
	"sync"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

// Store holds the authoritative set of active containers. All mutation and
// snapshot operations are short critical sections; callers must never perform
// I/O while holding a reference into the store's internals, which Snapshot
// guarantees by returning copies.
type Store struct {
	mu         sync.RWMutex
	containers map[string]domain.ContainerRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		containers: make(map[string]domain.ContainerRecord),
	}
}

// Upsert inserts or wholesale-replaces the record for a container.
func (s *Store) Upsert(rec domain.ContainerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers[rec.Id] = rec
}

// Remove deletes a container's record, reporting whether one was present.
func (s *Store) Remove(containerId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.containers[containerId]; !exists {
		return false
	}
	delete(s.containers, containerId)
	return true
}

// Replace clears the store and inserts the given records. Used by full
// resync to rebuild the view from scratch.
func (s *Store) Replace(recs []domain.ContainerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.containers = make(map[string]domain.ContainerRecord, len(recs))
	for _, rec := range recs {
		s.containers[rec.Id] = rec
	}
}

// Snapshot returns a deep copy of all records, sorted by container name then
// id so that rendered output is stable across writes. Nested maps and slices
// are cloned so the caller shares nothing with the store.
func (s *Store) Snapshot() []domain.ContainerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]domain.ContainerRecord, 0, len(s.containers))
	for _, rec := range s.containers {
		recs = append(recs, rec.Clone())
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Name != recs[j].Name {
			return recs[i].Name < recs[j].Name
		}
		return recs[i].Id < recs[j].Id
	})
	return recs
}

// Len returns the number of tracked containers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.containers)
}
