package donation

import (
	"sync"
	"sync/atomic"
)

// Store holds the current snapshot. Readers never see a partially built
// snapshot: a new one is swapped in whole with a fresh version stamp.
type Store struct {
	mu      sync.Mutex // serialises Publish
	version uint64
	cur     atomic.Pointer[DomainSnapshot]
}

func NewStore() *Store { return &Store{} }

// Current returns the latest snapshot, or nil if none has been published.
func (s *Store) Current() *DomainSnapshot { return s.cur.Load() }

// Publish stamps a copy of snap with the next version and makes it current.
func (s *Store) Publish(snap *DomainSnapshot) *DomainSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	stamped := *snap
	stamped.Version = s.version
	s.cur.Store(&stamped)
	return &stamped
}

