package session

import (
	"sync"
	"time"

	"github.com/angelmondragon/outside-subscription/internal/flow"
)

// entry guards one flow state. mu covers memory access only; the Locker covers
// whole operations, so reads stay available during a checkout delay.
type entry struct {
	mu        sync.Mutex
	id        string
	state     *flow.State
	createdAt time.Time
	touchedAt time.Time
	// pins counts operations in flight; pinned entries are never evicted.
	pins int
}

// pin marks the entry in use and touches it.
func (e *entry) pin(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pins++
	e.touchedAt = now
}

func (e *entry) unpin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pins--
}

func (e *entry) snapshot() flow.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// with runs fn on the state under the entry mutex.
func (e *entry) with(now time.Time, fn func(*flow.State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.state); err != nil {
		return err
	}
	e.touchedAt = now
	return nil
}

type store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	max     int
}

func newStore(max int) *store {
	return &store{entries: make(map[string]*entry), max: max}
}

func (s *store) get(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// put adds e, evicting the least recently touched unpinned entry when full.
// When every entry is pinned the store grows past max. It returns the new size.
func (s *store) put(e *entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.entries) >= s.max {
		s.evictOldestLocked()
	}
	s.entries[e.id] = e
	return len(s.entries)
}

func (s *store) remove(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return len(s.entries), ok
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.entries {
		e.mu.Lock()
		touched, pinned := e.touchedAt, e.pins > 0
		e.mu.Unlock()
		if pinned {
			continue
		}
		if oldestID == "" || touched.Before(oldest) {
			oldestID, oldest = id, touched
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}
