package predict

import "sync"

// Store guards the Record with one mutex so readers never see a torn update.
type Store struct {
	mu      sync.Mutex
	rec     Record
	changed chan struct{}
}

func NewStore(intervalSeconds float64) *Store {
	if intervalSeconds < 0 {
		intervalSeconds = 0
	}
	return &Store{
		rec:     Record{AutosaveIntervalSeconds: intervalSeconds},
		changed: make(chan struct{}),
	}
}

func (s *Store) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Revision
}

// Mutate runs fn on a copy of the record and commits it with the next
// revision when fn reports a change. fn cannot alter the revision itself.
func (s *Store) Mutate(fn func(*Record) bool) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.rec
	if !fn(&next) {
		return s.rec
	}
	next.Revision = s.rec.Revision + 1
	s.rec = next
	close(s.changed)
	s.changed = make(chan struct{})
	return s.rec
}

// Changed returns a channel that is closed at the next committed revision.
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}
