package display

import (
	"sync"
	"time"

	"github.com/GreyHak/satisfactory-save-monitor/internal/runstatus"
	"github.com/GreyHak/satisfactory-save-monitor/internal/wire"
)

// Snapshot is the observer's copy of the last prediction received.
type Snapshot struct {
	Status wire.Status
	// Revision counts frames received by this process; 0 means none yet.
	Revision      uint64
	ReceivedAt    time.Time
	Link          string
	LinkChangedAt time.Time
}

func (s Snapshot) HasStatus() bool {
	return s.Revision > 0
}

// Store is shared by the connection reader and the display loop.
type Store struct {
	mu   sync.Mutex
	snap Snapshot
	now  func() time.Time
}

func NewStore() *Store {
	s := &Store{now: time.Now}
	s.snap.Link = runstatus.Connecting
	s.snap.LinkChangedAt = s.now()
	return s
}

func (s *Store) Apply(status wire.Status, receivedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Status = status
	s.snap.Revision++
	s.snap.ReceivedAt = receivedAt
}

func (s *Store) SetLink(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Link == status {
		return
	}
	s.snap.Link = status
	s.snap.LinkChangedAt = s.now()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
