package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/gdview/internal/httpgd"
)

// Mode is the connection mode owned by the supervisor.
type Mode int

const (
	Closed Mode = iota
	FastPoll
	SlowPoll
	Pushed
)

func (m Mode) String() string {
	switch m {
	case Closed:
		return "closed"
	case FastPoll:
		return "poll"
	case SlowPoll:
		return "slowpoll"
	case Pushed:
		return "push"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Snapshot represents the latest connection status visible to other goroutines.
type Snapshot struct {
	Mode                Mode
	Connected           bool
	Remote              httpgd.RemoteState
	HasRemote           bool
	Paused              bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed state queries
}

// IsOffline returns true when the server has been unreachable for multiple queries.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent reads of the status the supervisor publishes.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetMode records the active connection mode.
func (s *Store) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Mode = mode
}

// SetConnected records the connectivity flag.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Connected = connected
}

// SetPaused records whether periodic queries are suppressed.
func (s *Store) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Paused = paused
}

// Update records the outcome of a state query or push message. When err is
// non-nil the previous remote state is kept but the error is recorded.
func (s *Store) Update(remote *httpgd.RemoteState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if remote != nil {
		s.snapshot.Remote = *remote
		s.snapshot.HasRemote = true
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
