package supervisor

import (
	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/state"
)

// Event is one notification delivered on the Events channel.
// Concrete types are StateChanged, ConnectivityChanged and ModeChanged.
type Event interface {
	isEvent()
}

// StateChanged carries a snapshot that differs from the last delivered one.
type StateChanged struct {
	State httpgd.RemoteState
}

// ConnectivityChanged fires on each connected/disconnected edge.
type ConnectivityChanged struct {
	Connected bool
}

// ModeChanged fires whenever the supervisor enters a new mode.
type ModeChanged struct {
	Mode state.Mode
}

func (StateChanged) isEvent()        {}
func (ConnectivityChanged) isEvent() {}
func (ModeChanged) isEvent()         {}
