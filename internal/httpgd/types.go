package httpgd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPush is returned when a push-channel payload is not a state snapshot.
var ErrMalformedPush = errors.New("malformed push message")

// ErrNotFound is returned when a mutation targets a plot the server no longer holds.
var ErrNotFound = errors.New("plot not found")

// RemoteState mirrors the payload returned by /state and pushed over the channel.
type RemoteState struct {
	UpdateID     int  `json:"upid"`
	PlotCount    int  `json:"hsize"`
	DeviceActive bool `json:"active"`
}

// Equal reports whether two snapshots carry identical field values.
func (s RemoteState) Equal(other RemoteState) bool {
	return s.UpdateID == other.UpdateID &&
		s.PlotCount == other.PlotCount &&
		s.DeviceActive == other.DeviceActive
}

// PlotRef identifies one plot in the server's history buffer.
type PlotRef struct {
	ID string `json:"id"`
}

// PlotList mirrors /plots. Plots are ordered oldest first.
type PlotList struct {
	State RemoteState `json:"state"`
	Plots []PlotRef   `json:"plots"`
}

// ImageQuery selects a plot image and its render size. ID wins over Index,
// and Index is only sent when ByIndex is set. A query naming neither
// addresses the newest plot.
type ImageQuery struct {
	ID          string
	Index       int
	ByIndex     bool
	Width       float64
	Height      float64
	CacheBuster string
}

// DecodeState parses a push payload. Only JSON objects carrying every
// RemoteState field are accepted.
func DecodeState(data []byte) (RemoteState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RemoteState{}, ErrMalformedPush
	}
	var raw struct {
		UpdateID     *int  `json:"upid"`
		PlotCount    *int  `json:"hsize"`
		DeviceActive *bool `json:"active"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return RemoteState{}, fmt.Errorf("%w: %v", ErrMalformedPush, err)
	}
	if raw.UpdateID == nil || raw.PlotCount == nil || raw.DeviceActive == nil {
		return RemoteState{}, ErrMalformedPush
	}
	return RemoteState{
		UpdateID:     *raw.UpdateID,
		PlotCount:    *raw.PlotCount,
		DeviceActive: *raw.DeviceActive,
	}, nil
}
