package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"

	"github.com/five82/gdview/internal/cursor"
	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/state"
	"github.com/five82/gdview/internal/supervisor"
)

// ZoomLevels are the steps ZoomIn and ZoomOut move through.
var ZoomLevels = []float64{0.25, 0.33, 0.5, 0.67, 0.75, 0.9, 1, 1.1, 1.25, 1.5, 1.75, 2, 2.5, 3, 4}

const defaultZoom = 1.0

// Decision tells the caller what a supervisor event requires.
type Decision struct {
	// RefetchPlots is set when the server history moved to a new update id.
	RefetchPlots bool

	ActivityChanged bool
	Active          bool

	ConnectivityChanged bool
	Connected           bool

	ModeChanged bool
	Mode        state.Mode
}

// Orchestrator joins supervisor events, the plot source and the cursor.
// Apart from FetchPlots, FetchImage, RemovePlot, RemoveAt and Clear, its methods must be called
// from one goroutine.
type Orchestrator struct {
	source httpgd.PlotSource
	cursor *cursor.Cursor

	lastUpdateID int
	hasUpdateID  bool
	active       bool
	connected    bool
	mode         state.Mode
	remote       httpgd.RemoteState

	width  float64
	height float64
	zoom   float64

	cacheBuster string
	newBuster   func() string
}

// New returns an orchestrator reading plots from source.
func New(source httpgd.PlotSource) *Orchestrator {
	o := &Orchestrator{
		source:    source,
		cursor:    cursor.New(),
		zoom:      defaultZoom,
		newBuster: func() string { return ulid.Make().String() },
	}
	o.cacheBuster = o.newBuster()
	return o
}

// HandleEvent records the event and reports what the caller should do next.
func (o *Orchestrator) HandleEvent(ev supervisor.Event) Decision {
	var d Decision
	switch ev := ev.(type) {
	case supervisor.StateChanged:
		o.remote = ev.State
		if !o.hasUpdateID || ev.State.UpdateID != o.lastUpdateID {
			o.lastUpdateID = ev.State.UpdateID
			o.hasUpdateID = true
			d.RefetchPlots = true
			o.rotateBuster()
		}
		if ev.State.DeviceActive != o.active {
			o.active = ev.State.DeviceActive
			d.ActivityChanged = true
		}
	case supervisor.ConnectivityChanged:
		o.connected = ev.Connected
		d.ConnectivityChanged = true
	case supervisor.ModeChanged:
		o.mode = ev.Mode
		d.ModeChanged = true
	default:
		glog.Warningf("[viewer] unknown event %T", ev)
	}
	d.Active = o.active
	d.Connected = o.connected
	d.Mode = o.mode
	return d
}

// FetchPlots asks the source for the current plot list. It touches no
// orchestrator state and may run on any goroutine.
func (o *Orchestrator) FetchPlots(ctx context.Context) (httpgd.PlotList, error) {
	list, err := o.source.FetchPlots(ctx)
	if err != nil {
		return httpgd.PlotList{}, fmt.Errorf("fetch plots: %w", err)
	}
	return list, nil
}

// ApplyPlots installs a fetched list and returns the image to show, if it
// changed.
func (o *Orchestrator) ApplyPlots(list httpgd.PlotList) (string, bool) {
	if !o.hasUpdateID || list.State.UpdateID != o.lastUpdateID {
		o.lastUpdateID = list.State.UpdateID
		o.hasUpdateID = true
		o.rotateBuster()
	}
	o.remote = list.State
	o.cursor.Update(list)
	glog.V(1).Infof("[viewer] applied %d plots at upid %d", len(list.Plots), list.State.UpdateID)
	return o.render()
}

// Navigate moves the selection by offset.
func (o *Orchestrator) Navigate(offset int) (string, bool) {
	o.cursor.Navigate(offset)
	return o.render()
}

// First selects the oldest plot.
func (o *Orchestrator) First() (string, bool) {
	o.cursor.JumpToIndex(0)
	return o.render()
}

// Last selects the newest plot.
func (o *Orchestrator) Last() (string, bool) {
	o.cursor.JumpToIndex(-1)
	return o.render()
}

// JumpToID selects the plot with id. Unknown ids keep the selection.
func (o *Orchestrator) JumpToID(id string) (string, bool) {
	o.cursor.JumpToID(id)
	return o.render()
}

// Resize records the available render area in device units.
func (o *Orchestrator) Resize(width, height float64) (string, bool) {
	o.width = math.Max(width, 0)
	o.height = math.Max(height, 0)
	return o.render()
}

// SetZoom sets the zoom factor. Non-positive values reset it.
func (o *Orchestrator) SetZoom(zoom float64) (string, bool) {
	if zoom <= 0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = defaultZoom
	}
	o.zoom = zoom
	return o.render()
}

// ZoomIn moves to the next larger zoom level.
func (o *Orchestrator) ZoomIn() (string, bool) {
	for _, z := range ZoomLevels {
		if z > o.zoom+1e-9 {
			return o.SetZoom(z)
		}
	}
	return o.render()
}

// ZoomOut moves to the next smaller zoom level.
func (o *Orchestrator) ZoomOut() (string, bool) {
	for i := len(ZoomLevels) - 1; i >= 0; i-- {
		if ZoomLevels[i] < o.zoom-1e-9 {
			return o.SetZoom(ZoomLevels[i])
		}
	}
	return o.render()
}

// ResetZoom returns to 100%.
func (o *Orchestrator) ResetZoom() (string, bool) {
	return o.SetZoom(defaultZoom)
}

// CurrentRef returns the selected plot.
func (o *Orchestrator) CurrentRef() (httpgd.PlotRef, bool) {
	id, ok := o.cursor.CurrentID()
	return httpgd.PlotRef{ID: id}, ok
}

// RemovePlot deletes ref on the server. A plot the server no longer holds is
// not an error. Safe to call from any goroutine; the next StateChanged
// triggers the refetch.
func (o *Orchestrator) RemovePlot(ctx context.Context, ref httpgd.PlotRef) error {
	err := o.source.RemovePlot(ctx, ref)
	if errors.Is(err, httpgd.ErrNotFound) {
		glog.V(1).Infof("[viewer] plot %s already gone", ref.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove plot %s: %w", ref.ID, err)
	}
	return nil
}

// RemoveAt deletes the plot at a history position on the server. Like
// RemovePlot, a position the server no longer holds is not an error.
func (o *Orchestrator) RemoveAt(ctx context.Context, index int) error {
	err := o.source.RemoveByIndex(ctx, index)
	if errors.Is(err, httpgd.ErrNotFound) {
		glog.V(1).Infof("[viewer] no plot at index %d", index)
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove plot at %d: %w", index, err)
	}
	return nil
}

// Clear empties the server history. Safe to call from any goroutine.
func (o *Orchestrator) Clear(ctx context.Context) error {
	if err := o.source.Clear(ctx); err != nil {
		return fmt.Errorf("clear plots: %w", err)
	}
	return nil
}

// Mutated forces a fresh image after a remove or clear, even when the
// selection lands on an id that was shown before.
func (o *Orchestrator) Mutated() {
	o.rotateBuster()
}

// PositionLabel formats the selection as "<n>/<count>".
func (o *Orchestrator) PositionLabel() string {
	return o.cursor.PositionLabel()
}

// Plots returns the known plots, oldest first.
func (o *Orchestrator) Plots() []httpgd.PlotRef {
	return o.cursor.Plots()
}

// Index returns the selected position, or -1.
func (o *Orchestrator) Index() int {
	return o.cursor.Index()
}

// Zoom returns the current zoom factor.
func (o *Orchestrator) Zoom() float64 {
	return o.zoom
}

// Active reports whether the server device was active at the last state.
func (o *Orchestrator) Active() bool {
	return o.active
}

func (o *Orchestrator) Connected() bool {
	return o.connected
}

func (o *Orchestrator) Mode() state.Mode {
	return o.mode
}

// Remote returns the most recently observed server state.
func (o *Orchestrator) Remote() httpgd.RemoteState {
	return o.remote
}

func (o *Orchestrator) rotateBuster() {
	o.cacheBuster = o.newBuster()
	o.cursor.Invalidate()
}

func (o *Orchestrator) render() (string, bool) {
	o.cursor.ResizeViewport(o.width/o.zoom, o.height/o.zoom)
	return o.cursor.NextImageIfStale(o.source, o.cacheBuster)
}

// FetchImage downloads the payload behind an address returned by a render.
// Safe to call from any goroutine.
func (o *Orchestrator) FetchImage(ctx context.Context, src string) ([]byte, error) {
	body, err := o.source.FetchImage(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	return body, nil
}
