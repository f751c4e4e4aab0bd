package viewer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/five82/gdview/internal/cursor"
	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/state"
	"github.com/five82/gdview/internal/supervisor"
)

type fakeSource struct {
	list      httpgd.PlotList
	fetchErr  error
	removeErr error
	clearErr  error
	removed   []string
	indexes   []int
	cleared   int
}

func (f *fakeSource) FetchPlots(context.Context) (httpgd.PlotList, error) {
	return f.list, f.fetchErr
}

func (f *fakeSource) FetchImage(context.Context, string) ([]byte, error) {
	return []byte("<svg/>"), nil
}

func (f *fakeSource) PlotImageURL(q httpgd.ImageQuery) string {
	v := url.Values{}
	v.Set("id", q.ID)
	v.Set("width", strconv.FormatFloat(q.Width, 'f', -1, 64))
	v.Set("height", strconv.FormatFloat(q.Height, 'f', -1, 64))
	v.Set("c", q.CacheBuster)
	return "/svg?" + v.Encode()
}

func (f *fakeSource) RemovePlot(_ context.Context, ref httpgd.PlotRef) error {
	f.removed = append(f.removed, ref.ID)
	return f.removeErr
}

func (f *fakeSource) RemoveByIndex(_ context.Context, index int) error {
	f.indexes = append(f.indexes, index)
	return f.removeErr
}

func (f *fakeSource) Clear(context.Context) error {
	f.cleared++
	return f.clearErr
}

func newTestOrchestrator(src *fakeSource) *Orchestrator {
	o := New(src)
	n := 0
	o.newBuster = func() string {
		n++
		return fmt.Sprintf("b%d", n)
	}
	o.cacheBuster = o.newBuster()
	return o
}

func plots(upid int, ids ...string) httpgd.PlotList {
	list := httpgd.PlotList{State: httpgd.RemoteState{UpdateID: upid, PlotCount: len(ids)}}
	for _, id := range ids {
		list.Plots = append(list.Plots, httpgd.PlotRef{ID: id})
	}
	return list
}

func query(t *testing.T, src string) url.Values {
	t.Helper()
	u, err := url.Parse(src)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", src, err)
	}
	return u.Query()
}

func TestHandleEvent_NewUpdateIDRefetches(t *testing.T) {
	o := newTestOrchestrator(&fakeSource{})

	d := o.HandleEvent(supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 1, PlotCount: 1}})
	assert.Equal(t, d.RefetchPlots, true)
	assert.Equal(t, d.ActivityChanged, false)

	d = o.HandleEvent(supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 1, PlotCount: 1, DeviceActive: true}})
	assert.Equal(t, d.RefetchPlots, false)
	assert.Equal(t, d.ActivityChanged, true)
	assert.Equal(t, d.Active, true)
	assert.Equal(t, d.ConnectivityChanged, false)

	d = o.HandleEvent(supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 2, PlotCount: 2, DeviceActive: true}})
	assert.Equal(t, d.RefetchPlots, true)
	assert.Equal(t, d.ActivityChanged, false)
	assert.Equal(t, o.Remote().PlotCount, 2)
}

func TestHandleEvent_ConnectivityAndMode(t *testing.T) {
	o := newTestOrchestrator(&fakeSource{})

	d := o.HandleEvent(supervisor.ConnectivityChanged{Connected: true})
	assert.Equal(t, d, Decision{ConnectivityChanged: true, Connected: true})
	assert.Equal(t, o.Connected(), true)

	d = o.HandleEvent(supervisor.ModeChanged{Mode: state.SlowPoll})
	assert.Equal(t, d.ModeChanged, true)
	assert.Equal(t, d.RefetchPlots, false)
	assert.Equal(t, d.Connected, true)
	assert.Equal(t, o.Mode(), state.SlowPoll)
}

func TestApplyPlots_RendersNewestThenDeduplicates(t *testing.T) {
	src := &fakeSource{}
	o := newTestOrchestrator(src)
	o.Resize(800, 600)

	o.HandleEvent(supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 3, PlotCount: 3}})
	img, ok := o.ApplyPlots(plots(3, "A", "B", "C"))
	assert.Equal(t, ok, true)
	q := query(t, img)
	assert.Equal(t, q.Get("id"), "C")
	assert.Equal(t, q.Get("width"), "800")
	assert.Equal(t, o.PositionLabel(), "3/3")

	_, ok = o.Navigate(0)
	assert.Equal(t, ok, false)

	img, ok = o.Navigate(-1)
	assert.Equal(t, ok, true)
	assert.Equal(t, query(t, img).Get("id"), "B")

	img, ok = o.First()
	assert.Equal(t, ok, true)
	assert.Equal(t, query(t, img).Get("id"), "A")

	img, ok = o.Last()
	assert.Equal(t, ok, true)
	assert.Equal(t, query(t, img).Get("id"), "C")

	_, ok = o.JumpToID("missing")
	assert.Equal(t, ok, false)
}

func TestApplyPlots_NewUpdateIDRotatesCacheBuster(t *testing.T) {
	o := newTestOrchestrator(&fakeSource{})
	o.Resize(100, 100)

	img, _ := o.ApplyPlots(plots(1, "A"))
	first := query(t, img).Get("c")

	// same id and size, but the server history moved on
	img, ok := o.ApplyPlots(plots(2, "A"))
	assert.Equal(t, ok, true)
	assert.NotEqual(t, query(t, img).Get("c"), first)

	_, ok = o.ApplyPlots(plots(2, "A"))
	assert.Equal(t, ok, false)

	o.Mutated()
	_, ok = o.Navigate(0)
	assert.Equal(t, ok, true)
}

func TestApplyPlots_EmptyListYieldsNoPlotOnce(t *testing.T) {
	o := newTestOrchestrator(&fakeSource{})

	img, ok := o.ApplyPlots(plots(1))
	assert.Equal(t, ok, true)
	assert.Equal(t, img, cursor.NoPlot)

	_, ok = o.Navigate(0)
	assert.Equal(t, ok, false)
	_, ok = o.CurrentRef()
	assert.Equal(t, ok, false)
	assert.Equal(t, o.PositionLabel(), "0/0")
}

func TestZoom_DividesViewport(t *testing.T) {
	o := newTestOrchestrator(&fakeSource{})
	o.Resize(800, 600)
	o.ApplyPlots(plots(1, "A"))

	img, ok := o.SetZoom(2)
	assert.Equal(t, ok, true)
	q := query(t, img)
	assert.Equal(t, q.Get("width"), "400")
	assert.Equal(t, q.Get("height"), "300")

	_, ok = o.ZoomIn()
	assert.Equal(t, ok, true)
	assert.Equal(t, o.Zoom(), 2.5)

	o.ZoomOut()
	o.ZoomOut()
	assert.Equal(t, o.Zoom(), 1.75)

	_, ok = o.ResetZoom()
	assert.Equal(t, ok, true)
	assert.Equal(t, o.Zoom(), 1.0)

	o.SetZoom(-3)
	assert.Equal(t, o.Zoom(), 1.0)

	o.SetZoom(ZoomLevels[len(ZoomLevels)-1])
	_, ok = o.ZoomIn()
	assert.Equal(t, ok, false)
	assert.Equal(t, o.Zoom(), ZoomLevels[len(ZoomLevels)-1])
}

func TestRemovePlot_NotFoundIsNoop(t *testing.T) {
	src := &fakeSource{removeErr: fmt.Errorf("%w: api /remove returned status 404", httpgd.ErrNotFound)}
	o := newTestOrchestrator(src)

	err := o.RemovePlot(context.Background(), httpgd.PlotRef{ID: "gone"})
	assert.Equal(t, err, nil)
	assert.Equal(t, src.removed, []string{"gone"})

	boom := errors.New("boom")
	src.removeErr = boom
	err = o.RemovePlot(context.Background(), httpgd.PlotRef{ID: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("RemovePlot error = %v, want wrapped boom", err)
	}
}

func TestRemoveAt_NotFoundIsNoop(t *testing.T) {
	src := &fakeSource{removeErr: fmt.Errorf("%w: api /remove returned status 404", httpgd.ErrNotFound)}
	o := newTestOrchestrator(src)

	err := o.RemoveAt(context.Background(), 0)
	assert.Equal(t, err, nil)
	assert.Equal(t, src.indexes, []int{0})

	boom := errors.New("boom")
	src.removeErr = boom
	err = o.RemoveAt(context.Background(), 2)
	if !errors.Is(err, boom) {
		t.Fatalf("RemoveAt error = %v, want wrapped boom", err)
	}
}

func TestJumpToID_SelectsKnownPlot(t *testing.T) {
	o := newTestOrchestrator(&fakeSource{})
	o.Resize(100, 100)
	o.ApplyPlots(plots(1, "A", "B", "C"))

	img, ok := o.JumpToID("A")
	assert.Equal(t, ok, true)
	assert.Equal(t, query(t, img).Get("id"), "A")
	assert.Equal(t, o.PositionLabel(), "1/3")

	_, ok = o.JumpToID("A")
	assert.Equal(t, ok, false)
}

func TestFetchAndClearWrapErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{fetchErr: boom, clearErr: boom}
	o := newTestOrchestrator(src)

	if _, err := o.FetchPlots(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("FetchPlots error = %v, want wrapped boom", err)
	}
	if err := o.Clear(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Clear error = %v, want wrapped boom", err)
	}
	assert.Equal(t, src.cleared, 1)
}
