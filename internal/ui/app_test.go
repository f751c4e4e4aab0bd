package ui

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/gdview/internal/config"
	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/prefs"
	"github.com/five82/gdview/internal/state"
	"github.com/five82/gdview/internal/supervisor"
	"github.com/five82/gdview/internal/viewer"
)

type fakeSource struct {
	list      httpgd.PlotList
	removeErr error
	removed   []string
	indexes   []int
}

func (f *fakeSource) FetchPlots(context.Context) (httpgd.PlotList, error) { return f.list, nil }

func (f *fakeSource) FetchImage(context.Context, string) ([]byte, error) {
	return []byte("<svg></svg>"), nil
}

func (f *fakeSource) PlotImageURL(q httpgd.ImageQuery) string {
	v := url.Values{}
	v.Set("id", q.ID)
	v.Set("c", q.CacheBuster)
	return "http://127.0.0.1:8288/svg?" + v.Encode()
}

func (f *fakeSource) RemovePlot(_ context.Context, ref httpgd.PlotRef) error {
	f.removed = append(f.removed, ref.ID)
	return f.removeErr
}

func (f *fakeSource) RemoveByIndex(_ context.Context, index int) error {
	f.indexes = append(f.indexes, index)
	return f.removeErr
}

func (f *fakeSource) Clear(context.Context) error { return nil }

type fakeController struct {
	mu         sync.Mutex
	events     chan supervisor.Event
	store      *state.Store
	paused     []bool
	reconnects int
}

func newFakeController() *fakeController {
	return &fakeController{events: make(chan supervisor.Event), store: &state.Store{}}
}

func (f *fakeController) Events() <-chan supervisor.Event { return f.events }
func (f *fakeController) Store() *state.Store             { return f.store }

func (f *fakeController) SetPaused(p bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, p)
}

func (f *fakeController) Reconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
}

func newTestModel(t *testing.T, src *fakeSource) (Model, *fakeController) {
	t.Helper()
	ctrl := newFakeController()
	cfg := config.Default()
	cfg.LogDir = t.TempDir()
	m := New(Options{
		Supervisor: ctrl,
		Viewer:     viewer.New(src),
		Config:     &cfg,
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m, _ = step(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, ctrl
}

func step(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func plotList(upid int, ids ...string) httpgd.PlotList {
	list := httpgd.PlotList{State: httpgd.RemoteState{UpdateID: upid, PlotCount: len(ids)}}
	for _, id := range ids {
		list.Plots = append(list.Plots, httpgd.PlotRef{ID: id})
	}
	return list
}

func selectedID(t *testing.T, m Model) string {
	t.Helper()
	u, err := url.Parse(m.imageSrc)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", m.imageSrc, err)
	}
	return u.Query().Get("id")
}

func TestModel_StateChangeFetchesAndShowsNewestPlot(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})

	m, cmd := step(m, eventMsg{event: supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 1, PlotCount: 3}}})
	if cmd == nil {
		t.Fatalf("StateChanged returned nil cmd, want refetch")
	}
	if m.plotSeq != 1 {
		t.Fatalf("plotSeq = %d, want 1", m.plotSeq)
	}

	m, cmd = step(m, plotsMsg{seq: 1, list: plotList(1, "A", "B", "C")})
	if cmd == nil {
		t.Fatalf("plotsMsg returned nil cmd, want image fetch")
	}
	if got := selectedID(t, m); got != "C" {
		t.Fatalf("selected = %q, want C", got)
	}
	if m.imageSize != -1 {
		t.Fatalf("imageSize = %d, want -1 while loading", m.imageSize)
	}

	msg := cmd()
	img, ok := msg.(imageMsg)
	if !ok {
		t.Fatalf("image cmd returned %T, want imageMsg", msg)
	}
	m, _ = step(m, img)
	if m.imageSize != len("<svg></svg>") {
		t.Fatalf("imageSize = %d, want %d", m.imageSize, len("<svg></svg>"))
	}
	if !strings.Contains(m.View(), "3/3") {
		t.Fatalf("View() missing position label 3/3")
	}
}

func TestModel_DropsStaleResults(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})
	m, _ = step(m, eventMsg{event: supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 1}}})
	m, _ = step(m, eventMsg{event: supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 2}}})

	m, _ = step(m, plotsMsg{seq: 1, list: plotList(1, "old")})
	if m.imageSrc != "" {
		t.Fatalf("stale plot list applied: %q", m.imageSrc)
	}

	m, _ = step(m, plotsMsg{seq: 2, list: plotList(2, "A", "B")})
	m, _ = step(m, keyPress("left"))
	if got := selectedID(t, m); got != "A" {
		t.Fatalf("selected = %q, want A", got)
	}

	// payload for B arriving after the selection moved on
	m, _ = step(m, imageMsg{src: "http://127.0.0.1:8288/svg?c=x&id=B", size: 99})
	if m.imageSize != -1 {
		t.Fatalf("imageSize = %d, want stale payload ignored", m.imageSize)
	}
}

func TestModel_NavigationKeys(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})
	m, _ = step(m, eventMsg{event: supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 1}}})
	m, _ = step(m, plotsMsg{seq: 1, list: plotList(1, "A", "B", "C")})

	tests := []struct {
		key  string
		want string
	}{
		{"left", "B"},
		{"right", "C"},
		{"right", "A"},
		{"G", "C"},
		{"g", "A"},
	}
	for _, tt := range tests {
		m, _ = step(m, keyPress(tt.key))
		if got := selectedID(t, m); got != tt.want {
			t.Fatalf("after %q selected = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestModel_EmptyHistoryShowsNoPlot(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})
	m, _ = step(m, eventMsg{event: supervisor.StateChanged{State: httpgd.RemoteState{UpdateID: 1}}})
	m, _ = step(m, plotsMsg{seq: 1, list: plotList(1)})

	if !m.noPlot {
		t.Fatalf("noPlot = false, want true for an empty history")
	}
	if !strings.Contains(m.View(), "No plots on the device") {
		t.Fatalf("View() missing empty-history message")
	}

	m, cmd := step(m, keyPress("d"))
	if cmd != nil {
		t.Fatalf("remove with no selection returned a cmd")
	}
	_, cmd = step(m, keyPress("D"))
	if cmd != nil {
		t.Fatalf("clear with empty history returned a cmd")
	}
}

func TestModel_ZoomSavesPrefs(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})
	m, _ = step(m, plotsMsg{seq: 0, list: plotList(1, "A")})

	m, _ = step(m, keyPress("+"))
	if m.viewer.Zoom() != 1.1 {
		t.Fatalf("Zoom = %v, want 1.1", m.viewer.Zoom())
	}
	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.Zoom != 1.1 || p.Theme != m.theme.Name {
		t.Fatalf("saved prefs = %+v, want zoom 1.1 theme %s", p, m.theme.Name)
	}

	m, _ = step(m, keyPress("0"))
	if m.viewer.Zoom() != 1 {
		t.Fatalf("Zoom = %v, want reset to 1", m.viewer.Zoom())
	}
}

func TestModel_RemoveAndMutationResult(t *testing.T) {
	src := &fakeSource{}
	m, _ := newTestModel(t, src)
	m, _ = step(m, plotsMsg{seq: 0, list: plotList(1, "A", "B")})

	m, cmd := step(m, keyPress("d"))
	if cmd == nil {
		t.Fatalf("remove returned nil cmd")
	}
	msg := cmd().(mutationMsg)
	if len(src.removed) != 1 || src.removed[0] != "B" {
		t.Fatalf("removed = %v, want [B]", src.removed)
	}

	seq := m.plotSeq
	m, cmd = step(m, msg)
	if cmd == nil || m.plotSeq != seq+1 {
		t.Fatalf("successful mutation did not refetch plots")
	}

	m, _ = step(m, mutationMsg{action: "clear", err: errors.New("boom")})
	if !strings.Contains(m.errorMsg, "boom") {
		t.Fatalf("errorMsg = %q, want it to mention boom", m.errorMsg)
	}
}

func TestModel_AltReturnsToPreviousPlot(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})
	m, _ = step(m, plotsMsg{seq: 0, list: plotList(1, "A", "B", "C")})

	m, cmd := step(m, keyPress("tab"))
	if cmd != nil {
		t.Fatalf("tab with no previous plot returned a cmd")
	}

	m, _ = step(m, keyPress("g"))
	tests := []string{"C", "A", "C"}
	for _, want := range tests {
		m, _ = step(m, keyPress("tab"))
		if got := selectedID(t, m); got != want {
			t.Fatalf("after tab selected = %q, want %q", got, want)
		}
	}

	// the previous plot left the history
	m, _ = step(m, plotsMsg{seq: 0, list: plotList(2, "C")})
	m, _ = step(m, keyPress("tab"))
	if got := selectedID(t, m); got != "C" {
		t.Fatalf("selected = %q, want C to stay", got)
	}
}

func TestModel_RemoveOldestUsesPosition(t *testing.T) {
	src := &fakeSource{}
	m, _ := newTestModel(t, src)

	_, cmd := step(m, keyPress("X"))
	if cmd != nil {
		t.Fatalf("remove oldest with empty history returned a cmd")
	}

	m, _ = step(m, plotsMsg{seq: 0, list: plotList(1, "A", "B")})
	_, cmd = step(m, keyPress("X"))
	if cmd == nil {
		t.Fatalf("remove oldest returned nil cmd")
	}
	msg := cmd().(mutationMsg)
	if msg.err != nil || msg.action != "remove #1" {
		t.Fatalf("mutation = %+v, want remove #1 without error", msg)
	}
	if len(src.indexes) != 1 || src.indexes[0] != 0 {
		t.Fatalf("removed indexes = %v, want [0]", src.indexes)
	}
	if len(src.removed) != 0 {
		t.Fatalf("remove oldest went through RemovePlot: %v", src.removed)
	}
}

func TestModel_PauseAndReconnect(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeSource{})

	m, cmd := step(m, keyPress("p"))
	if !m.paused || cmd == nil {
		t.Fatalf("pause key did not pause")
	}
	cmd()
	_, cmd = step(m, keyPress("r"))
	cmd()

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.paused) != 1 || !ctrl.paused[0] {
		t.Fatalf("SetPaused calls = %v, want [true]", ctrl.paused)
	}
	if ctrl.reconnects != 1 {
		t.Fatalf("Reconnect calls = %d, want 1", ctrl.reconnects)
	}
}

func TestModel_ConnectivityAndModeEvents(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeSource{})
	ctrl.store.SetMode(state.Pushed)
	ctrl.store.SetConnected(true)

	m, _ = step(m, eventMsg{event: supervisor.ModeChanged{Mode: state.Pushed}})
	m, cmd := step(m, eventMsg{event: supervisor.ConnectivityChanged{Connected: true}})
	if m.plotSeq != 0 {
		t.Fatalf("connectivity event triggered a plot fetch")
	}
	if cmd == nil {
		t.Fatalf("event handling must keep listening")
	}
	if m.snapshot.Mode != state.Pushed || !m.snapshot.Connected {
		t.Fatalf("snapshot = %+v, want push/connected", m.snapshot)
	}
	view := m.View()
	if !strings.Contains(view, "PUSH") || !strings.Contains(view, "online") {
		t.Fatalf("header missing mode or connectivity: %q", view)
	}
}

func TestModel_ViewSwitchingAndHelp(t *testing.T) {
	m, _ := newTestModel(t, &fakeSource{})

	m, cmd := step(m, keyPress("l"))
	if m.currentView != ViewLogs || cmd == nil {
		t.Fatalf("l did not open the log view")
	}
	m, _ = step(m, cmd())
	if !strings.Contains(m.View(), "No log output yet") {
		t.Fatalf("log view missing placeholder")
	}

	m, _ = step(m, keyPress("esc"))
	if m.currentView != ViewPlots {
		t.Fatalf("esc did not return to plots")
	}

	m, _ = step(m, keyPress("?"))
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m, _ = step(m, keyPress("x"))
	if m.showHelp {
		t.Fatalf("any key should close help")
	}

	before := m.theme.Name
	m, _ = step(m, keyPress("T"))
	if m.theme.Name == before {
		t.Fatalf("T did not change theme")
	}

	_, cmd = step(m, keyPress("q"))
	if cmd == nil {
		t.Fatalf("q returned nil cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}
