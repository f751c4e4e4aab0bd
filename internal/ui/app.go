package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"

	"github.com/five82/gdview/internal/config"
	"github.com/five82/gdview/internal/cursor"
	"github.com/five82/gdview/internal/prefs"
	"github.com/five82/gdview/internal/state"
	"github.com/five82/gdview/internal/supervisor"
	"github.com/five82/gdview/internal/viewer"
)

// View represents the current active view.
type View int

const (
	ViewPlots View = iota
	ViewLogs
)

// Controller is the part of the supervisor the UI drives.
// *supervisor.Supervisor satisfies it.
type Controller interface {
	Events() <-chan supervisor.Event
	Store() *state.Store
	SetPaused(paused bool)
	Reconnect()
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Supervisor Controller
	Viewer     *viewer.Orchestrator
	Config     *config.Config
	ThemeName  string
	Zoom       float64
	PrefsPath  string

	// CellWidth and CellHeight convert terminal cells into the device units
	// sent as the render size. Zero uses 8x16.
	CellWidth  float64
	CellHeight float64

	// Tick drives header and log refreshes. Zero uses DefaultUIInterval.
	Tick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	sup        Controller
	events     <-chan supervisor.Event
	viewer     *viewer.Orchestrator
	config     *config.Config
	prefsPath  string
	cellWidth  float64
	cellHeight float64
	tick       time.Duration

	// UI state
	keys        keyMap
	help        help.Model
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	paused      bool

	// Connection state
	snapshot    state.Snapshot
	lastUpdated time.Time
	errorMsg    string

	// Plot state
	plotSeq   uint64
	imageSrc  string
	imageSize int // -1 while loading
	imageErr  error
	noPlot    bool
	shownID   string
	altID     string // plot shown before shownID

	// Log state
	logViewport viewport.Model
	logLines    []string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	cellWidth, cellHeight := opts.CellWidth, opts.CellHeight
	if cellWidth <= 0 {
		cellWidth = defaultCellWidth
	}
	if cellHeight <= 0 {
		cellHeight = defaultCellHeight
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		sup:         opts.Supervisor,
		viewer:      opts.Viewer,
		config:      opts.Config,
		prefsPath:   prefsPath,
		cellWidth:   cellWidth,
		cellHeight:  cellHeight,
		tick:        tick,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentView: ViewPlots,
	}
	if m.sup != nil {
		m.events = m.sup.Events()
		m.snapshot = m.sup.Store().Snapshot()
	}
	m.applyTheme(GetTheme(opts.ThemeName))
	if opts.Zoom > 0 {
		m.show(m.viewer.SetZoom(opts.Zoom))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.events != nil {
		cmds = append(cmds, waitForEvent(m.events))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogViewport()
		w, h := m.plotArea()
		cmd := m.show(m.viewer.Resize(float64(w)*m.cellWidth, float64(h)*m.cellHeight))
		return m, cmd

	case tickMsg:
		return m.handleTick()

	case eventMsg:
		return m.handleEvent(msg.event)

	case eventsClosedMsg:
		glog.V(1).Infof("[ui] supervisor event stream closed")
		m.events = nil
		return m, nil

	case plotsMsg:
		if msg.seq != m.plotSeq {
			return m, nil
		}
		if msg.err != nil {
			glog.Warningf("[ui] %v", msg.err)
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		cmd := m.show(m.viewer.ApplyPlots(msg.list))
		return m, cmd

	case imageMsg:
		if msg.src != m.imageSrc {
			return m, nil
		}
		m.imageSize = msg.size
		m.imageErr = msg.err
		if msg.err != nil {
			glog.Warningf("[ui] %v", msg.err)
		}
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			glog.Warningf("[ui] %s: %v", msg.action, msg.err)
			m.errorMsg = msg.action + ": " + msg.err.Error()
			return m, nil
		}
		glog.Infof("[ui] %s done", msg.action)
		m.viewer.Mutated()
		cmd := m.refetchPlots()
		return m, cmd

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.applyTheme(GetTheme(NextTheme(m.theme.Name)))
		m.savePrefs()
		if m.currentView == ViewLogs {
			m.renderLogLines()
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewPlots
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.readLogs()

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewPlots
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, setPausedCmd(m.sup, m.paused)

	case key.Matches(msg, m.keys.Reconnect):
		m.errorMsg = ""
		return m, reconnectCmd(m.sup)
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handlePlotKey(msg)
}

// handlePlotKey processes keyboard input for the plot view.
func (m Model) handlePlotKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Prev):
		cmd = m.show(m.viewer.Navigate(-1))
	case key.Matches(msg, m.keys.Next):
		cmd = m.show(m.viewer.Navigate(1))
	case key.Matches(msg, m.keys.First):
		cmd = m.show(m.viewer.First())
	case key.Matches(msg, m.keys.Last):
		cmd = m.show(m.viewer.Last())
	case key.Matches(msg, m.keys.Alt):
		if m.altID == "" {
			return m, nil
		}
		cmd = m.show(m.viewer.JumpToID(m.altID))

	case key.Matches(msg, m.keys.ZoomIn):
		cmd = m.show(m.viewer.ZoomIn())
		m.savePrefs()
	case key.Matches(msg, m.keys.ZoomOut):
		cmd = m.show(m.viewer.ZoomOut())
		m.savePrefs()
	case key.Matches(msg, m.keys.ZoomReset):
		cmd = m.show(m.viewer.ResetZoom())
		m.savePrefs()

	case key.Matches(msg, m.keys.Remove):
		ref, ok := m.viewer.CurrentRef()
		if !ok {
			return m, nil
		}
		return m, removeCmd(m.ctx, m.viewer, ref)
	case key.Matches(msg, m.keys.RemoveOldest):
		if len(m.viewer.Plots()) == 0 {
			return m, nil
		}
		return m, removeAtCmd(m.ctx, m.viewer, 0)
	case key.Matches(msg, m.keys.Clear):
		if len(m.viewer.Plots()) == 0 {
			return m, nil
		}
		return m, clearCmd(m.ctx, m.viewer)
	}
	return m, cmd
}

// handleTick refreshes the published connection status and, when visible,
// the log tail.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.sup != nil {
		m.snapshot = m.sup.Store().Snapshot()
		m.lastUpdated = m.snapshot.LastUpdated
	}
	if m.currentView == ViewLogs {
		cmds = append(cmds, m.readLogs())
	}
	return m, tea.Batch(cmds...)
}

// handleEvent applies one supervisor event and keeps listening.
func (m Model) handleEvent(ev supervisor.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(m.events)}

	d := m.viewer.HandleEvent(ev)
	if d.RefetchPlots {
		cmds = append(cmds, m.refetchPlots())
	}
	if d.ModeChanged || d.ConnectivityChanged || d.ActivityChanged {
		m.snapshot = m.sup.Store().Snapshot()
		m.lastUpdated = m.snapshot.LastUpdated
	}
	if d.ConnectivityChanged && d.Connected {
		m.errorMsg = ""
	}
	return m, tea.Batch(cmds...)
}

// show records a render decision and starts the payload download for a new
// image.
func (m *Model) show(src string, changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	if src == cursor.NoPlot {
		m.noPlot = true
		m.imageSrc = ""
		m.imageSize = 0
		m.imageErr = nil
		m.shownID, m.altID = "", ""
		return nil
	}
	if ref, ok := m.viewer.CurrentRef(); ok && ref.ID != m.shownID {
		m.altID, m.shownID = m.shownID, ref.ID
	}
	m.noPlot = false
	m.imageSrc = src
	m.imageSize = -1
	m.imageErr = nil
	return fetchImageCmd(m.ctx, m.viewer, src)
}

// refetchPlots starts a plot list fetch; only the newest one is applied.
func (m *Model) refetchPlots() tea.Cmd {
	m.plotSeq++
	return fetchPlotsCmd(m.ctx, m.viewer, m.plotSeq)
}

func (m *Model) applyTheme(t Theme) {
	m.theme = t
	styles := t.Styles()
	m.help.Styles.ShortKey = styles.WarningText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
	m.help.Styles.FullKey = styles.WarningText
	m.help.Styles.FullDesc = styles.Text
	m.help.Styles.FullSeparator = styles.FaintText
	m.help.Styles.Ellipsis = styles.FaintText
}

func (m Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, Zoom: m.viewer.Zoom()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		glog.Warningf("[ui] save prefs: %v", err)
	}
}

// plotArea returns the cells available to the plot inside the panel.
func (m Model) plotArea() (width, height int) {
	width = m.width - 4
	height = m.height - plotChromeRows
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
