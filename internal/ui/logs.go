package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/golang/glog"

	"github.com/five82/gdview/internal/logtail"
)

// resizeLogViewport fits the log viewport inside its box.
func (m *Model) resizeLogViewport() {
	width := m.width - 4
	height := m.height - chromeRows
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width = width
	m.logViewport.Height = height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
}

func (m Model) readLogs() tea.Cmd {
	if m.config == nil {
		return nil
	}
	return readLogsCmd(m.config.InfoLogPath(), LogTailLimit)
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	if msg.err != nil {
		glog.V(1).Infof("[ui] read log: %v", msg.err)
		return
	}
	m.logLines = msg.lines
	m.renderLogLines()
}

// renderLogLines recolours the buffered lines, keeping the view pinned to
// the bottom when it was already there.
func (m *Model) renderLogLines() {
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	if len(m.logLines) == 0 {
		m.logViewport.SetContent(m.theme.Styles().FaintText.Render("No log output yet"))
		return
	}
	colored := logtail.ColorizeLines(m.logLines, m.theme.LogPalette())
	m.logViewport.SetContent(strings.Join(colored, "\n"))
	if follow {
		m.logViewport.GotoBottom()
	}
}

// handleLogsKey scrolls the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.logViewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.HalfViewDown()
	case key.Matches(msg, m.keys.First):
		m.logViewport.GotoTop()
	case key.Matches(msg, m.keys.Last):
		m.logViewport.GotoBottom()
	}
	return m, nil
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := "Log"
	if m.config != nil {
		title = "Log " + truncateMiddle(m.config.InfoLogPath(), m.width/2)
	}
	return m.renderBox(title, m.logViewport.View(), m.width, m.height-2, true)
}
