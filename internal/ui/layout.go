package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Log display limits.
const (
	// LogTailLimit is the number of glog lines kept in the log view.
	LogTailLimit = 500
)

// Timing constants.
const (
	// RequestTimeout bounds plot list, image and mutation requests.
	RequestTimeout = 5 * time.Second

	// DefaultUIInterval is the default header and log refresh interval.
	DefaultUIInterval = time.Second
)

const (
	defaultCellWidth  = 8.0
	defaultCellHeight = 16.0

	// header, command bar and the panel border
	chromeRows = 4
	// chromeRows plus the plot panel's info block and history strip
	plotChromeRows = chromeRows + 8

	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + connection status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderPlots())
	}
	return b.String()
}

// renderBox draws a bordered panel with the title set into the top border.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	borderColor := m.theme.Border
	bgColor := m.theme.Surface
	if focused {
		borderColor = m.theme.BorderFocus
		bgColor = m.theme.FocusBg
	}
	if width < 4 {
		width = 4
	}
	if height < 2 {
		height = 2
	}

	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)

	inner := width - 2
	label := ""
	if title != "" {
		label = " " + truncate(title, inner-4) + " "
	}
	fill := inner - 1 - lipgloss.Width(label)
	if fill < 0 {
		fill = 0
	}
	top := border.Render("╭─") + titleStyle.Render(label) + border.Render(strings.Repeat("─", fill)+"╮")

	body := lipgloss.NewStyle().
		Background(lipgloss.Color(bgColor)).
		Width(inner).
		Height(height - 2).
		MaxHeight(height - 2).
		Render(content)

	side := border.Render("│")
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = side + line + side
	}
	bottom := border.Render("╰" + strings.Repeat("─", inner) + "╯")

	return top + "\n" + strings.Join(lines, "\n") + "\n" + bottom
}
