package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/gdview/internal/httpgd"
)

// renderPlots renders the plot panel: selection, render size, image address
// and payload, then the history strip.
func (m Model) renderPlots() string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)
	contentHeight := m.height - 2
	inner := m.width - 4

	label := func(s string) string {
		return bg.Render(fmt.Sprintf("%-8s", s), styles.FaintText)
	}

	var lines []string
	plots := m.viewer.Plots()
	ref, hasPlot := m.viewer.CurrentRef()

	switch {
	case m.noPlot || (!hasPlot && len(plots) == 0 && m.imageSrc == ""):
		msg := "Waiting for plots..."
		if m.noPlot {
			msg = "No plots on the device"
		}
		lines = append(lines, bg.Render(msg, styles.MutedText))
	default:
		lines = append(lines,
			label("Plot")+bg.Render(m.viewer.PositionLabel(), styles.Text.Bold(true))+
				bg.Spaces(2)+bg.Render(ref.ID, styles.AccentText))
	}

	w, h := m.plotArea()
	lines = append(lines,
		label("Size")+bg.Render(fmt.Sprintf("%.0f×%.0f", float64(w)*m.cellWidth/m.viewer.Zoom(), float64(h)*m.cellHeight/m.viewer.Zoom()), styles.Text)+
			bg.Spaces(2)+bg.Render("zoom "+formatZoom(m.viewer.Zoom()), styles.MutedText))

	if m.imageSrc != "" {
		lines = append(lines, label("Image")+bg.Render(truncateMiddle(m.imageSrc, inner-8), styles.InfoText))
		lines = append(lines, label("Payload")+m.renderPayload(styles, bg))
	}

	remote := m.viewer.Remote()
	lines = append(lines,
		label("Server")+bg.Render(fmt.Sprintf("upid %d  plots %d", remote.UpdateID, remote.PlotCount), styles.MutedText))

	lines = append(lines, "")
	lines = append(lines, bg.Render("History", styles.AccentText.Bold(true)))
	lines = append(lines, m.renderStrip(plots, m.viewer.Index(), inner, styles, bg))

	content := strings.Join(lines, "\n")
	return m.renderBox("Plots", content, m.width, contentHeight, true)
}

func (m Model) renderPayload(styles Styles, bg BgStyle) string {
	switch {
	case m.imageErr != nil:
		return bg.Render(truncate(m.imageErr.Error(), 60), styles.DangerText)
	case m.imageSize < 0:
		return bg.Render("loading...", styles.WarningText)
	default:
		return bg.Render(formatBytes(m.imageSize), styles.Text)
	}
}

// renderStrip lists plot positions around the selection on one line.
func (m Model) renderStrip(plots []httpgd.PlotRef, selected, width int, styles Styles, bg BgStyle) string {
	if len(plots) == 0 {
		return bg.Render("(empty)", styles.FaintText)
	}
	cells := stripWindow(len(plots), selected, width/6)
	out := make([]string, 0, len(cells))
	for _, i := range cells {
		text := fmt.Sprintf(" %d ", i+1)
		if i == selected {
			out = append(out, styles.Selected.Render(text))
			continue
		}
		out = append(out, lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(m.theme.FocusBg)).
			Render(text))
	}
	return strings.Join(out, bg.Space())
}

// stripWindow returns up to max consecutive indices of n, centred on
// selected where possible.
func stripWindow(n, selected, max int) []int {
	if max < 1 {
		max = 1
	}
	if n <= max {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	start := selected - max/2
	if start < 0 {
		start = 0
	}
	if start+max > n {
		start = n - max
	}
	out := make([]int, max)
	for i := range out {
		out[i] = start + i
	}
	return out
}
