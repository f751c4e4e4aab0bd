package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/gdview/internal/state"
)

// renderHeader renders the status bar: mode, connectivity, device activity
// and the last error.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	snap := m.snapshot
	mode := m.viewer.Mode()
	connected := m.viewer.Connected()

	var parts []string
	parts = append(parts, bg.Render("gdview", styles.Logo))

	badge := strings.ToUpper(mode.String())
	parts = append(parts, styles.ModeStyle(mode.String()).Render(badge))

	switch {
	case mode == state.Closed:
		parts = append(parts, bg.Render("● closed", styles.MutedText))
	case connected:
		parts = append(parts, bg.Render("● online", styles.SuccessText))
	case snap.IsOffline():
		parts = append(parts, bg.Render("● "+classifyConnectionError(snap.LastError), styles.DangerText))
	default:
		parts = append(parts, bg.Render("● connecting", styles.WarningText))
	}

	if m.viewer.Active() {
		parts = append(parts, bg.Render("device active", styles.InfoText))
	} else if snap.HasRemote {
		parts = append(parts, bg.Render("device idle", styles.FaintText))
	}

	if m.paused || snap.Paused {
		parts = append(parts, bg.Render("PAUSED", styles.WarningText.Bold(true)))
	}

	if !compact && m.config != nil {
		parts = append(parts,
			bg.Render("host", styles.FaintText)+bg.Space()+
				bg.Render(truncateMiddle(m.config.Host, 40), styles.MutedText))
	}

	if ts := formatTimestamp(m.lastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	if snap.LastError != nil && !connected {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(snap.LastError.Error(), maxErr), styles.DangerText))
	}

	// Transient error display (plot fetch or mutation failures)
	if m.errorMsg != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.errorMsg, 60), styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the short key help.
func (m Model) renderCommandBar() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	h := m.help
	h.Width = m.width - 2
	h.Styles.ShortKey = styles.WarningText
	h.Styles.ShortDesc = styles.MutedText
	h.Styles.ShortSeparator = styles.FaintText
	h.Styles.Ellipsis = styles.FaintText
	return bg.FillLine(" "+h.ShortHelpView(m.keys.ShortHelp()), m.width)
}

// formatTimestamp formats the last update time with a relative indicator.
func formatTimestamp(at, now time.Time) string {
	if at.IsZero() {
		return ""
	}
	since := now.Sub(at)
	out := at.Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return "offline"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "offline"
	case strings.Contains(msg, "no such host"):
		return "host not found"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "timeout"
	case strings.Contains(msg, "status 401"), strings.Contains(msg, "status 403"):
		return "bad token"
	default:
		return "error"
	}
}
