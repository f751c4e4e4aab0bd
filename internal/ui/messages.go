package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/gdview/internal/httpgd"
	"github.com/five82/gdview/internal/logtail"
	"github.com/five82/gdview/internal/supervisor"
	"github.com/five82/gdview/internal/viewer"
)

// Messages

type tickMsg time.Time

type eventMsg struct {
	event supervisor.Event
}

type eventsClosedMsg struct{}

type plotsMsg struct {
	seq  uint64
	list httpgd.PlotList
	err  error
}

type imageMsg struct {
	src  string
	size int
	err  error
}

type mutationMsg struct {
	action string
	err    error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the supervisor stream; Update re-issues it after
// every event.
func waitForEvent(events <-chan supervisor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

func fetchPlotsCmd(ctx context.Context, v *viewer.Orchestrator, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		list, err := v.FetchPlots(ctx)
		return plotsMsg{seq: seq, list: list, err: err}
	}
}

func fetchImageCmd(ctx context.Context, v *viewer.Orchestrator, src string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		body, err := v.FetchImage(ctx, src)
		return imageMsg{src: src, size: len(body), err: err}
	}
}

func removeCmd(ctx context.Context, v *viewer.Orchestrator, ref httpgd.PlotRef) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return mutationMsg{action: "remove " + ref.ID, err: v.RemovePlot(ctx, ref)}
	}
}

func removeAtCmd(ctx context.Context, v *viewer.Orchestrator, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return mutationMsg{action: fmt.Sprintf("remove #%d", index+1), err: v.RemoveAt(ctx, index)}
	}
}

func clearCmd(ctx context.Context, v *viewer.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		return mutationMsg{action: "clear", err: v.Clear(ctx)}
	}
}

// The supervisor acknowledges control calls from its own loop, so they run
// off the Update goroutine.

func setPausedCmd(c Controller, paused bool) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		c.SetPaused(paused)
		return nil
	}
}

func reconnectCmd(c Controller) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		c.Reconnect()
		return nil
	}
}

func readLogsCmd(path string, limit int) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, limit)
		return logLinesMsg{lines: lines, err: err}
	}
}
