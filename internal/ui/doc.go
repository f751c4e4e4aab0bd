// Package ui is the Bubble Tea front end of gdview.
//
// # Layout
//
//   - Header: mode badge (closed, poll, slowpoll, push), connectivity,
//     device activity, pause flag, host, last update and errors
//   - Command bar: short key help from bubbles/help
//   - Plots view: position label, plot id, render size and zoom, the image
//     address and its payload size, and a strip of history positions
//   - Logs view: tail of the glog INFO file, coloured by severity
//
// # Event Flow
//
//  1. waitForEvent reads one supervisor.Event and Update hands it to the
//     viewer.Orchestrator, then re-issues waitForEvent
//  2. A Decision with RefetchPlots starts fetchPlotsCmd; only the newest
//     fetch (plotSeq) is applied
//  3. ApplyPlots, navigation, zoom and resize return a conditional render;
//     a new address starts fetchImageCmd for the payload size readout
//  4. A tick refreshes the state.Store snapshot and, in the logs view, the
//     log tail
//
// All orchestrator and cursor state is touched from Update only. Commands
// that run on other goroutines use the orchestrator methods that are safe
// off the Update goroutine.
//
// # Preferences
//
// Theme and zoom changes are written back with prefs.Save.
package ui
