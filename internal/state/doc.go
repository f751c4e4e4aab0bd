// Package state provides the thread-safe connection status for gdview.
//
// # Overview
//
// The connection supervisor owns its mode and connectivity fields on a single
// event-loop goroutine. Other goroutines (the UI, tests) need to read them
// without joining that loop, so the supervisor publishes every change into a
// Store and readers take Snapshot copies.
//
//	Producer (supervisor loop):      Consumer (UI, tests):
//	┌──────────────────────┐        ┌──────────────────┐
//	│ SetMode()            │        │                  │
//	│ SetConnected()       │───────→│ store.Snapshot() │
//	│ Update(remote, err)  │ (mutex)│                  │
//	└──────────────────────┘        └──────────────────┘
//
// # Core Types
//
// Mode:
//   - Closed, FastPoll, SlowPoll, Pushed
//   - Exactly one is active at a time
//
// Snapshot:
//   - Mode, connectivity and pause flags
//   - Last remote state, last error and consecutive failure count
//   - Returned by value; errors are re-wrapped so callers cannot alias them
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. The lock is held only while copying
// fields, never during network I/O.
//
// # Error Tracking
//
// Update(nil, err) keeps the previous remote state, records the error and
// increments ConsecutiveFailures. A successful Update resets the counter.
// IsOffline reports two or more consecutive failures.
package state
