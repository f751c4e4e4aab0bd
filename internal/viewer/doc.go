// Package viewer turns supervisor events into plot-list refetches and image
// renders.
//
// An Orchestrator owns a cursor.Cursor and the last observed update id. A
// StateChanged with a new update id asks the caller to refetch plots; the
// same update id with a different device activity only flips the activity
// indicator. Connectivity and mode events only update indicators.
//
// Render-producing methods return (src, true) when the image to show changed
// and ("", false) otherwise. src is either an image URL or cursor.NoPlot.
package viewer
