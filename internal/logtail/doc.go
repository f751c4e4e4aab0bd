// Package logtail reads the tail of gdview's glog file and colours it for
// the log pane.
//
// Read keeps a ring buffer of maxLines entries, so memory stays
// O(maxLines) however large the file grows. A missing file is not an error;
// glog only creates it on the first write.
//
// Parse understands the glog record format
//
//	Lmmdd hh:mm:ss.uuuuuu threadid file:line] [component] msg
//
// and ColorizeLine renders it with a lipgloss Palette supplied by the UI
// theme. Lines that are not glog records (the file preamble) render in the
// plain style unchanged.
package logtail
