// Package cursor tracks the selected plot and decides when its image is stale.
package cursor

import (
	"fmt"
	"math"

	"github.com/five82/gdview/internal/httpgd"
)

// NoPlot is returned by NextImageIfStale in place of a URL when there is
// nothing to show.
const NoPlot = "gdview:no-plot"

// sizeEpsilon is the viewport change below which a render is still current.
const sizeEpsilon = 0.1

// ImageLocator builds image addresses. *httpgd.Client satisfies it.
type ImageLocator interface {
	PlotImageURL(query httpgd.ImageQuery) string
}

// Cursor is the selection over the most recently fetched plot list. It is
// not safe for concurrent use; the owner serializes calls.
type Cursor struct {
	plots []httpgd.PlotRef
	index int

	width  float64
	height float64

	lastID     string
	lastWidth  float64
	lastHeight float64
}

// New returns an empty cursor.
func New() *Cursor {
	return &Cursor{index: -1}
}

// Update replaces the known plots and selects the newest one.
func (c *Cursor) Update(list httpgd.PlotList) {
	c.plots = append(c.plots[:0:0], list.Plots...)
	c.index = len(c.plots) - 1
}

// Navigate moves the selection by offset, wrapping around either end.
func (c *Cursor) Navigate(offset int) {
	if len(c.plots) == 0 {
		return
	}
	c.index = wrap(c.index+offset, len(c.plots))
}

// JumpToIndex selects position i, taken modulo the plot count.
func (c *Cursor) JumpToIndex(i int) {
	if len(c.plots) == 0 {
		return
	}
	c.index = wrap(i, len(c.plots))
}

// JumpToID selects the first plot with the given id. Unknown ids are ignored.
func (c *Cursor) JumpToID(id string) {
	for i, p := range c.plots {
		if p.ID == id {
			c.index = i
			return
		}
	}
}

// ResizeViewport records the requested render size, zoom already applied.
func (c *Cursor) ResizeViewport(width, height float64) {
	c.width = width
	c.height = height
}

// NextImageIfStale returns the image to show when the selection or viewport
// moved since the last returned image, and false when the last one is still
// current. An empty list yields NoPlot once.
func (c *Cursor) NextImageIfStale(loc ImageLocator, cacheBuster string) (string, bool) {
	if len(c.plots) == 0 {
		if c.lastID == NoPlot {
			return "", false
		}
		c.lastID = NoPlot
		return NoPlot, true
	}

	id := c.plots[c.index].ID
	if id == c.lastID &&
		math.Abs(c.width-c.lastWidth) <= sizeEpsilon &&
		math.Abs(c.height-c.lastHeight) <= sizeEpsilon {
		return "", false
	}

	c.lastID = id
	c.lastWidth = c.width
	c.lastHeight = c.height
	return loc.PlotImageURL(httpgd.ImageQuery{
		ID:          id,
		Width:       c.width,
		Height:      c.height,
		CacheBuster: cacheBuster,
	}), true
}

// Invalidate forgets the last rendered image so the next NextImageIfStale
// call returns a value.
func (c *Cursor) Invalidate() {
	c.lastID = ""
}

// CurrentID returns the selected plot id.
func (c *Cursor) CurrentID() (string, bool) {
	if len(c.plots) == 0 {
		return "", false
	}
	return c.plots[c.index].ID, true
}

// Index returns the selected position, or -1 when the list is empty.
func (c *Cursor) Index() int {
	if len(c.plots) == 0 {
		return -1
	}
	return c.index
}

// Len returns the number of known plots.
func (c *Cursor) Len() int {
	return len(c.plots)
}

// Plots returns a copy of the known plots, oldest first.
func (c *Cursor) Plots() []httpgd.PlotRef {
	return append([]httpgd.PlotRef(nil), c.plots...)
}

// PositionLabel formats the selection as "<1-based index>/<count>".
func (c *Cursor) PositionLabel() string {
	if len(c.plots) == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", c.index+1, len(c.plots))
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
