// Package raster implements the bijection between a cartesian bounding box
// and a raster index grid used when accumulating iterated points into the
// histogram (§4.2). Raster rows run top-to-bottom; cartesian Y runs
// bottom-to-top, so CarToRas flips Y.
package raster

import "math"

// Point is a cartesian-plane sample.
type Point struct {
	X, Y float64
}

// CarToRas is a cached cartesian-to-raster projection, rebuilt whenever the
// flame's camera (center, zoom, rotate, size) changes.
type CarToRas struct {
	llX, llY, urX, urY float64
	rasW, rasH         int

	pixPerUnitW, pixPerUnitH float64
	rasLLX, rasLLY           float64
	oneCol, oneRow           float64

	padLLX, padLLY, padURX, padURY float64
}

// New precomputes a CarToRas from the cartesian window [llX,urX]x[llY,urY]
// onto a rasW x rasH raster. pixelAspect adjusts the effective horizontal
// scale the way a non-square display pixel would.
func New(llX, llY, urX, urY float64, rasW, rasH int, pixelAspect float64) CarToRas {
	if pixelAspect == 0 {
		pixelAspect = 1
	}
	c := CarToRas{llX: llX, llY: llY, urX: urX, urY: urY, rasW: rasW, rasH: rasH}

	c.pixPerUnitW = float64(rasW) / (urX - llX) * pixelAspect
	// Negative: raster rows increase downward while cartesian Y increases
	// upward. Anchoring the translation at urY (not llY) puts row 0 at the
	// cartesian top, matching image.Image's top-left origin.
	c.pixPerUnitH = -float64(rasH) / (urY - llY)

	c.rasLLX = c.pixPerUnitW * llX
	c.rasLLY = c.pixPerUnitH * urY

	c.oneCol = (urX - llX) / float64(rasW)
	c.oneRow = (urY - llY) / float64(rasH)

	c.padLLX, c.padLLY = llX+c.oneCol, llY+c.oneRow
	c.padURX, c.padURY = urX-c.oneCol, urY-c.oneRow

	return c
}

// InBounds reports whether p lies in [llX,urX) x [llY,urY), the un-flipped
// cartesian bounds. A point passing InBounds may still yield an
// out-of-range Convert index due to floating rounding; callers must
// recheck the index against the histogram size (§4.2 edge policy).
func (c CarToRas) InBounds(p Point) bool {
	return p.X >= c.llX && p.X < c.urX && p.Y >= c.llY && p.Y < c.urY
}

// InPaddedBounds reports whether p lies strictly inside the bounds inset by
// one raster cell on each side — the guard region callers use to decide
// whether a sample is too close to the edge to trust for neighborhood reads.
func (c CarToRas) InPaddedBounds(p Point) bool {
	return p.X >= c.padLLX && p.X < c.padURX && p.Y >= c.padLLY && p.Y < c.padURY
}

// Convert maps a cartesian point to a flat raster index. pixPerUnitH and
// rasLLY carry the Y flip (§4.2): raster row 0 is the cartesian top because
// the raster origin is top-left while the cartesian origin is bottom-left.
func (c CarToRas) Convert(p Point) int {
	col := int(math.Floor(c.pixPerUnitW*p.X - c.rasLLX))
	row := int(math.Floor(c.pixPerUnitH*p.Y - c.rasLLY))
	return col + c.rasW*row
}

// InversePixelCenter returns the cartesian point at the center of raster
// cell (i,j), the inverse CarToRas.Convert needs to round-trip against per
// the §8 testable property.
func (c CarToRas) InversePixelCenter(i, j int) Point {
	x := (float64(i) + 0.5 + c.rasLLX) / c.pixPerUnitW
	y := (float64(j) + 0.5 + c.rasLLY) / c.pixPerUnitH
	return Point{X: x, Y: y}
}

// Size returns the total number of raster buckets (rasW * rasH).
func (c CarToRas) Size() int { return c.rasW * c.rasH }

// Dimensions returns the raster width and height.
func (c CarToRas) Dimensions() (w, h int) { return c.rasW, c.rasH }

// OneCell returns the cartesian width and height of a single raster cell.
func (c CarToRas) OneCell() (w, h float64) { return c.oneCol, c.oneRow }
