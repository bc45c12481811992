// Package timescale converts between schedule days and screen pixels.
//
// The horizontal axis of the canvas is time: one day occupies DayWidth
// pixels. To keep vertical gridlines and item edges crisp, the viewport
// origin is quantized so that day boundaries land on whole pixels. Every
// world-to-screen conversion goes through the same quantized Scale, so
// all geometry shifts together and nothing shimmers during pans.
package timescale

import "math"

// minDayWidth guards divisions when a caller passes a degenerate width.
// Viewport clamping keeps real zoom levels far above this.
const minDayWidth = 1e-6

// DayWidth returns the on-screen width of one day in pixels for the
// given base width and zoom factor.
func DayWidth(base, zoom float64) float64 {
	w := base * zoom
	if !(w > minDayWidth) { // catches NaN
		return minDayWidth
	}
	return w
}

// Scale is the quantized horizontal mapping for one frame.
//
// The scroll is rounded to a whole pixel count before anything is
// derived from it: PixelOffsetX = -round(viewportXDays * DayWidth) is
// the translation applied to world content, and QuantizedXDays is that
// same snap expressed back in days. Both stay self-consistent, so day
// boundaries land on whole pixels at every scroll position.
type Scale struct {
	DayWidth       float64
	QuantizedXDays float64
	PixelOffsetX   float64
}

// NewScale quantizes a viewport origin against a day width.
func NewScale(viewportXDays, dayWidth float64) Scale {
	if !(dayWidth > minDayWidth) {
		dayWidth = minDayWidth
	}
	px := math.Round(viewportXDays * dayWidth)
	return Scale{
		DayWidth:       dayWidth,
		QuantizedXDays: px / dayWidth,
		PixelOffsetX:   -px,
	}
}

// DayToScreenX maps a fractional day index to a screen x coordinate.
// Whole day indexes land on whole pixels by construction.
func (s Scale) DayToScreenX(day float64) float64 {
	return day*s.DayWidth + s.PixelOffsetX
}

// ScreenXToDays maps a screen x coordinate back to a fractional day
// index. Inverse of DayToScreenX.
func (s Scale) ScreenXToDays(x float64) float64 {
	return (x - s.PixelOffsetX) / s.DayWidth
}

// VisibleDays returns the first and last whole day indexes overlapping
// a screen span of widthPx pixels, expanded by marginPx on both sides.
func (s Scale) VisibleDays(widthPx, marginPx float64) (first, last int64) {
	lo := s.ScreenXToDays(-marginPx)
	hi := s.ScreenXToDays(widthPx + marginPx)
	return int64(math.Floor(lo)), int64(math.Ceil(hi))
}
