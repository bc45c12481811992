package schedule

// Zoom and vertical-scale bounds. Clamp folds every viewport into these
// ranges before any geometry is derived from it.
const (
	MinZoom          = 0.1
	MaxZoom          = 20.0
	MinVerticalScale = 0.5
	MaxVerticalScale = 3.0
)

// Viewport is the camera over the schedule plane. X scrolls in fractional
// days, Y scrolls in pixels; the axes deliberately use different units
// because horizontal density changes with zoom while vertical density
// changes with the vertical scale.
type Viewport struct {
	// XDays is the leftmost visible point in fractional days from the
	// epoch. Never negative: day zero is the hard left edge.
	XDays float64

	// YPixels is the vertical scroll offset in pixels.
	YPixels float64

	// Zoom scales the width of one day on screen.
	Zoom float64

	// VerticalScale scales lane geometry.
	VerticalScale float64
}

// DefaultViewport returns the identity camera at the project origin.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1, VerticalScale: 1}
}

// Clamp returns the viewport with zoom, vertical scale, and horizontal
// scroll folded into their legal ranges. A non-positive or NaN zoom
// becomes the minimum; same for the vertical scale.
func (v Viewport) Clamp() Viewport {
	if !(v.Zoom > MinZoom) { // catches NaN
		v.Zoom = MinZoom
	} else if v.Zoom > MaxZoom {
		v.Zoom = MaxZoom
	}
	if !(v.VerticalScale > MinVerticalScale) {
		v.VerticalScale = MinVerticalScale
	} else if v.VerticalScale > MaxVerticalScale {
		v.VerticalScale = MaxVerticalScale
	}
	if !(v.XDays > 0) {
		v.XDays = 0
	}
	return v
}
