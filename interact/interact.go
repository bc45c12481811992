// Package interact turns pointer input into gestures and commands.
//
// One Controller owns the whole input surface. It holds at most one
// active gesture at a time, shows previews through the scene overlay
// while a gesture is in flight, and emits at most one domain command
// per commit. A cancelled gesture emits nothing and leaves every
// entity untouched: the host store is the only writer.
package interact

import (
	"github.com/gogpu/stave/capacity"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/scene"
	"github.com/gogpu/stave/schedule"
)

// Gesture identifies the controller's active state machine.
type Gesture uint8

const (
	// GestureNone means no gesture is in flight.
	GestureNone Gesture = iota
	// GesturePan scrolls the viewport.
	GesturePan
	// GestureMove drags an item to a new day, lane, and line.
	GestureMove
	// GestureResize drags an item's right edge to a new duration.
	GestureResize
	// GestureLink drags a dependency connector between items.
	GestureLink
)

// gestureNames maps Gesture values to their string representation.
var gestureNames = [...]string{
	GestureNone:   "None",
	GesturePan:    "Pan",
	GestureMove:   "Move",
	GestureResize: "Resize",
	GestureLink:   "Link",
}

// String returns the string representation of a Gesture.
func (g Gesture) String() string {
	if int(g) < len(gestureNames) {
		return gestureNames[g]
	}
	return "Unknown"
}

// Buttons is the pressed pointer-button set of an event.
type Buttons uint8

const (
	// ButtonLeft is the primary button.
	ButtonLeft Buttons = 1 << iota
	// ButtonRight is the secondary button.
	ButtonRight
	// ButtonMiddle is the wheel button.
	ButtonMiddle
)

// Has reports whether all buttons in flag are pressed.
func (b Buttons) Has(flag Buttons) bool {
	return b&flag == flag
}

// Modifiers is the held modifier-key set of an event.
type Modifiers uint8

const (
	// ModCtrl is the control key.
	ModCtrl Modifiers = 1 << iota
	// ModShift is the shift key.
	ModShift
	// ModAlt is the alt/option key.
	ModAlt
	// ModMeta is the meta/command key.
	ModMeta
)

// Has reports whether all modifiers in flag are held.
func (m Modifiers) Has(flag Modifiers) bool {
	return m&flag == flag
}

// togglesSelection reports whether the modifier set switches a click
// from replace-selection to toggle-membership.
func (m Modifiers) togglesSelection() bool {
	return m&(ModCtrl|ModShift|ModMeta) != 0
}

// Params tune gesture recognition and previews.
type Params struct {
	// DragThresholdPx separates clicks from drags: pointer travel at or
	// below it resolves to selection, never to a move commit.
	DragThresholdPx float64

	// ResizeZonePx is the width of the resize handle inside an item's
	// right edge.
	ResizeZonePx float64

	// ZoomRate converts wheel delta to a zoom factor exponent.
	ZoomRate float64

	// PreviewColor strokes gesture previews.
	PreviewColor scene.Color
}

// DefaultParams returns the standard gesture tuning.
func DefaultParams() Params {
	return Params{
		DragThresholdPx: 4,
		ResizeZonePx:    6,
		ZoomRate:        0.002,
		PreviewColor:    scene.RGBA(255, 255, 255, 180),
	}
}

// withDefaults fills zero fields from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.DragThresholdPx <= 0 {
		p.DragThresholdPx = d.DragThresholdPx
	}
	if p.ResizeZonePx <= 0 {
		p.ResizeZonePx = d.ResizeZonePx
	}
	if p.ZoomRate <= 0 {
		p.ZoomRate = d.ZoomRate
	}
	if p.PreviewColor == (scene.Color{}) {
		p.PreviewColor = d.PreviewColor
	}
	return p
}

// Surface is what a gesture needs from the rendered canvas: the last
// frame's geometry, the entities behind it, and the overlay. The
// engine implements it; tests use a fixture.
//
// All methods are called synchronously from pointer entry points, on
// the render driver's goroutine.
type Surface interface {
	// Snapshot returns the entities behind the last rendered frame.
	Snapshot() *schedule.Snapshot

	// Viewport returns the current camera.
	Viewport() schedule.Viewport

	// Frame returns the last rendered frame's geometry.
	Frame() layout.Frame

	// Layout returns the last rendered frame's placed items, or nil
	// before the first render.
	Layout() *layout.Index

	// Census returns start-day occupancy for capacity snapping.
	Census() *capacity.Census

	// SetOverlay replaces the gesture preview overlay.
	SetOverlay(build func(*scene.Node))

	// ClearOverlay removes the gesture preview overlay.
	ClearOverlay()
}

// EmitFunc receives commands bound for the host store. Commands are
// fire-and-forget: the engine never applies them itself.
type EmitFunc func(schedule.Command)
