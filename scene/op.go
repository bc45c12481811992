// Package scene is the retained drawing layer between the engine and
// its backends.
//
// The engine never draws directly. Each frame it reconciles a list of
// visuals against the Cache, rebuilds only the nodes whose layout hash
// changed, and hands the surviving nodes to a Backend. Nodes carry flat
// lists of primitive ops: backends replay ops without knowing anything
// about schedules, lanes, or items.
package scene

import "github.com/gogpu/stave/geom"

// OpKind identifies the type of a drawing op.
type OpKind uint8

const (
	// OpFillRect fills an axis-aligned rectangle.
	OpFillRect OpKind = iota
	// OpStrokeRect outlines an axis-aligned rectangle.
	OpStrokeRect
	// OpLine draws a straight segment.
	OpLine
	// OpCubic draws a cubic bezier segment.
	OpCubic
	// OpFillPoly fills a closed polygon.
	OpFillPoly
	// OpText draws a text run at a baseline point.
	OpText
)

// opKindNames maps OpKind values to their string representation.
var opKindNames = [...]string{
	OpFillRect:   "FillRect",
	OpStrokeRect: "StrokeRect",
	OpLine:       "Line",
	OpCubic:      "Cubic",
	OpFillPoly:   "FillPoly",
	OpText:       "Text",
}

// String returns the string representation of an OpKind.
func (k OpKind) String() string {
	if int(k) < len(opKindNames) {
		return opKindNames[k]
	}
	return "Unknown"
}

// Op is one primitive drawing operation. Backends switch on the
// concrete type; Kind exists for dispatch tables and dumps.
type Op interface {
	// Kind returns the OpKind for this op.
	Kind() OpKind
}

// Color is an 8-bit RGBA color, non-premultiplied.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA returns a color with explicit alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Packed returns the color as 0xRRGGBBAA.
func (c Color) Packed() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// FillRectOp fills a rectangle.
type FillRectOp struct {
	Rect  geom.Rect
	Color Color
}

// Kind implements Op.
func (FillRectOp) Kind() OpKind { return OpFillRect }

// StrokeRectOp outlines a rectangle.
type StrokeRectOp struct {
	Rect  geom.Rect
	Color Color
	// Width is the stroke width in pixels.
	Width float64
	// Dash is the dash pattern; nil means solid.
	Dash []float64
}

// Kind implements Op.
func (StrokeRectOp) Kind() OpKind { return OpStrokeRect }

// LineOp draws a segment.
type LineOp struct {
	From  geom.Point
	To    geom.Point
	Color Color
	Width float64
	Dash  []float64
}

// Kind implements Op.
func (LineOp) Kind() OpKind { return OpLine }

// CubicOp draws a cubic bezier from From to To with control points C1
// and C2.
type CubicOp struct {
	From  geom.Point
	C1    geom.Point
	C2    geom.Point
	To    geom.Point
	Color Color
	Width float64
	Dash  []float64
}

// Kind implements Op.
func (CubicOp) Kind() OpKind { return OpCubic }

// FillPolyOp fills a closed polygon. Points are in draw order; the
// polygon closes back to the first point.
type FillPolyOp struct {
	Points []geom.Point
	Color  Color
}

// Kind implements Op.
func (FillPolyOp) Kind() OpKind { return OpFillPoly }

// TextOp draws a single text run.
type TextOp struct {
	// Pos is the baseline origin.
	Pos   geom.Point
	Text  string
	Size  float64
	Color Color
}

// Kind implements Op.
func (TextOp) Kind() OpKind { return OpText }
