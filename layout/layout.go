// Package layout places items on the canvas.
//
// An item becomes an axis-aligned rectangle: horizontally spanning its
// start day to its end day through the frame's quantized scale, and
// vertically centered on its half-line within its lane's staff. Layout
// output is in screen space; the frame carries the scroll offset and the
// left margin so conversions stay in one place.
package layout

import (
	"sort"

	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/lanes"
	"github.com/gogpu/stave/schedule"
	"github.com/gogpu/stave/timescale"
)

// Metrics are the fixed item-sizing constants.
type Metrics struct {
	// LeftMargin is the width of the label gutter, in pixels. Day zero of
	// an unscrolled viewport starts here.
	LeftMargin float64

	// HeightFrac is the fraction of the lane's line spacing an item
	// fills.
	HeightFrac float64

	// MinItemHeight and MaxItemHeight clamp item heights so extreme
	// vertical scales keep items visible and keep them from swallowing
	// neighboring lines.
	MinItemHeight float64
	MaxItemHeight float64
}

// DefaultMetrics returns the standard item-sizing constants.
func DefaultMetrics() Metrics {
	return Metrics{
		LeftMargin:    80,
		HeightFrac:    0.8,
		MinItemHeight: 4,
		MaxItemHeight: 28,
	}
}

// Frame bundles everything needed to place items for one frame.
type Frame struct {
	Scale   timescale.Scale
	Staves  lanes.Staves
	Metrics Metrics

	// ScrollY is the viewport's vertical scroll in pixels.
	ScrollY float64
}

// DayToX maps a fractional day to a screen x, including the left margin.
func (f Frame) DayToX(day float64) float64 {
	return f.Metrics.LeftMargin + f.Scale.DayToScreenX(day)
}

// XToDay maps a screen x back to a fractional day.
func (f Frame) XToDay(x float64) float64 {
	return f.Scale.ScreenXToDays(x - f.Metrics.LeftMargin)
}

// WorldY converts a screen y to world space.
func (f Frame) WorldY(screenY float64) float64 {
	return screenY + f.ScrollY
}

// ScreenY converts a world y to screen space.
func (f Frame) ScreenY(worldY float64) float64 {
	return worldY - f.ScrollY
}

// ItemHeight returns the clamped item height for a staff.
func (f Frame) ItemHeight(b lanes.Block) float64 {
	h := b.LineSpacing * f.Metrics.HeightFrac
	if h < f.Metrics.MinItemHeight {
		h = f.Metrics.MinItemHeight
	}
	if h > f.Metrics.MaxItemHeight {
		h = f.Metrics.MaxItemHeight
	}
	return h
}

// ItemLayout is one placed item.
type ItemLayout struct {
	Item schedule.Item

	// Rect is the item's screen-space rectangle.
	Rect geom.Rect

	// LeftAnchor and RightAnchor are the link attachment points at the
	// middle of the item's vertical edges.
	LeftAnchor  geom.Point
	RightAnchor geom.Point

	lanePos uint32
}

// Place resolves one item against the frame. It reports false when the
// item's lane does not exist; such items are not drawn.
func (f Frame) Place(it schedule.Item) (ItemLayout, bool) {
	block, ok := f.Staves.ByID(it.Lane)
	if !ok {
		return ItemLayout{}, false
	}

	duration := it.DurationDays
	if duration == 0 {
		duration = 1
	}
	x0 := f.DayToX(float64(it.StartDay))
	x1 := f.DayToX(float64(it.StartDay + int64(duration)))

	centerY := f.ScreenY(block.LineY(it.LineIndex))
	h := f.ItemHeight(block)

	r := geom.Rect{MinX: x0, MinY: centerY - h/2, MaxX: x1, MaxY: centerY + h/2}
	return ItemLayout{
		Item:        it,
		Rect:        r,
		LeftAnchor:  geom.Pt(x0, centerY),
		RightAnchor: geom.Pt(x1, centerY),
		lanePos:     block.Lane.Position,
	}, true
}

// Index is the frame's placed items in paint order with id lookup.
type Index struct {
	// Items is in paint order: lane position, then start day, then id.
	// Later entries draw above earlier ones.
	Items []ItemLayout

	// Dropped counts items skipped because their lane was missing.
	Dropped int

	byID map[schedule.ItemID]int
}

// Compute places every item of a snapshot.
func Compute(items []schedule.Item, f Frame) *Index {
	ix := &Index{
		Items: make([]ItemLayout, 0, len(items)),
		byID:  make(map[schedule.ItemID]int, len(items)),
	}
	for _, it := range items {
		il, ok := f.Place(it)
		if !ok {
			ix.Dropped++
			continue
		}
		ix.Items = append(ix.Items, il)
	}

	sort.SliceStable(ix.Items, func(i, j int) bool {
		a, b := ix.Items[i], ix.Items[j]
		if a.lanePos != b.lanePos {
			return a.lanePos < b.lanePos
		}
		if a.Item.StartDay != b.Item.StartDay {
			return a.Item.StartDay < b.Item.StartDay
		}
		return a.Item.ID < b.Item.ID
	})
	for i, il := range ix.Items {
		ix.byID[il.Item.ID] = i
	}
	return ix
}

// ByID returns the placed layout for an item id.
func (ix *Index) ByID(id schedule.ItemID) (ItemLayout, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return ItemLayout{}, false
	}
	return ix.Items[i], true
}

// PaintIndex returns an item's position in paint order.
func (ix *Index) PaintIndex(id schedule.ItemID) (int, bool) {
	i, ok := ix.byID[id]
	return i, ok
}

// HitTest returns the topmost item whose rectangle contains the point.
// Later paint order draws on top, so the scan runs back to front.
func (ix *Index) HitTest(p geom.Point) (ItemLayout, bool) {
	for i := len(ix.Items) - 1; i >= 0; i-- {
		if ix.Items[i].Rect.Contains(p) {
			return ix.Items[i], true
		}
	}
	return ItemLayout{}, false
}
