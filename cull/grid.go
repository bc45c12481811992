package cull

import (
	"math"
	"sort"

	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/schedule"
)

type cell struct {
	dx int64 // day extent / CellDays, floored
	dy int64 // world y / CellPx, floored
}

// Grid is a uniform spatial index over items, in world units: whole
// days horizontally and unscrolled pixels vertically. World coordinates
// do not move when the camera pans, so the grid survives across frames
// until the snapshot revision or the vertical scale changes.
type Grid struct {
	CellDays int64
	CellPx   float64

	revision uint64
	vscale   float64
	cells    map[cell][]schedule.ItemID
}

// NewGrid indexes every placed item of the frame.
func NewGrid(ix *layout.Index, f layout.Frame, revision uint64, vscale float64, p Params) *Grid {
	cellDays := p.GridCellDays
	if cellDays <= 0 {
		cellDays = 1
	}
	cellPx := p.GridCellPx
	if cellPx <= 0 {
		cellPx = 256
	}

	g := &Grid{
		CellDays: cellDays,
		CellPx:   cellPx,
		revision: revision,
		vscale:   vscale,
		cells:    make(map[cell][]schedule.ItemID, len(ix.Items)),
	}
	for _, il := range ix.Items {
		it := il.Item
		duration := int64(it.DurationDays)
		if duration == 0 {
			duration = 1
		}
		dx0 := floorDiv(it.StartDay, cellDays)
		dx1 := floorDiv(it.StartDay+duration-1, cellDays)

		y0 := f.WorldY(il.Rect.MinY)
		y1 := f.WorldY(il.Rect.MaxY)
		dy0 := int64(math.Floor(y0 / cellPx))
		dy1 := int64(math.Floor(y1 / cellPx))

		for dx := dx0; dx <= dx1; dx++ {
			for dy := dy0; dy <= dy1; dy++ {
				k := cell{dx: dx, dy: dy}
				g.cells[k] = append(g.cells[k], it.ID)
			}
		}
	}
	return g
}

// Matches reports whether the grid is still valid for a snapshot
// revision and vertical scale. A zero revision never matches, so hosts
// that do not maintain revisions simply never reuse the grid.
func (g *Grid) Matches(revision uint64, vscale float64) bool {
	return g != nil && revision != 0 && g.revision == revision && g.vscale == vscale
}

// Len returns the number of occupied cells.
func (g *Grid) Len() int {
	return len(g.cells)
}

// candidates returns the paint indexes of items in cells overlapping the
// view, deduplicated and sorted ascending.
func (g *Grid) candidates(ix *layout.Index, f layout.Frame, view geom.Rect) []int {
	dayLo, dayHi := dayRange(f, view)
	yLo := f.WorldY(view.MinY)
	yHi := f.WorldY(view.MaxY)

	dx0 := floorDiv(dayLo, g.CellDays)
	dx1 := floorDiv(dayHi, g.CellDays)
	dy0 := int64(math.Floor(yLo / g.CellPx))
	dy1 := int64(math.Floor(yHi / g.CellPx))

	seen := make(map[schedule.ItemID]struct{})
	var out []int
	for dx := dx0; dx <= dx1; dx++ {
		for dy := dy0; dy <= dy1; dy++ {
			for _, id := range g.cells[cell{dx: dx, dy: dy}] {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				if idx, ok := ix.PaintIndex(id); ok {
					out = append(out, idx)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}
