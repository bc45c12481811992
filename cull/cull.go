// Package cull decides what the current frame actually draws.
//
// The visibility pass tests placed items against the margin-expanded
// viewport, assigns each survivor a level of detail from its on-screen
// width, keeps links whose either endpoint survived, and optionally caps
// the survivor count by priority. Output order is paint order, so the
// scene builder can consume it directly.
//
// For large snapshots a uniform spatial grid narrows the candidate set,
// and the rectangle tests can be striped across a worker pool. Both are
// transparent: results are identical to the serial linear pass.
package cull

import (
	"math"
	"sort"

	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/internal/parallel"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/schedule"
)

// Level is an item's level of detail.
type Level uint8

const (
	// LevelHigh draws the full item: body, border, title, status accent.
	LevelHigh Level = iota
	// LevelMedium draws body and border only.
	LevelMedium
	// LevelLow draws a minimal slab.
	LevelLow
)

var levelNames = [...]string{
	LevelHigh:   "high",
	LevelMedium: "medium",
	LevelLow:    "low",
}

// String returns the level's name.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// Params tunes the visibility pass.
type Params struct {
	// MarginPx expands the viewport on all sides before testing, so
	// items entering during a pan are already built.
	MarginPx float64

	// LODHighPx and LODMediumPx are the minimum on-screen item widths
	// for high and medium detail. Anything narrower is low detail.
	LODHighPx   float64
	LODMediumPx float64

	// MaxVisible caps the number of drawn items; zero means no cap.
	// When the cap binds, higher Priority survives, ties resolved by
	// paint order.
	MaxVisible int

	// Priority ranks items for the cap. Nil treats all items equally.
	Priority func(schedule.Item) int

	// GridThreshold is the item count at which the spatial grid is
	// consulted instead of scanning every item.
	GridThreshold int

	// GridCellDays and GridCellPx are the grid cell extents, in days
	// horizontally and world pixels vertically.
	GridCellDays int64
	GridCellPx   float64

	// ParallelThreshold is the candidate count at which rectangle tests
	// are striped across the worker pool.
	ParallelThreshold int
}

// DefaultParams returns the standard culling tuning.
func DefaultParams() Params {
	return Params{
		MarginPx:          120,
		LODHighPx:         50,
		LODMediumPx:       10,
		GridThreshold:     2048,
		GridCellDays:      4,
		GridCellPx:        256,
		ParallelThreshold: 4096,
	}
}

// LevelFor classifies an on-screen item width.
func (p Params) LevelFor(widthPx float64) Level {
	switch {
	case widthPx > p.LODHighPx:
		return LevelHigh
	case widthPx > p.LODMediumPx:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Stats reports what one visibility pass did.
type Stats struct {
	// Tested is the number of items whose rectangle was examined.
	Tested int
	// Visible is the number of items kept.
	Visible int
	// Culled is the number of items rejected or skipped.
	Culled int
	// Capped is the number of visible items dropped by MaxVisible.
	Capped int
	// GridUsed reports whether the spatial grid narrowed candidates.
	GridUsed bool
	// Parallel reports whether the pass ran striped across workers.
	Parallel bool
}

// Result is the output of one visibility pass.
type Result struct {
	// Visible is the surviving items in paint order.
	Visible []layout.ItemLayout

	// Culled is the placed items not drawn this frame, in paint order.
	// Items skipped during layout never reach the pass and are counted
	// in Stats only.
	Culled []schedule.ItemID

	// VisibleLinks keeps input order among the surviving links. A link
	// survives when either endpoint is visible.
	VisibleLinks []schedule.Link

	// LOD maps each visible item to its level of detail.
	LOD map[schedule.ItemID]Level

	Stats Stats
}

// Visible runs the visibility pass for one frame.
//
// width and height are the viewport size in pixels. The grid is
// optional: pass nil to force the linear scan. The pool is optional
// too: pass nil to force serial testing. Either way the result is
// deterministic and ordered.
func Visible(ix *layout.Index, links []schedule.Link, f layout.Frame, width, height float64, g *Grid, pool *parallel.WorkerPool, p Params) Result {
	view := geom.RectXYWH(0, 0, width, height).Inset(-p.MarginPx)

	var stats Stats

	// Pick the candidate set: every placed item, or the grid's cells
	// overlapping the view.
	candidates := allCandidates(ix)
	if g != nil && p.GridThreshold > 0 && len(ix.Items) >= p.GridThreshold {
		candidates = g.candidates(ix, f, view)
		stats.GridUsed = true
	}

	keep := testCandidates(ix, candidates, view, pool, p, &stats)

	visible := make([]layout.ItemLayout, 0, len(keep))
	for _, i := range keep {
		visible = append(visible, ix.Items[i])
	}
	visible, capped := applyCap(visible, p)

	stats.Tested = len(candidates)
	stats.Visible = len(visible)
	stats.Capped = capped
	stats.Culled = len(ix.Items) + ix.Dropped - len(visible)

	lod := make(map[schedule.ItemID]Level, len(visible))
	for _, il := range visible {
		lod[il.Item.ID] = p.LevelFor(il.Rect.Width())
	}

	culled := make([]schedule.ItemID, 0, len(ix.Items)-len(visible))
	for _, il := range ix.Items {
		if _, ok := lod[il.Item.ID]; !ok {
			culled = append(culled, il.Item.ID)
		}
	}

	visibleLinks := make([]schedule.Link, 0)
	for _, ln := range links {
		if _, ok := lod[ln.Src]; ok {
			visibleLinks = append(visibleLinks, ln)
			continue
		}
		if _, ok := lod[ln.Dst]; ok {
			visibleLinks = append(visibleLinks, ln)
		}
	}

	return Result{
		Visible:      visible,
		Culled:       culled,
		VisibleLinks: visibleLinks,
		LOD:          lod,
		Stats:        stats,
	}
}

func allCandidates(ix *layout.Index) []int {
	c := make([]int, len(ix.Items))
	for i := range c {
		c[i] = i
	}
	return c
}

// testCandidates returns the paint indexes of candidates intersecting
// the view, ascending. Candidates must already be sorted ascending.
func testCandidates(ix *layout.Index, candidates []int, view geom.Rect, pool *parallel.WorkerPool, p Params, stats *Stats) []int {
	if pool == nil || p.ParallelThreshold <= 0 || len(candidates) < p.ParallelThreshold || !pool.IsRunning() {
		keep := make([]int, 0, len(candidates))
		for _, i := range candidates {
			if ix.Items[i].Rect.Intersects(view) {
				keep = append(keep, i)
			}
		}
		return keep
	}

	// Stripe the candidates across the pool. Each stripe fills its own
	// slot, and the stripes are concatenated in order after the join, so
	// paint order survives and no slice is shared between workers.
	stats.Parallel = true
	workers := pool.Workers()
	stripeLen := (len(candidates) + workers - 1) / workers
	stripes := make([][]int, workers)
	tasks := make([]func(), 0, workers)
	for w := 0; w < workers; w++ {
		lo := w * stripeLen
		if lo >= len(candidates) {
			break
		}
		hi := lo + stripeLen
		if hi > len(candidates) {
			hi = len(candidates)
		}
		w := w
		part := candidates[lo:hi]
		tasks = append(tasks, func() {
			keep := make([]int, 0, len(part))
			for _, i := range part {
				if ix.Items[i].Rect.Intersects(view) {
					keep = append(keep, i)
				}
			}
			stripes[w] = keep
		})
	}
	pool.ExecuteAll(tasks)

	var keep []int
	for _, s := range stripes {
		keep = append(keep, s...)
	}
	return keep
}

// applyCap drops the lowest-priority items beyond MaxVisible while
// preserving paint order among the survivors.
func applyCap(visible []layout.ItemLayout, p Params) ([]layout.ItemLayout, int) {
	if p.MaxVisible <= 0 || len(visible) <= p.MaxVisible {
		return visible, 0
	}

	rank := make([]int, len(visible))
	for i := range rank {
		rank[i] = i
	}
	prio := func(i int) int {
		if p.Priority == nil {
			return 0
		}
		return p.Priority(visible[i].Item)
	}
	sort.SliceStable(rank, func(a, b int) bool {
		pa, pb := prio(rank[a]), prio(rank[b])
		if pa != pb {
			return pa > pb
		}
		return rank[a] < rank[b]
	})

	kept := rank[:p.MaxVisible]
	sort.Ints(kept)
	out := make([]layout.ItemLayout, 0, len(kept))
	for _, i := range kept {
		out = append(out, visible[i])
	}
	return out, len(visible) - len(out)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// dayRange converts a screen-space rect to the whole days it spans.
func dayRange(f layout.Frame, view geom.Rect) (lo, hi int64) {
	return int64(math.Floor(f.XToDay(view.MinX))), int64(math.Ceil(f.XToDay(view.MaxX)))
}
