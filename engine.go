package stave

import (
	"github.com/gogpu/stave/cache"
	"github.com/gogpu/stave/capacity"
	"github.com/gogpu/stave/cull"
	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/interact"
	"github.com/gogpu/stave/internal/parallel"
	"github.com/gogpu/stave/lanes"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/route"
	"github.com/gogpu/stave/scene"
	"github.com/gogpu/stave/schedule"
	"github.com/gogpu/stave/timescale"
)

// Z bands, lowest first. Within the item band, Z follows the layout's
// paint order so overlapping notes stack the same way hit testing
// resolves them. Links sit above every item; the overlay is appended
// after everything by the scene cache.
const (
	zGrid     = 0
	zLane     = 10
	zItemBase = 1000
	zLinkBase = 1000000
)

const (
	// minGridlinePx hides gridlines that would sit closer together than
	// this, so deep zoom-out degrades to measures, then to nothing.
	minGridlinePx = 4.0

	laneLabelSize = 11.0
	itemTitleSize = 11.0

	// accentWidthPx is the status stripe on an item's leading edge.
	accentWidthPx = 3.0
	// selectionPadPx offsets the selection outline from the item body.
	selectionPadPx = 2.0

	linkWidthPx = 1.5
)

// FrameStats summarizes one Render call.
type FrameStats struct {
	// Placed is the number of items laid out for the frame.
	Placed int
	// Dropped is the number of items skipped because their lane is
	// missing from the snapshot.
	Dropped int
	// Links is the number of connectors routed.
	Links int

	// Cull is the visibility pass breakdown.
	Cull cull.Stats
	// Scene holds the retained scene's cumulative reconcile counters.
	Scene scene.Stats

	// GridReused and CensusReused report whether the spatial grid and
	// the capacity census survived from the previous frame.
	GridReused   bool
	CensusReused bool

	// BackendOK reports whether the backend accepted the frame. A false
	// value means this frame presented nothing; the retained scene is
	// still current and presents on the next healthy frame.
	BackendOK bool
}

// Engine turns schedule snapshots into painted frames and input events
// into commands.
//
// The engine never mutates a snapshot. Gestures emit commands through
// the configured sink (or the DrainCommands queue); the host applies
// whichever it accepts and renders the resulting snapshot.
//
// Thread safety: an Engine expects one frame goroutine. Render, the
// pointer methods, and the queries must all be called from it. SetLogger
// is the only stave entry point that is safe to call from anywhere.
type Engine struct {
	opts options

	backend scene.Backend
	pool    *scene.NodePool
	cache   *scene.Cache
	router  *route.Router
	workers *parallel.WorkerPool
	ctrl    *interact.Controller

	// measureDays is the gridline measure emphasis period. Per-lane
	// capacity rules govern scheduling only; the background grid keeps
	// one global rhythm.
	measureDays int64

	// Last-frame state, read by gesture handling between renders.
	snap      *schedule.Snapshot
	vp        schedule.Viewport
	frame     layout.Frame
	ix        *layout.Index
	census    *capacity.Census
	censusRev uint64
	grid      *cull.Grid
	width     float64
	height    float64

	pending     []schedule.Command
	dirty       bool
	backendDown bool
	lastDropped int
	last        FrameStats
}

// New creates an engine. Without options it records frames with the
// built-in "record" backend, uses every default tuning, and queues
// commands for DrainCommands.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	backend := o.backend
	name := o.backendName
	if backend == nil {
		b, err := scene.NewBackend(o.backendName)
		if err != nil {
			return nil, err
		}
		backend = b
	} else {
		name = "custom"
	}
	if o.interParams.PreviewColor == (scene.Color{}) {
		o.interParams.PreviewColor = o.theme.Preview
	}

	pool := scene.NewNodePool(o.poolCapacity)
	pool.Warmup(64)

	e := &Engine{
		opts:        o,
		backend:     backend,
		pool:        pool,
		cache:       scene.NewCache(pool),
		router:      route.NewRouter(o.routeParams),
		workers:     parallel.NewWorkerPool(o.workers),
		measureDays: int64(schedule.DefaultCapacityRule().DaysPerMeasure),
		vp:          schedule.DefaultViewport(),
		dirty:       true,
	}
	e.ctrl = interact.NewController(e, e.emit, o.interParams)

	Logger().Info("stave: engine ready", "backend", name, "workers", e.workers.Workers())
	return e, nil
}

// Close releases the worker pool. The engine must not be used after.
func (e *Engine) Close() {
	e.workers.Close()
}

// Render builds and presents one frame.
//
// The viewport is clamped before anything is derived from it; a nil
// snapshot renders as empty. Render does not crash the host: internal
// panics are logged and swallowed, and a failing backend degrades to
// no-op frames until it recovers.
func (e *Engine) Render(snap *schedule.Snapshot, vp schedule.Viewport, width, height int) (stats FrameStats) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Error("stave: render panic", "recovered", r)
			e.last = stats
		}
	}()

	if snap == nil {
		snap = &schedule.Snapshot{}
	}
	vp = vp.Clamp()
	w, h := float64(width), float64(height)

	dw := timescale.DayWidth(e.opts.baseDayWidth, vp.Zoom)
	f := layout.Frame{
		Scale:   timescale.NewScale(vp.XDays, dw),
		Staves:  lanes.Compute(snap.Lanes, vp.VerticalScale, e.opts.laneMetrics),
		Metrics: e.opts.layoutMetrics,
		ScrollY: vp.YPixels,
	}
	ix := layout.Compute(snap.Items, f)
	if ix.Dropped != e.lastDropped {
		if ix.Dropped > 0 {
			Logger().Warn("stave: items not drawn, lane missing", "count", ix.Dropped)
		}
		e.lastDropped = ix.Dropped
	}

	// Derived indexes survive while the snapshot revision holds. A zero
	// revision disables reuse entirely.
	if snap.Revision == 0 || e.census == nil || e.censusRev != snap.Revision {
		e.census = capacity.NewCensus(snap.Items)
		e.censusRev = snap.Revision
	} else {
		stats.CensusReused = true
	}
	if e.grid.Matches(snap.Revision, vp.VerticalScale) {
		stats.GridReused = true
	} else {
		e.grid = cull.NewGrid(ix, f, snap.Revision, vp.VerticalScale, e.opts.cullParams)
	}

	e.snap, e.vp, e.frame, e.ix = snap, vp, f, ix
	e.width, e.height = w, h

	res := cull.Visible(ix, snap.Links, f, w, h, e.grid, e.workers, e.opts.cullParams)

	visuals := make([]scene.Visual, 0, 1+len(f.Staves.Blocks)+len(res.Visible)+len(res.VisibleLinks))
	builders := make(map[scene.Key]func(*scene.Node), cap(visuals))

	gridKey := scene.Key{Kind: scene.KindGrid}
	gh := scene.NewHasher()
	gh.F64(w)
	gh.F64(h)
	gh.F64(f.Scale.DayWidth)
	gh.F64(f.Scale.PixelOffsetX)
	visuals = append(visuals, scene.Visual{Key: gridKey, Z: zGrid, Hash: gh.Sum()})
	builders[gridKey] = func(n *scene.Node) { e.buildGrid(n, f, w, h) }

	for _, b := range f.Staves.Blocks {
		b := b
		k := scene.Key{Kind: scene.KindLane, ID: string(b.Lane.ID)}
		lh := scene.NewHasher()
		lh.Str(b.Lane.Name)
		lh.F64(f.ScreenY(b.YTop))
		lh.F64(b.LineSpacing)
		lh.U64(uint64(b.LineCount))
		lh.F64(w)
		visuals = append(visuals, scene.Visual{Key: k, Z: zLane, Hash: lh.Sum()})
		builders[k] = func(n *scene.Node) { e.buildLane(n, f, b, w) }
	}

	for _, il := range res.Visible {
		il := il
		level := res.LOD[il.Item.ID]
		selected := snap.Selected(il.Item.ID)
		pi, _ := ix.PaintIndex(il.Item.ID)
		k := scene.Key{Kind: scene.KindItem, ID: string(il.Item.ID)}
		ih := scene.NewHasher()
		ih.F64(il.Rect.MinX)
		ih.F64(il.Rect.MinY)
		ih.F64(il.Rect.MaxX)
		ih.F64(il.Rect.MaxY)
		ih.U8(uint8(level))
		ih.U8(uint8(il.Item.Status))
		ih.Bool(selected)
		ih.Str(il.Item.Title)
		visuals = append(visuals, scene.Visual{Key: k, Z: zItemBase + pi, Hash: ih.Sum()})
		builders[k] = func(n *scene.Node) { e.buildItem(n, il, level, selected) }
	}

	routed, skipped := 0, 0
	for i, ln := range res.VisibleLinks {
		src, okSrc := ix.ByID(ln.Src)
		dst, okDst := ix.ByID(ln.Dst)
		if !okSrc || !okDst {
			skipped++
			continue
		}
		from, to := route.Anchors(src, dst, ln.Kind)
		spec := e.router.Route(from, to, ln.Kind)

		id := string(ln.ID)
		if id == "" {
			id = string(ln.Src) + ">" + string(ln.Dst)
		}
		k := scene.Key{Kind: scene.KindLink, ID: id}
		kh := scene.NewHasher()
		kh.U8(uint8(spec.Kind))
		kh.F64(spec.From.X)
		kh.F64(spec.From.Y)
		kh.F64(spec.To.X)
		kh.F64(spec.To.Y)
		kh.F64(spec.C1.X)
		kh.F64(spec.C1.Y)
		kh.F64(spec.C2.X)
		kh.F64(spec.C2.Y)
		kh.F64(spec.ArrowAngle)
		visuals = append(visuals, scene.Visual{Key: k, Z: zLinkBase + i, Hash: kh.Sum()})
		builders[k] = func(n *scene.Node) { e.buildLink(n, spec) }
		routed++
	}
	if skipped > 0 {
		Logger().Debug("stave: links skipped, endpoint missing", "count", skipped)
	}

	diff := e.cache.Reconcile(visuals)
	for _, k := range diff.ToCreate {
		e.cache.Rebuild(k, builders[k])
	}
	for _, k := range diff.ToUpdate {
		e.cache.Rebuild(k, builders[k])
	}

	stats.Placed = len(ix.Items)
	stats.Dropped = ix.Dropped
	stats.Links = routed
	stats.Cull = res.Stats
	stats.Scene = e.cache.Stats()
	stats.BackendOK = e.present(width, height)

	Logger().Debug("stave: frame",
		"visible", res.Stats.Visible,
		"links", routed,
		"created", len(diff.ToCreate),
		"updated", len(diff.ToUpdate),
		"removed", len(diff.ToRemove),
	)

	e.dirty = false
	e.last = stats
	return stats
}

// present pushes the retained scene through the backend. Failures are
// warned once and then silently produce no-op frames; the first healthy
// frame afterwards logs the recovery.
func (e *Engine) present(width, height int) bool {
	err := e.backend.Begin(width, height)
	if err == nil {
		if err = e.backend.Paint(e.cache.Nodes()); err == nil {
			err = e.backend.End()
		}
	}
	if err != nil {
		if !e.backendDown {
			e.backendDown = true
			Logger().Warn("stave: backend failed, frames are no-ops until it recovers", "err", err)
		}
		return false
	}
	if e.backendDown {
		e.backendDown = false
		Logger().Info("stave: backend recovered")
	}
	return true
}

func (e *Engine) buildGrid(n *scene.Node, f layout.Frame, width, height float64) {
	t := e.opts.theme
	n.Append(scene.FillRectOp{Rect: geom.RectXYWH(0, 0, width, height), Color: t.Background})

	dw := f.Scale.DayWidth
	drawDays := dw >= minGridlinePx
	drawMeasures := dw*float64(e.measureDays) >= minGridlinePx
	if drawDays || drawMeasures {
		first, last := f.Scale.VisibleDays(width-f.Metrics.LeftMargin, 0)
		if first < 0 {
			first = 0
		}
		for d := first; d <= last; d++ {
			measure := d%e.measureDays == 0
			if measure && !drawMeasures {
				continue
			}
			if !measure && !drawDays {
				continue
			}
			x := f.DayToX(float64(d))
			if x < f.Metrics.LeftMargin || x > width {
				continue
			}
			color := t.DayLine
			if measure {
				color = t.MeasureLine
			}
			n.Append(scene.LineOp{From: geom.Pt(x, 0), To: geom.Pt(x, height), Color: color, Width: 1})
		}
	}

	gx := f.Metrics.LeftMargin
	n.Append(scene.LineOp{From: geom.Pt(gx, 0), To: geom.Pt(gx, height), Color: t.GutterLine, Width: 1})
}

func (e *Engine) buildLane(n *scene.Node, f layout.Frame, b lanes.Block, width float64) {
	t := e.opts.theme
	for i := uint32(0); i < b.LineCount; i++ {
		y := f.ScreenY(b.LineY(2 * i))
		n.Append(scene.LineOp{
			From:  geom.Pt(f.Metrics.LeftMargin, y),
			To:    geom.Pt(width, y),
			Color: t.StaffLine,
			Width: 1,
		})
	}

	label := truncateText(b.Lane.Name, f.Metrics.LeftMargin-16, laneLabelSize)
	if label != "" {
		y := f.ScreenY((b.YTop+b.YBottom)/2) + laneLabelSize/2 - 1
		n.Append(scene.TextOp{Pos: geom.Pt(8, y), Text: label, Size: laneLabelSize, Color: t.LaneLabel})
	}
}

func (e *Engine) buildItem(n *scene.Node, il layout.ItemLayout, level cull.Level, selected bool) {
	t := e.opts.theme
	r := il.Rect
	n.Append(scene.FillRectOp{Rect: r, Color: t.StatusFill(il.Item.Status)})

	if level != cull.LevelLow {
		n.Append(scene.StrokeRectOp{Rect: r, Color: t.ItemBorder, Width: 1})
	}
	if level == cull.LevelHigh {
		n.Append(scene.FillRectOp{
			Rect:  geom.Rect{MinX: r.MinX, MinY: r.MinY, MaxX: r.MinX + accentWidthPx, MaxY: r.MaxY},
			Color: t.StatusAccent(il.Item.Status),
		})
		title := truncateText(il.Item.Title, r.Width()-accentWidthPx-8, itemTitleSize)
		if title != "" {
			pos := geom.Pt(r.MinX+accentWidthPx+4, (r.MinY+r.MaxY)/2+itemTitleSize/2-1)
			n.Append(scene.TextOp{Pos: pos, Text: title, Size: itemTitleSize, Color: t.ItemTitle})
		}
	}
	if selected {
		n.Append(scene.StrokeRectOp{Rect: r.Inset(-selectionPadPx), Color: t.Selection, Width: 2})
	}
}

func (e *Engine) buildLink(n *scene.Node, spec route.PathSpec) {
	t := e.opts.theme
	if spec.Kind == route.PathCurved {
		n.Append(scene.CubicOp{From: spec.From, C1: spec.C1, C2: spec.C2, To: spec.To, Color: t.Link, Width: linkWidthPx})
	} else {
		n.Append(scene.LineOp{From: spec.From, To: spec.To, Color: t.Link, Width: linkWidthPx})
	}
	w1, w2 := spec.ArrowWings(e.opts.routeParams.ArrowLen)
	n.Append(scene.FillPolyOp{Points: []geom.Point{spec.To, w1, w2}, Color: t.Link})
}

// truncateText fits s into widthPx using an average-advance estimate,
// cutting with an ellipsis. Backends measure text precisely; the engine
// only needs a cheap, stable bound so node hashes never depend on font
// metrics.
func truncateText(s string, widthPx, size float64) string {
	if s == "" || widthPx <= 0 {
		return ""
	}
	max := int(widthPx / (size * 0.55))
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// Snapshot implements interact.Surface.
func (e *Engine) Snapshot() *schedule.Snapshot { return e.snap }

// Viewport implements interact.Surface. It returns the clamped viewport
// of the last rendered frame.
func (e *Engine) Viewport() schedule.Viewport { return e.vp }

// Frame implements interact.Surface.
func (e *Engine) Frame() layout.Frame { return e.frame }

// Layout implements interact.Surface. It is nil before the first Render.
func (e *Engine) Layout() *layout.Index { return e.ix }

// Census implements interact.Surface.
func (e *Engine) Census() *capacity.Census { return e.census }

// SetOverlay implements interact.Surface. The overlay paints above the
// whole scene and survives until ClearOverlay.
func (e *Engine) SetOverlay(build func(*scene.Node)) {
	e.cache.SetOverlay(build)
	e.dirty = true
}

// ClearOverlay implements interact.Surface.
func (e *Engine) ClearOverlay() {
	if !e.cache.HasOverlay() {
		return
	}
	e.cache.ClearOverlay()
	e.dirty = true
}

// PointerDown forwards a button press to the gesture controller.
// Coordinates are in screen pixels.
func (e *Engine) PointerDown(x, y float64, buttons interact.Buttons, mods interact.Modifiers) {
	e.ctrl.PointerDown(x, y, buttons, mods)
}

// PointerMove forwards pointer motion to the gesture controller.
func (e *Engine) PointerMove(x, y float64) {
	e.ctrl.PointerMove(x, y)
}

// PointerUp forwards a button release to the gesture controller.
func (e *Engine) PointerUp(x, y float64, buttons interact.Buttons, mods interact.Modifiers) {
	e.ctrl.PointerUp(x, y, buttons, mods)
}

// Wheel forwards scroll input. Plain wheel pans; ctrl-wheel zooms about
// the cursor.
func (e *Engine) Wheel(dx, dy float64, ctrl bool) {
	e.ctrl.Wheel(dx, dy, ctrl)
}

// AbortGesture cancels the gesture in flight, if any, without emitting
// a command.
func (e *Engine) AbortGesture() {
	e.ctrl.Abort()
}

// ActiveGesture returns the gesture in flight.
func (e *Engine) ActiveGesture() interact.Gesture {
	return e.ctrl.Active()
}

// emit routes one command to the sink or the pending queue.
func (e *Engine) emit(cmd schedule.Command) {
	e.dirty = true
	if e.opts.sink != nil {
		e.opts.sink(cmd)
		return
	}
	e.pending = append(e.pending, cmd)
}

// DrainCommands returns the commands queued since the last drain. Hosts
// that configured WithCommandSink never see anything here.
func (e *Engine) DrainCommands() []schedule.Command {
	out := e.pending
	e.pending = nil
	return out
}

// HitTest returns the topmost item under a screen point, using the last
// rendered frame's layout.
func (e *Engine) HitTest(x, y float64) (schedule.ItemID, bool) {
	if e.ix == nil {
		return "", false
	}
	il, ok := e.ix.HitTest(geom.Pt(x, y))
	if !ok {
		return "", false
	}
	return il.Item.ID, true
}

// ItemRect returns an item's screen rectangle from the last rendered
// frame.
func (e *Engine) ItemRect(id schedule.ItemID) (geom.Rect, bool) {
	if e.ix == nil {
		return geom.Rect{}, false
	}
	il, ok := e.ix.ByID(id)
	if !ok {
		return geom.Rect{}, false
	}
	return il.Rect, true
}

// LaneBlocks returns the lane geometry of the last rendered frame,
// ordered top to bottom. The slice is valid until the next Render.
func (e *Engine) LaneBlocks() []lanes.Block {
	return e.frame.Staves.Blocks
}

// Stats returns the previous frame's statistics.
func (e *Engine) Stats() FrameStats {
	return e.last
}

// NeedsFrame reports whether anything changed since the last Render:
// an overlay update, an emitted command, or an explicit Invalidate.
// Hosts driving on-demand rendering use this to skip idle frames.
func (e *Engine) NeedsFrame() bool {
	return e.dirty
}

// Invalidate forces NeedsFrame true until the next Render.
func (e *Engine) Invalidate() {
	e.dirty = true
}

// ResetScene drops every retained node. The next Render rebuilds the
// scene from scratch and produces identical output: the retained cache
// is an optimization, never a source of truth.
func (e *Engine) ResetScene() {
	e.cache.Reset()
	e.dirty = true
}

// RouteCacheStats exposes the connector memo counters.
func (e *Engine) RouteCacheStats() cache.Stats {
	return e.router.CacheStats()
}

// Backend returns the backend the engine presents through.
func (e *Engine) Backend() scene.Backend {
	return e.backend
}
