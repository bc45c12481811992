package interact

import (
	"math"
	"sort"

	"github.com/gogpu/stave/capacity"
	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/lanes"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/scene"
	"github.com/gogpu/stave/schedule"
)

// previewDash is the dash pattern for gesture previews.
var previewDash = []float64{4, 3}

// Controller is the single interaction state machine driver. It owns
// the active gesture; the driver layer prevents concurrent gestures by
// construction because there is only one controller and PointerDown is
// ignored while a gesture is in flight.
//
// Controller is not safe for concurrent use; call it from the render
// driver's goroutine.
type Controller struct {
	surface Surface
	emit    EmitFunc
	params  Params

	gesture Gesture

	// downX/downY anchor the active gesture; lastX/lastY track the
	// pointer across all events for wheel zoom.
	downX, downY float64
	lastX, lastY float64

	// dragging flips once pointer travel exceeds the drag threshold
	// and never flips back within a gesture.
	dragging  bool
	pressMods Modifiers

	pan    panState
	move   moveState
	resize resizeState
	link   linkState
}

type panState struct {
	start schedule.Viewport
}

type moveState struct {
	item     schedule.Item
	grabDays float64
	minDay   int64
	hasMin   bool

	// Live preview placement, updated per move.
	day  int64
	lane schedule.LaneID
	line uint32
}

type resizeState struct {
	item     schedule.Item
	duration uint32
}

type linkState struct {
	src  schedule.Item
	x, y float64
	over schedule.ItemID
}

// NewController creates a controller over a surface. Commands flow to
// emit; a nil emit discards them.
func NewController(s Surface, emit EmitFunc, p Params) *Controller {
	return &Controller{
		surface: s,
		emit:    emit,
		params:  p.withDefaults(),
	}
}

// Active returns the gesture currently in flight.
func (c *Controller) Active() Gesture {
	return c.gesture
}

// Params returns the controller's effective tuning.
func (c *Controller) Params() Params {
	return c.params
}

// PointerDown starts a gesture. It is ignored while another gesture is
// active and before the first render.
func (c *Controller) PointerDown(x, y float64, buttons Buttons, mods Modifiers) {
	c.lastX, c.lastY = x, y
	if c.gesture != GestureNone || c.surface == nil {
		return
	}
	ix := c.surface.Layout()
	if ix == nil {
		return
	}

	c.downX, c.downY = x, y
	c.dragging = false
	c.pressMods = mods

	il, overItem := ix.HitTest(geom.Pt(x, y))

	// A distinct button or modifier starts link creation.
	if buttons.Has(ButtonRight) || (buttons.Has(ButtonLeft) && mods.Has(ModAlt)) {
		if !overItem {
			return
		}
		c.link = linkState{src: il.Item, x: x, y: y}
		c.gesture = GestureLink
		return
	}
	if !buttons.Has(ButtonLeft) {
		return
	}

	if !overItem {
		c.pan = panState{start: c.surface.Viewport()}
		c.gesture = GesturePan
		return
	}

	if x >= il.Rect.MaxX-c.params.ResizeZonePx {
		c.resize = resizeState{item: il.Item, duration: itemDuration(il.Item)}
		c.gesture = GestureResize
		return
	}

	frame := c.surface.Frame()
	st := moveState{
		item:     il.Item,
		grabDays: frame.XToDay(x) - float64(il.Item.StartDay),
		day:      il.Item.StartDay,
		lane:     il.Item.Lane,
		line:     il.Item.LineIndex,
	}
	st.minDay, st.hasMin = minStartDay(c.surface.Snapshot(), il.Item.ID)
	c.move = st
	c.gesture = GestureMove
}

// PointerMove advances the active gesture.
func (c *Controller) PointerMove(x, y float64) {
	c.lastX, c.lastY = x, y
	if c.gesture == GestureNone || c.surface == nil {
		return
	}

	if !c.dragging {
		dx, dy := x-c.downX, y-c.downY
		t := c.params.DragThresholdPx
		if dx*dx+dy*dy > t*t {
			c.dragging = true
		}
	}

	switch c.gesture {
	case GesturePan:
		c.panTo(x, y)
	case GestureMove:
		if c.dragging {
			c.movePreview(x, y)
		}
	case GestureResize:
		if c.dragging {
			c.resizePreview(x)
		}
	case GestureLink:
		c.linkPreview(x, y)
	}
}

// PointerUp finishes the active gesture: commit when its conditions
// hold, otherwise cancel without a command.
func (c *Controller) PointerUp(x, y float64, buttons Buttons, mods Modifiers) {
	c.lastX, c.lastY = x, y
	if c.gesture == GestureNone || c.surface == nil {
		return
	}
	g := c.gesture
	c.gesture = GestureNone

	switch g {
	case GesturePan:
		// Pan has no cancel path; the viewport moved with the pointer
		// and stays where the last move left it.

	case GestureMove:
		if !c.dragging {
			c.surface.ClearOverlay()
			c.emitSelection(c.move.item.ID)
			return
		}
		c.movePreview(x, y)
		c.surface.ClearOverlay()
		c.send(schedule.MoveItemCommand{
			Item:      c.move.item.ID,
			StartDay:  c.move.day,
			Lane:      c.move.lane,
			LineIndex: c.move.line,
		})

	case GestureResize:
		if !c.dragging {
			c.surface.ClearOverlay()
			c.emitSelection(c.resize.item.ID)
			return
		}
		c.resizePreview(x)
		c.surface.ClearOverlay()
		c.send(schedule.ResizeItemCommand{
			Item:         c.resize.item.ID,
			DurationDays: c.resize.duration,
		})

	case GestureLink:
		c.surface.ClearOverlay()
		target, ok := c.surface.Layout().HitTest(geom.Pt(x, y))
		if !ok || target.Item.ID == c.link.src.ID {
			return
		}
		src, dst := c.link.src, target.Item
		if dst.StartDay < src.StartDay {
			src, dst = dst, src
		}
		c.send(schedule.CreateLinkCommand{
			Src:  src.ID,
			Dst:  dst.ID,
			Kind: schedule.FinishToStart,
		})
	}
}

// Abort cancels the active gesture without emitting a command. The
// viewport keeps whatever the last pan move set; entities are never
// touched by a cancel.
func (c *Controller) Abort() {
	if c.gesture == GestureNone {
		return
	}
	c.gesture = GestureNone
	if c.surface != nil {
		c.surface.ClearOverlay()
	}
}

// Wheel scrolls, or zooms about the cursor when ctrl is held. Wheel
// input is ignored while a gesture is active so drag geometry stays
// stable under the pointer.
func (c *Controller) Wheel(dx, dy float64, ctrl bool) {
	if c.surface == nil || c.gesture != GestureNone {
		return
	}
	frame := c.surface.Frame()
	dw := frame.Scale.DayWidth
	if dw <= 0 {
		return
	}
	vp := c.surface.Viewport()

	if !ctrl {
		vp.XDays += dx / dw
		vp.YPixels += dy
		if vp.YPixels < 0 {
			vp.YPixels = 0
		}
		c.send(schedule.SetViewportCommand{Viewport: vp.Clamp()})
		return
	}

	// Zoom about the cursor: the day under the pointer stays put.
	anchor := frame.XToDay(c.lastX)
	next := vp
	next.Zoom = vp.Zoom * math.Exp(-dy*c.params.ZoomRate)
	next = next.Clamp()

	newDW := dw * next.Zoom / vp.Zoom
	if newDW > 0 {
		next.XDays = anchor - (anchor-vp.XDays)*dw/newDW
	}
	c.send(schedule.SetViewportCommand{Viewport: next.Clamp()})
}

// panTo recomputes the viewport from the pan origin and emits it.
func (c *Controller) panTo(x, y float64) {
	frame := c.surface.Frame()
	dw := frame.Scale.DayWidth
	if dw <= 0 {
		return
	}
	vp := c.pan.start
	vp.XDays -= (x - c.downX) / dw
	vp.YPixels -= y - c.downY
	if vp.YPixels < 0 {
		vp.YPixels = 0
	}
	c.send(schedule.SetViewportCommand{Viewport: vp.Clamp()})
}

// movePreview recomputes the drag target and redraws the preview
// rectangle. The update is pure preview state until commit.
func (c *Controller) movePreview(x, y float64) {
	frame := c.surface.Frame()
	st := &c.move

	desired := int64(math.Round(frame.XToDay(x) - st.grabDays))
	if st.hasMin && desired < st.minDay {
		desired = st.minDay
	}

	lane, line := st.lane, st.line
	block, ok := frame.Staves.HitTest(frame.WorldY(y))
	if ok {
		lane = block.Lane.ID
		line, _ = block.NearestHalfLine(frame.WorldY(y))
	} else if block, ok = frame.Staves.ByID(lane); !ok {
		// The lane vanished mid-drag; keep the previous preview.
		return
	}

	rule := schedule.DefaultCapacityRule()
	if snap := c.surface.Snapshot(); snap != nil {
		if l, found := snap.Lane(lane); found {
			rule = l.Rule()
		}
	}
	day := capacity.FindDay(c.surface.Census(), rule, lane, desired, st.item.ID)

	st.day, st.lane, st.line = day, lane, line

	rect := placementRect(frame, block, day, itemDuration(st.item), line)
	color := c.params.PreviewColor
	c.surface.SetOverlay(func(n *scene.Node) {
		n.Append(scene.StrokeRectOp{Rect: rect, Color: color, Width: 1, Dash: previewDash})
	})
}

// resizePreview recomputes the dragged duration and redraws the
// preview outline over the item's own staff position.
func (c *Controller) resizePreview(x float64) {
	frame := c.surface.Frame()
	st := &c.resize

	d := math.Round(frame.XToDay(x) - float64(st.item.StartDay))
	if d < 1 {
		d = 1
	}
	st.duration = uint32(d)

	block, ok := frame.Staves.ByID(st.item.Lane)
	if !ok {
		return
	}
	rect := placementRect(frame, block, st.item.StartDay, st.duration, st.item.LineIndex)
	color := c.params.PreviewColor
	c.surface.SetOverlay(func(n *scene.Node) {
		n.Append(scene.StrokeRectOp{Rect: rect, Color: color, Width: 1, Dash: previewDash})
	})
}

// linkPreview redraws the connector from the source's right anchor to
// the pointer and highlights a viable target under it.
func (c *Controller) linkPreview(x, y float64) {
	c.link.x, c.link.y = x, y
	ix := c.surface.Layout()
	src, ok := ix.ByID(c.link.src.ID)
	if !ok {
		return
	}

	c.link.over = ""
	var target layout.ItemLayout
	if t, hit := ix.HitTest(geom.Pt(x, y)); hit && t.Item.ID != c.link.src.ID {
		c.link.over = t.Item.ID
		target = t
	}

	from := src.RightAnchor
	to := geom.Pt(x, y)
	over := c.link.over
	color := c.params.PreviewColor
	c.surface.SetOverlay(func(n *scene.Node) {
		n.Append(scene.LineOp{From: from, To: to, Color: color, Width: 1, Dash: previewDash})
		if over != "" {
			n.Append(scene.StrokeRectOp{Rect: target.Rect, Color: color, Width: 1})
		}
	})
}

// emitSelection resolves a click into the complete new selection set.
// Plain clicks replace the selection; ctrl/shift/meta toggle the
// clicked item's membership.
func (c *Controller) emitSelection(id schedule.ItemID) {
	snap := c.surface.Snapshot()
	var items []schedule.ItemID

	if c.pressMods.togglesSelection() && snap != nil {
		for sel := range snap.Selection {
			if sel == id {
				continue
			}
			items = append(items, sel)
		}
		if !snap.Selected(id) {
			items = append(items, id)
		}
	} else {
		items = []schedule.ItemID{id}
	}

	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	c.send(schedule.SetSelectionCommand{Items: items})
}

// send forwards a command to the emit func.
func (c *Controller) send(cmd schedule.Command) {
	if c.emit != nil {
		c.emit(cmd)
	}
}

// minStartDay returns the earliest day the item may start: the latest
// end among its incoming links' sources.
func minStartDay(snap *schedule.Snapshot, id schedule.ItemID) (int64, bool) {
	if snap == nil {
		return 0, false
	}
	var min int64
	found := false
	for _, l := range snap.Links {
		if l.Dst != id {
			continue
		}
		src, ok := snap.Item(l.Src)
		if !ok {
			continue
		}
		if end := src.EndDay(); !found || end > min {
			min = end
			found = true
		}
	}
	return min, found
}

// placementRect mirrors the layout geometry for a hypothetical
// placement, used by previews.
func placementRect(frame layout.Frame, block lanes.Block, day int64, duration uint32, line uint32) geom.Rect {
	x0 := frame.DayToX(float64(day))
	x1 := frame.DayToX(float64(day + int64(duration)))
	cy := frame.ScreenY(block.LineY(line))
	h := frame.ItemHeight(block)
	return geom.Rect{MinX: x0, MinY: cy - h/2, MaxX: x1, MaxY: cy + h/2}
}

// itemDuration returns the item's drawn duration, at least one day.
func itemDuration(it schedule.Item) uint32 {
	if it.DurationDays == 0 {
		return 1
	}
	return it.DurationDays
}
