package layout

import (
	"math"
	"testing"

	"github.com/gogpu/stave/geom"
	"github.com/gogpu/stave/lanes"
	"github.com/gogpu/stave/schedule"
	"github.com/gogpu/stave/timescale"
)

func testFrame(scrollY float64) Frame {
	ls := []schedule.Lane{
		{ID: "strings", Position: 0, LineCount: 5, LineSpacingBase: 10},
		{ID: "brass", Position: 1, LineCount: 1, LineSpacingBase: 10},
	}
	return Frame{
		Scale:   timescale.NewScale(0, 60),
		Staves:  lanes.Compute(ls, 1, lanes.DefaultMetrics()),
		Metrics: DefaultMetrics(),
		ScrollY: scrollY,
	}
}

func TestPlaceBasic(t *testing.T) {
	f := testFrame(0)
	il, ok := f.Place(schedule.Item{
		ID: "x", Lane: "strings", StartDay: 2, DurationDays: 3, LineIndex: 2,
	})
	if !ok {
		t.Fatal("Place reported missing lane")
	}

	// Day 2 at 60 px/day behind an 80 px gutter: x0 = 80 + 120 = 200,
	// three days wide: x1 = 200 + 180 = 380.
	if il.Rect.MinX != 200 || il.Rect.MaxX != 380 {
		t.Errorf("x span = [%v, %v], want [200, 380]", il.Rect.MinX, il.Rect.MaxX)
	}

	// Half-line 2 is the second staff line at world y 50; height is
	// 10 * 0.8 = 8, so the rect is [46, 54].
	if il.Rect.MinY != 46 || il.Rect.MaxY != 54 {
		t.Errorf("y span = [%v, %v], want [46, 54]", il.Rect.MinY, il.Rect.MaxY)
	}

	if il.LeftAnchor != geom.Pt(200, 50) || il.RightAnchor != geom.Pt(380, 50) {
		t.Errorf("anchors = %v, %v; want (200,50), (380,50)", il.LeftAnchor, il.RightAnchor)
	}
}

func TestPlaceScroll(t *testing.T) {
	f := testFrame(30)
	il, _ := f.Place(schedule.Item{ID: "x", Lane: "strings", DurationDays: 1})
	// Line 0 is world y 40; scrolled by 30 it lands at 10.
	if got := il.Rect.Center().Y; got != 10 {
		t.Errorf("scrolled center y = %v, want 10", got)
	}
}

func TestPlaceMissingLane(t *testing.T) {
	f := testFrame(0)
	if _, ok := f.Place(schedule.Item{ID: "x", Lane: "absent", DurationDays: 1}); ok {
		t.Error("Place succeeded for an item in a missing lane")
	}
}

func TestPlaceZeroDuration(t *testing.T) {
	f := testFrame(0)
	il, ok := f.Place(schedule.Item{ID: "x", Lane: "brass", StartDay: 0, DurationDays: 0})
	if !ok {
		t.Fatal("Place failed")
	}
	if got := il.Rect.Width(); got != 60 {
		t.Errorf("zero duration width = %v, want one day (60)", got)
	}
}

func TestItemHeightClamped(t *testing.T) {
	m := DefaultMetrics()
	f := Frame{Metrics: m}
	tests := []struct {
		name    string
		spacing float64
		want    float64
	}{
		{"normal", 10, 8},
		{"tiny spacing floors", 2, m.MinItemHeight},
		{"huge spacing caps", 100, m.MaxItemHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := lanes.Block{LineSpacing: tt.spacing, LineCount: 5}
			if got := f.ItemHeight(b); got != tt.want {
				t.Errorf("ItemHeight(spacing %v) = %v, want %v", tt.spacing, got, tt.want)
			}
		})
	}
}

func TestDayXRoundTrip(t *testing.T) {
	f := testFrame(0)
	for _, day := range []float64{0, 1, 2.5, 100.25} {
		back := f.XToDay(f.DayToX(day))
		if math.Abs(back-day) > 1e-9 {
			t.Errorf("day %v round-tripped to %v", day, back)
		}
	}
}

func TestComputePaintOrder(t *testing.T) {
	f := testFrame(0)
	items := []schedule.Item{
		{ID: "b2", Lane: "brass", StartDay: 1, DurationDays: 1},
		{ID: "s2", Lane: "strings", StartDay: 5, DurationDays: 1},
		{ID: "s1", Lane: "strings", StartDay: 1, DurationDays: 1},
		{ID: "s3", Lane: "strings", StartDay: 1, DurationDays: 2, LineIndex: 1},
		{ID: "ghost", Lane: "absent", StartDay: 0, DurationDays: 1},
	}
	ix := Compute(items, f)

	if ix.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", ix.Dropped)
	}
	var order []schedule.ItemID
	for _, il := range ix.Items {
		order = append(order, il.Item.ID)
	}
	want := []schedule.ItemID{"s1", "s3", "s2", "b2"}
	if len(order) != len(want) {
		t.Fatalf("placed %d items, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("paint order = %v, want %v", order, want)
		}
	}
}

func TestIndexByID(t *testing.T) {
	f := testFrame(0)
	ix := Compute([]schedule.Item{
		{ID: "x", Lane: "strings", StartDay: 3, DurationDays: 1},
	}, f)
	il, ok := ix.ByID("x")
	if !ok || il.Item.StartDay != 3 {
		t.Errorf("ByID(\"x\") = (%+v, %v), want StartDay 3", il.Item, ok)
	}
	if _, ok := ix.ByID("nope"); ok {
		t.Error("ByID(\"nope\") unexpectedly found")
	}
}

func TestHitTestTopmost(t *testing.T) {
	f := testFrame(0)
	// Two items overlapping on the same line: s2 starts later, paints
	// later, and must win the hit.
	ix := Compute([]schedule.Item{
		{ID: "s1", Lane: "strings", StartDay: 0, DurationDays: 4},
		{ID: "s2", Lane: "strings", StartDay: 2, DurationDays: 4},
	}, f)

	// Day 3 is inside both rects. Line 0 center is y=40.
	p := geom.Pt(f.DayToX(3)+5, 40)
	il, ok := ix.HitTest(p)
	if !ok {
		t.Fatal("HitTest missed overlapping items")
	}
	if il.Item.ID != "s2" {
		t.Errorf("HitTest = %q, want topmost %q", il.Item.ID, "s2")
	}

	// Day 1 is only inside s1.
	il, ok = ix.HitTest(geom.Pt(f.DayToX(1)+5, 40))
	if !ok || il.Item.ID != "s1" {
		t.Errorf("HitTest = (%q, %v), want s1", il.Item.ID, ok)
	}

	if _, ok := ix.HitTest(geom.Pt(0, 0)); ok {
		t.Error("HitTest on empty space reported a hit")
	}
}
