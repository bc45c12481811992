package cull

import (
	"math/rand"
	"testing"

	"github.com/gogpu/stave/internal/parallel"
	"github.com/gogpu/stave/lanes"
	"github.com/gogpu/stave/layout"
	"github.com/gogpu/stave/schedule"
	"github.com/gogpu/stave/timescale"
)

func testFrame(dayWidth float64) layout.Frame {
	ls := []schedule.Lane{
		{ID: "a", Position: 0, LineCount: 5, LineSpacingBase: 10},
		{ID: "b", Position: 1, LineCount: 1, LineSpacingBase: 10},
		{ID: "c", Position: 2, LineCount: 3, LineSpacingBase: 10},
	}
	return layout.Frame{
		Scale:   timescale.NewScale(0, dayWidth),
		Staves:  lanes.Compute(ls, 1, lanes.DefaultMetrics()),
		Metrics: layout.DefaultMetrics(),
	}
}

func item(id schedule.ItemID, lane schedule.LaneID, day int64, dur uint32) schedule.Item {
	return schedule.Item{ID: id, Lane: lane, StartDay: day, DurationDays: dur}
}

func idsOf(r Result) []schedule.ItemID {
	out := make([]schedule.ItemID, 0, len(r.Visible))
	for _, il := range r.Visible {
		out = append(out, il.Item.ID)
	}
	return out
}

func TestVisibleBasic(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute([]schedule.Item{
		item("near", "a", 0, 1),
		item("margin", "a", 14, 1), // x = 80+840 = 920, inside the 120px margin
		item("far", "a", 30, 1),    // x = 1880, far outside
	}, f)

	r := Visible(ix, nil, f, 800, 600, nil, nil, DefaultParams())

	got := idsOf(r)
	want := []schedule.ItemID{"near", "margin"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	if len(r.Culled) != 1 || r.Culled[0] != "far" {
		t.Errorf("culled = %v, want [far]", r.Culled)
	}
	if r.Stats.Visible != 2 || r.Stats.Culled != 1 {
		t.Errorf("stats = %+v, want Visible 2, Culled 1", r.Stats)
	}
	if r.Stats.GridUsed || r.Stats.Parallel {
		t.Errorf("small pass used grid/parallel: %+v", r.Stats)
	}
}

func TestVisibleCountsDroppedItems(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute([]schedule.Item{
		item("ok", "a", 0, 1),
		item("ghost", "missing", 0, 1),
	}, f)

	r := Visible(ix, nil, f, 800, 600, nil, nil, DefaultParams())
	if r.Stats.Visible != 1 || r.Stats.Culled != 1 {
		t.Errorf("stats = %+v, want Visible 1, Culled 1 (dropped lane)", r.Stats)
	}
}

func TestLevelFor(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		width float64
		want  Level
	}{
		{200, LevelHigh},
		{50.5, LevelHigh},
		{50, LevelMedium},
		{20, LevelMedium},
		{10.5, LevelMedium},
		{10, LevelLow},
		{3, LevelLow},
		{0, LevelLow},
	}
	for _, tt := range tests {
		if got := p.LevelFor(tt.width); got != tt.want {
			t.Errorf("LevelFor(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelHigh.String() != "high" || LevelLow.String() != "low" {
		t.Error("level names wrong")
	}
	if Level(9).String() != "unknown" {
		t.Errorf("Level(9) = %q, want unknown", Level(9).String())
	}
}

func TestVisibleAssignsLOD(t *testing.T) {
	f := testFrame(8) // 8 px/day
	ix := layout.Compute([]schedule.Item{
		item("low", "a", 0, 1),    // 8 px
		item("medium", "a", 2, 2), // 16 px
		item("high", "a", 5, 7),   // 56 px
	}, f)

	r := Visible(ix, nil, f, 800, 600, nil, nil, DefaultParams())
	want := map[schedule.ItemID]Level{"low": LevelLow, "medium": LevelMedium, "high": LevelHigh}
	for id, lv := range want {
		if got := r.LOD[id]; got != lv {
			t.Errorf("LOD[%s] = %v, want %v", id, got, lv)
		}
	}
}

func TestVisibleLinks(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute([]schedule.Item{
		item("in1", "a", 0, 1),
		item("in2", "a", 3, 1),
		item("out1", "a", 100, 1),
		item("out2", "a", 120, 1),
	}, f)
	links := []schedule.Link{
		{ID: "l1", Src: "in1", Dst: "in2"},
		{ID: "l2", Src: "in1", Dst: "out1"}, // source visible
		{ID: "l3", Src: "out1", Dst: "in2"}, // destination visible
		{ID: "l4", Src: "out1", Dst: "out2"},
	}

	r := Visible(ix, links, f, 800, 600, nil, nil, DefaultParams())
	if len(r.VisibleLinks) != 3 {
		t.Fatalf("visible links = %d, want 3", len(r.VisibleLinks))
	}
	for i, want := range []schedule.LinkID{"l1", "l2", "l3"} {
		if r.VisibleLinks[i].ID != want {
			t.Errorf("link[%d] = %s, want %s", i, r.VisibleLinks[i].ID, want)
		}
	}
}

func TestVisibleCapByPriority(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute([]schedule.Item{
		item("d0", "a", 0, 1),
		item("d1", "a", 1, 1),
		item("d2", "a", 2, 1),
		item("d3", "a", 3, 1),
	}, f)

	p := DefaultParams()
	p.MaxVisible = 2
	p.Priority = func(it schedule.Item) int { return int(it.StartDay) } // later days win

	r := Visible(ix, nil, f, 800, 600, nil, nil, p)
	got := idsOf(r)
	if len(got) != 2 || got[0] != "d2" || got[1] != "d3" {
		t.Fatalf("capped visible = %v, want [d2 d3] in paint order", got)
	}
	if r.Stats.Capped != 2 {
		t.Errorf("Capped = %d, want 2", r.Stats.Capped)
	}
	if len(r.Culled) != 2 || r.Culled[0] != "d0" || r.Culled[1] != "d1" {
		t.Errorf("culled = %v, want [d0 d1]", r.Culled)
	}
	// Links to capped-away items disappear with them.
	if _, ok := r.LOD["d0"]; ok {
		t.Error("capped item still has a LOD entry")
	}
}

func TestVisibleCapDefaultsToPaintOrder(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute([]schedule.Item{
		item("d0", "a", 0, 1),
		item("d1", "a", 1, 1),
		item("d2", "a", 2, 1),
	}, f)

	p := DefaultParams()
	p.MaxVisible = 2

	r := Visible(ix, nil, f, 800, 600, nil, nil, p)
	got := idsOf(r)
	if len(got) != 2 || got[0] != "d0" || got[1] != "d1" {
		t.Fatalf("capped visible = %v, want first two in paint order", got)
	}
}

func TestVisibleEmpty(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute(nil, f)
	r := Visible(ix, []schedule.Link{{ID: "l", Src: "x", Dst: "y"}}, f, 800, 600, nil, nil, DefaultParams())
	if len(r.Visible) != 0 || len(r.VisibleLinks) != 0 || len(r.LOD) != 0 {
		t.Errorf("empty pass returned %+v", r)
	}
}

func randomItems(rng *rand.Rand, n int) []schedule.Item {
	lanesIDs := []schedule.LaneID{"a", "b", "c"}
	items := make([]schedule.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, schedule.Item{
			ID:           schedule.ItemID(rune('!' + i)),
			Lane:         lanesIDs[rng.Intn(len(lanesIDs))],
			StartDay:     int64(rng.Intn(200)) - 20,
			DurationDays: uint32(1 + rng.Intn(15)),
			LineIndex:    uint32(rng.Intn(9)),
		})
	}
	return items
}

func TestGridMatchesLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	f := testFrame(30)

	for trial := 0; trial < 20; trial++ {
		ix := layout.Compute(randomItems(rng, 80), f)

		p := DefaultParams()
		linear := Visible(ix, nil, f, 900, 700, nil, nil, p)

		p.GridThreshold = 1
		g := NewGrid(ix, f, 7, 1, p)
		gridded := Visible(ix, nil, f, 900, 700, g, nil, p)

		if !gridded.Stats.GridUsed {
			t.Fatal("grid path not taken")
		}
		lin, grd := idsOf(linear), idsOf(gridded)
		if len(lin) != len(grd) {
			t.Fatalf("trial %d: linear %d visible, grid %d", trial, len(lin), len(grd))
		}
		for i := range lin {
			if lin[i] != grd[i] {
				t.Fatalf("trial %d: order diverges at %d: %v vs %v", trial, i, lin, grd)
			}
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	rng := rand.New(rand.NewSource(11))
	f := testFrame(30)

	for trial := 0; trial < 10; trial++ {
		ix := layout.Compute(randomItems(rng, 90), f)

		p := DefaultParams()
		serial := Visible(ix, nil, f, 900, 700, nil, nil, p)

		p.ParallelThreshold = 1
		striped := Visible(ix, nil, f, 900, 700, nil, pool, p)

		if !striped.Stats.Parallel {
			t.Fatal("parallel path not taken")
		}
		a, b := idsOf(serial), idsOf(striped)
		if len(a) != len(b) {
			t.Fatalf("trial %d: serial %d visible, parallel %d", trial, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("trial %d: order diverges at %d", trial, i)
			}
		}
	}
}

func TestGridMatchesGuards(t *testing.T) {
	f := testFrame(60)
	ix := layout.Compute([]schedule.Item{item("x", "a", 0, 1)}, f)
	g := NewGrid(ix, f, 5, 1.5, DefaultParams())

	if !g.Matches(5, 1.5) {
		t.Error("Matches(5, 1.5) = false, want true")
	}
	if g.Matches(6, 1.5) {
		t.Error("Matches with stale revision = true")
	}
	if g.Matches(5, 2) {
		t.Error("Matches with different vscale = true")
	}
	var nilGrid *Grid
	if nilGrid.Matches(5, 1.5) {
		t.Error("nil grid matched")
	}

	zero := NewGrid(ix, f, 0, 1, DefaultParams())
	if zero.Matches(0, 1) {
		t.Error("zero revision must never match")
	}
}

func TestGridNegativeDays(t *testing.T) {
	f := testFrame(60)
	// A pre-epoch item only reachable through floor division of
	// negative day indexes.
	ix := layout.Compute([]schedule.Item{item("past", "a", -6, 3)}, f)

	p := DefaultParams()
	p.GridThreshold = 1
	g := NewGrid(ix, f, 3, 1, p)

	// Scroll the camera back so the item is on screen.
	f2 := f
	f2.Scale = timescale.NewScale(-8, 60)
	ix2 := layout.Compute([]schedule.Item{item("past", "a", -6, 3)}, f2)
	g2 := NewGrid(ix2, f2, 3, 1, p)
	r := Visible(ix2, nil, f2, 800, 600, g2, nil, p)
	if len(r.Visible) != 1 {
		t.Fatalf("pre-epoch item not found through grid: %+v", r.Stats)
	}
	_ = g
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{8, 4, 2},
		{11, 4, 2},
		{12, 4, 3},
		{0, 4, 0},
		{-1, 4, -1},
		{-4, 4, -1},
		{-5, 4, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
