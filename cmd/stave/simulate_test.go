package main

import (
	"strings"
	"testing"

	"github.com/gogpu/stave"
	"github.com/gogpu/stave/schedule"
)

// simProject builds a one-lane project whose geometry is easy to reason
// about at the default camera: day width 60, left margin 80, lane top at
// y=40 with 10px line spacing. Item "a" covers days 2-4 on half-line 2,
// so its body spans x [200,380] around y=50.
func simProject(t *testing.T) *Project {
	t.Helper()
	const doc = `
epoch: 2026-01-05
lanes:
  - id: strings
    name: Strings
    lines: 5
    spacing: 10
items:
  - id: a
    title: Rehearse
    lane: strings
    start: 2026-01-07
    days: 3
    line: 2
`
	p, err := parseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parseProject: %v", err)
	}
	return p
}

func newSimEngine(t *testing.T) *stave.Engine {
	t.Helper()
	eng, err := stave.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(eng.Close)
	return eng
}

func steps(ss ...scriptStep) *scriptFile {
	return &scriptFile{Steps: ss}
}

func TestRunScriptClickSelects(t *testing.T) {
	p := simProject(t)
	eng := newSimEngine(t)

	var out strings.Builder
	n, err := runScript(eng, p, steps(
		scriptStep{Do: "down", X: 210, Y: 50},
		scriptStep{Do: "up", X: 210, Y: 50},
	), &out)
	if err != nil {
		t.Fatalf("runScript: %v", err)
	}

	if n != 1 {
		t.Errorf("commands = %d, want 1:\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), "step 2 up: SetSelection items=[a]") {
		t.Errorf("output missing the selection command:\n%s", out.String())
	}
	if !p.Snapshot.Selected("a") {
		t.Error("selection was not applied to the store")
	}
}

func TestRunScriptPanUpdatesViewport(t *testing.T) {
	p := simProject(t)
	eng := newSimEngine(t)

	var out strings.Builder
	n, err := runScript(eng, p, steps(
		scriptStep{Do: "down", X: 400, Y: 300},
		scriptStep{Do: "move", X: 340, Y: 280},
		scriptStep{Do: "up", X: 340, Y: 280},
	), &out)
	if err != nil {
		t.Fatalf("runScript: %v", err)
	}

	if n != 1 {
		t.Errorf("commands = %d, want 1:\n%s", n, out.String())
	}
	if p.View.XDays != 1 || p.View.YPixels != 20 {
		t.Errorf("viewport = %+v, want x=1 day, y=20px", p.View)
	}
	if !strings.Contains(out.String(), "SetViewport x=1.00 y=20.0") {
		t.Errorf("output missing the viewport command:\n%s", out.String())
	}
}

func TestRunScriptMoveItemAppliesToStore(t *testing.T) {
	p := simProject(t)
	eng := newSimEngine(t)

	var out strings.Builder
	n, err := runScript(eng, p, steps(
		scriptStep{Do: "down", X: 210, Y: 50},
		scriptStep{Do: "move", X: 270, Y: 50},
		scriptStep{Do: "up", X: 270, Y: 50},
	), &out)
	if err != nil {
		t.Fatalf("runScript: %v", err)
	}

	if n != 1 {
		t.Errorf("commands = %d, want 1:\n%s", n, out.String())
	}
	if !strings.Contains(out.String(), "MoveItem item=a day=3 lane=strings line=2") {
		t.Errorf("output missing the move command:\n%s", out.String())
	}
	it, _ := p.Snapshot.Item("a")
	if it.StartDay != 3 {
		t.Errorf("store start day = %d, want 3", it.StartDay)
	}
	if p.Snapshot.Revision != 2 {
		t.Errorf("revision = %d, want bumped to 2", p.Snapshot.Revision)
	}
}

func TestRunScriptAbortEmitsNothing(t *testing.T) {
	p := simProject(t)
	eng := newSimEngine(t)

	var out strings.Builder
	n, err := runScript(eng, p, steps(
		scriptStep{Do: "down", X: 210, Y: 50},
		scriptStep{Do: "move", X: 300, Y: 50},
		scriptStep{Do: "abort"},
	), &out)
	if err != nil {
		t.Fatalf("runScript: %v", err)
	}

	if n != 0 {
		t.Errorf("commands = %d, want none after abort:\n%s", n, out.String())
	}
	it, _ := p.Snapshot.Item("a")
	if it.StartDay != 2 {
		t.Errorf("store start day = %d, want the original 2", it.StartDay)
	}
}

func TestRunScriptUnknownAction(t *testing.T) {
	p := simProject(t)
	eng := newSimEngine(t)

	var out strings.Builder
	_, err := runScript(eng, p, steps(scriptStep{Do: "hover", X: 1, Y: 1}), &out)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Errorf("err = %v, want unknown action", err)
	}
}

func TestLoadScriptMissingFile(t *testing.T) {
	if _, err := loadScript("testdata/no-such-script.yaml"); err == nil {
		t.Error("loading a missing script did not fail")
	}
}

func TestApplyCommand(t *testing.T) {
	p := simProject(t)

	applyCommand(p, schedule.ResizeItemCommand{Item: "a", DurationDays: 5})
	if it, _ := p.Snapshot.Item("a"); it.DurationDays != 5 {
		t.Errorf("duration = %d, want 5", it.DurationDays)
	}
	if p.Snapshot.Revision != 2 {
		t.Errorf("revision after resize = %d, want 2", p.Snapshot.Revision)
	}

	applyCommand(p, schedule.CreateLinkCommand{Src: "a", Dst: "a", Kind: schedule.StartToStart})
	if len(p.Snapshot.Links) != 1 {
		t.Fatalf("links = %d, want 1", len(p.Snapshot.Links))
	}
	if p.Snapshot.Links[0].ID == "" {
		t.Error("created link has no id")
	}
	if p.Snapshot.Revision != 3 {
		t.Errorf("revision after link = %d, want 3", p.Snapshot.Revision)
	}

	// Selection is per-frame state, not indexed structure.
	applyCommand(p, schedule.SetSelectionCommand{Items: []schedule.ItemID{"a"}})
	if !p.Snapshot.Selected("a") {
		t.Error("selection not applied")
	}
	if p.Snapshot.Revision != 3 {
		t.Errorf("revision after selection = %d, want unchanged 3", p.Snapshot.Revision)
	}

	vp := schedule.Viewport{XDays: 4, YPixels: 9, Zoom: 2, VerticalScale: 1}
	applyCommand(p, schedule.SetViewportCommand{Viewport: vp})
	if p.View != vp {
		t.Errorf("viewport = %+v, want %+v", p.View, vp)
	}
}

func TestDescribeCommand(t *testing.T) {
	tests := []struct {
		cmd  schedule.Command
		want string
	}{
		{schedule.MoveItemCommand{Item: "a", StartDay: 4, Lane: "strings", LineIndex: 2},
			"MoveItem item=a day=4 lane=strings line=2"},
		{schedule.ResizeItemCommand{Item: "a", DurationDays: 6},
			"ResizeItem item=a days=6"},
		{schedule.CreateLinkCommand{Src: "a", Dst: "b", Kind: schedule.FinishToStart},
			"CreateLink src=a dst=b kind=finish_to_start"},
		{schedule.SetSelectionCommand{Items: []schedule.ItemID{"a", "b"}},
			"SetSelection items=[a b]"},
		{schedule.SetViewportCommand{Viewport: schedule.Viewport{XDays: 1.5, YPixels: 20, Zoom: 1, VerticalScale: 1}},
			"SetViewport x=1.50 y=20.0 zoom=1.00 vscale=1.00"},
	}

	for _, tt := range tests {
		if got := describeCommand(tt.cmd); got != tt.want {
			t.Errorf("describeCommand() = %q, want %q", got, tt.want)
		}
	}
}
