package main

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/gogpu/stave/schedule"
)

func TestLoadProjectGolden(t *testing.T) {
	p, err := LoadProject("testdata/project.yaml")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}

	// 2026-03-02 is 26 remaining January days + 28 February days + 2.
	if it, ok := p.Snapshot.Item("mix"); !ok || it.StartDay != 56 {
		t.Errorf("mix start day = %d, want 56", it.StartDay)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "project-summary", []byte(p.Summary()))
}

func TestLoadProjectMissingFile(t *testing.T) {
	if _, err := LoadProject("testdata/no-such-project.yaml"); err == nil {
		t.Error("loading a missing file did not fail")
	}
}

func TestParseProjectBadYAML(t *testing.T) {
	if _, err := parseProject([]byte("lanes: {{{")); err == nil {
		t.Error("malformed yaml did not fail")
	}
}

func TestParseProjectBadEpoch(t *testing.T) {
	if _, err := parseProject([]byte("epoch: 05/01/2026")); err == nil {
		t.Error("malformed epoch did not fail")
	}
}

func TestParseProjectDefaults(t *testing.T) {
	const doc = `
lanes:
  - id: solo
    signature: broken
items:
  - id: a
    title: First
    lane: solo
    start: 2020-01-03
    status: mystery
links:
  - src: a
    dst: a
    kind: sideways
`
	p, err := parseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parseProject: %v", err)
	}

	if got := p.Epoch.FormatDay(0); got != "2020-01-01" {
		t.Errorf("default epoch = %s, want 2020-01-01", got)
	}
	if p.Width != 1280 || p.Height != 720 {
		t.Errorf("default frame = %dx%d, want 1280x720", p.Width, p.Height)
	}
	if p.View.Zoom != 1 || p.View.VerticalScale != 1 {
		t.Errorf("default camera = %+v, want zoom 1, vertical scale 1", p.View)
	}

	lane := p.Snapshot.Lanes[0]
	if lane.Name != "solo" {
		t.Errorf("lane name = %q, want the id as fallback", lane.Name)
	}
	if lane.LineCount != 5 || lane.LineSpacingBase != 10 {
		t.Errorf("lane geometry = %d lines, spacing %g, want 5 and 10", lane.LineCount, lane.LineSpacingBase)
	}
	if lane.Capacity != nil {
		t.Errorf("broken signature produced a capacity rule: %v", *lane.Capacity)
	}
	if got := lane.Rule(); got != schedule.DefaultCapacityRule() {
		t.Errorf("Rule() = %v, want the default", got)
	}

	it := p.Snapshot.Items[0]
	if it.StartDay != 2 {
		t.Errorf("item day = %d, want 2", it.StartDay)
	}
	if it.DurationDays != 1 {
		t.Errorf("item duration = %d, want 1", it.DurationDays)
	}
	if it.Status != schedule.StatusNotStarted {
		t.Errorf("item status = %v, want not_started for an unknown name", it.Status)
	}

	link := p.Snapshot.Links[0]
	if link.ID == "" {
		t.Error("link id was not generated")
	}
	if link.Kind != schedule.FinishToStart {
		t.Errorf("link kind = %v, want finish_to_start for an unknown name", link.Kind)
	}
}

func TestParseProjectAssignsIDs(t *testing.T) {
	const doc = `
epoch: 2026-01-05
lanes:
  - name: Strings
  - name: Brass
items:
  - title: One
    lane: x
    start: 2026-01-06
`
	p, err := parseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parseProject: %v", err)
	}

	a, b := p.Snapshot.Lanes[0], p.Snapshot.Lanes[1]
	if a.ID == "" || b.ID == "" {
		t.Error("lane ids were not generated")
	}
	if a.ID == b.ID {
		t.Errorf("generated lane ids collide: %s", a.ID)
	}
	if a.Position != 0 || b.Position != 1 {
		t.Errorf("positions = %d, %d, want file order 0, 1", a.Position, b.Position)
	}
	if p.Snapshot.Items[0].ID == "" {
		t.Error("item id was not generated")
	}
}

func TestParseProjectPositionOverride(t *testing.T) {
	const doc = `
lanes:
  - id: a
    position: 7
  - id: b
`
	p, err := parseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parseProject: %v", err)
	}
	if got := p.Snapshot.Lanes[0].Position; got != 7 {
		t.Errorf("explicit position = %d, want 7", got)
	}
	if got := p.Snapshot.Lanes[1].Position; got != 1 {
		t.Errorf("implicit position = %d, want file index 1", got)
	}
}

func TestParseProjectSkipsBadDates(t *testing.T) {
	const doc = `
epoch: 2026-01-05
lanes:
  - id: l
items:
  - id: good
    title: ok
    lane: l
    start: 2026-01-08
  - id: bad
    title: broken
    lane: l
    start: January 8th
`
	p, err := parseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parseProject: %v", err)
	}
	if len(p.Snapshot.Items) != 1 {
		t.Fatalf("items = %d, want the bad date skipped", len(p.Snapshot.Items))
	}
	if it := p.Snapshot.Items[0]; it.ID != "good" || it.StartDay != 3 {
		t.Errorf("surviving item = %s day %d, want good at day 3", it.ID, it.StartDay)
	}
}

func TestParseProjectSkipsDanglingLinks(t *testing.T) {
	const doc = `
links:
  - id: half
    src: a
  - id: whole
    src: a
    dst: b
`
	p, err := parseProject([]byte(doc))
	if err != nil {
		t.Fatalf("parseProject: %v", err)
	}
	if len(p.Snapshot.Links) != 1 || p.Snapshot.Links[0].ID != "whole" {
		t.Errorf("links = %+v, want only the complete one", p.Snapshot.Links)
	}
}

func TestSummaryListsEveryEntity(t *testing.T) {
	p, err := LoadProject("testdata/project.yaml")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	s := p.Summary()
	for _, want := range []string{"lane strings", "lane brass", "item rehearse", "item record", "item mix", "link l1"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary is missing %q:\n%s", want, s)
		}
	}
}
