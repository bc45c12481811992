package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/stave"
	"github.com/gogpu/stave/schedule"
	"github.com/gogpu/stave/timescale"
)

// projectFile is the YAML schema of a project document. Dates are ISO
// calendar dates; the loader converts them to day indexes against the
// project epoch at the boundary, so the engine never sees a date.
type projectFile struct {
	Name  string `yaml:"name"`
	Epoch string `yaml:"epoch"`

	View struct {
		Width  int     `yaml:"width"`
		Height int     `yaml:"height"`
		Zoom   float64 `yaml:"zoom"`
		X      float64 `yaml:"x"`
		Y      float64 `yaml:"y"`
	} `yaml:"view"`

	Lanes []struct {
		ID      string  `yaml:"id"`
		Name    string  `yaml:"name"`
		Lines   uint32  `yaml:"lines"`
		Spacing float64 `yaml:"spacing"`
		// Position overrides the file-order placement of the lane.
		Position  *uint32 `yaml:"position"`
		Signature string  `yaml:"signature"`
	} `yaml:"lanes"`

	Items []struct {
		ID     string `yaml:"id"`
		Title  string `yaml:"title"`
		Lane   string `yaml:"lane"`
		Start  string `yaml:"start"`
		Days   uint32 `yaml:"days"`
		Line   uint32 `yaml:"line"`
		Status string `yaml:"status"`
	} `yaml:"items"`

	Links []struct {
		ID   string `yaml:"id"`
		Src  string `yaml:"src"`
		Dst  string `yaml:"dst"`
		Kind string `yaml:"kind"`
	} `yaml:"links"`
}

// Project is a loaded project document: the snapshot the engine reads
// plus the frame size and starting camera.
type Project struct {
	Name     string
	Epoch    timescale.Epoch
	Snapshot *schedule.Snapshot

	Width  int
	Height int
	View   schedule.Viewport
}

// LoadProject reads and parses a project YAML file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	p, err := parseProject(data)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", path, err)
	}
	return p, nil
}

// parseProject builds a Project from YAML bytes. Entities without ids
// get generated ones; items with malformed start dates are skipped with
// a warning so one bad row cannot take down the whole document.
func parseProject(data []byte) (*Project, error) {
	var f projectFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	epoch := timescale.DefaultEpoch()
	if f.Epoch != "" {
		t, err := time.Parse(time.DateOnly, f.Epoch)
		if err != nil {
			return nil, fmt.Errorf("parsing epoch %q: %w", f.Epoch, err)
		}
		epoch = timescale.NewEpoch(t)
	}

	log := stave.Logger()
	snap := &schedule.Snapshot{Revision: 1}

	for i, l := range f.Lanes {
		id := l.ID
		if id == "" {
			id = newID()
		}
		name := l.Name
		if name == "" {
			name = id
		}
		lines := l.Lines
		if lines == 0 {
			lines = 5
		}
		spacing := l.Spacing
		if spacing <= 0 {
			spacing = 10
		}
		pos := uint32(i)
		if l.Position != nil {
			pos = *l.Position
		}
		lane := schedule.Lane{
			ID:              schedule.LaneID(id),
			Name:            name,
			LineCount:       lines,
			LineSpacingBase: spacing,
			Position:        pos,
		}
		if l.Signature != "" {
			rule, err := schedule.ParseSignature(l.Signature)
			if err != nil {
				log.Warn("stave: lane signature ignored", "lane", id, "err", err)
			} else {
				lane.Capacity = &rule
			}
		}
		snap.Lanes = append(snap.Lanes, lane)
	}

	for _, it := range f.Items {
		id := it.ID
		if id == "" {
			id = newID()
		}
		day, err := epoch.ParseDay(it.Start)
		if err != nil {
			log.Warn("stave: item skipped, bad start date", "item", id, "title", it.Title, "err", err)
			continue
		}
		days := it.Days
		if days == 0 {
			days = 1
		}
		status := schedule.StatusNotStarted
		if it.Status != "" {
			status, err = schedule.ParseStatus(it.Status)
			if err != nil {
				log.Warn("stave: item status ignored", "item", id, "err", err)
				status = schedule.StatusNotStarted
			}
		}
		snap.Items = append(snap.Items, schedule.Item{
			ID:           schedule.ItemID(id),
			Title:        it.Title,
			StartDay:     day,
			DurationDays: days,
			Status:       status,
			Lane:         schedule.LaneID(it.Lane),
			LineIndex:    it.Line,
		})
	}

	for _, l := range f.Links {
		if l.Src == "" || l.Dst == "" {
			log.Warn("stave: link skipped, missing endpoint", "link", l.ID)
			continue
		}
		id := l.ID
		if id == "" {
			id = newID()
		}
		kind := schedule.FinishToStart
		if l.Kind != "" {
			var err error
			kind, err = schedule.ParseLinkKind(l.Kind)
			if err != nil {
				log.Warn("stave: link kind ignored", "link", id, "err", err)
				kind = schedule.FinishToStart
			}
		}
		snap.Links = append(snap.Links, schedule.Link{
			ID:   schedule.LinkID(id),
			Src:  schedule.ItemID(l.Src),
			Dst:  schedule.ItemID(l.Dst),
			Kind: kind,
		})
	}

	p := &Project{
		Name:     f.Name,
		Epoch:    epoch,
		Snapshot: snap,
		Width:    f.View.Width,
		Height:   f.View.Height,
		View: schedule.Viewport{
			XDays:         f.View.X,
			YPixels:       f.View.Y,
			Zoom:          f.View.Zoom,
			VerticalScale: 1,
		},
	}
	if p.Width <= 0 {
		p.Width = 1280
	}
	if p.Height <= 0 {
		p.Height = 720
	}
	if p.View.Zoom <= 0 {
		p.View.Zoom = 1
	}
	return p, nil
}

// newID generates an id for entities the file leaves anonymous.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Summary renders the project in a stable line-per-entity form, used by
// the inspect command and the loader's golden test.
func (p *Project) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "project: %s\n", p.Name)
	fmt.Fprintf(&b, "epoch: %s\n", p.Epoch.FormatDay(0))
	fmt.Fprintf(&b, "view: %dx%d zoom=%g x=%g y=%g\n",
		p.Width, p.Height, p.View.Zoom, p.View.XDays, p.View.YPixels)

	snap := p.Snapshot
	fmt.Fprintf(&b, "lanes: %d\n", len(snap.Lanes))
	for _, l := range snap.Lanes {
		fmt.Fprintf(&b, "  lane %s %q lines=%d spacing=%g pos=%d sig=%s\n",
			l.ID, l.Name, l.LineCount, l.LineSpacingBase, l.Position, l.Rule())
	}
	fmt.Fprintf(&b, "items: %d\n", len(snap.Items))
	for _, it := range snap.Items {
		fmt.Fprintf(&b, "  item %s %q lane=%s day=%d days=%d line=%d status=%s\n",
			it.ID, it.Title, it.Lane, it.StartDay, it.DurationDays, it.LineIndex, it.Status)
	}
	fmt.Fprintf(&b, "links: %d\n", len(snap.Links))
	for _, l := range snap.Links {
		fmt.Fprintf(&b, "  link %s %s>%s kind=%s\n", l.ID, l.Src, l.Dst, l.Kind)
	}
	return b.String()
}
