package stave

import (
	"github.com/gogpu/stave/scene"
	"github.com/gogpu/stave/schedule"
)

// Theme bundles every color the engine paints with. A Theme is plain
// data: copy it, change fields, and pass the result to [WithTheme].
// The zero Theme paints everything transparent black, which is rarely
// what you want; start from [DefaultTheme].
type Theme struct {
	// Background fills the whole viewport before anything else paints.
	Background scene.Color

	// DayLine is the vertical gridline drawn at each day boundary.
	DayLine scene.Color
	// MeasureLine replaces DayLine at measure boundaries. It is usually
	// darker so the measure rhythm reads at a glance.
	MeasureLine scene.Color
	// GutterLine separates the lane label gutter from the day area.
	GutterLine scene.Color

	// StaffLine draws the horizontal lines of each lane's staff.
	StaffLine scene.Color
	// LaneLabel draws lane names in the left gutter.
	LaneLabel scene.Color

	// ItemBorder outlines items at medium and high detail.
	ItemBorder scene.Color
	// ItemTitle draws item titles at high detail.
	ItemTitle scene.Color
	// Selection outlines selected items on top of their normal border.
	Selection scene.Color

	// Link draws dependency connectors and their arrowheads.
	Link scene.Color

	// Preview is the default color for gesture overlays (drag ghosts,
	// link rubber bands). Overridden by an explicit interact.Params
	// preview color.
	Preview scene.Color

	// StatusFills maps schedule.Status to the item body fill.
	StatusFills [5]scene.Color
	// StatusAccents maps schedule.Status to the accent stripe painted
	// on an item's leading edge at high detail.
	StatusAccents [5]scene.Color
}

// StatusFill returns the body fill for a status. Out-of-range statuses
// fall back to the not-started fill.
func (t Theme) StatusFill(s schedule.Status) scene.Color {
	if int(s) < len(t.StatusFills) {
		return t.StatusFills[s]
	}
	return t.StatusFills[schedule.StatusNotStarted]
}

// StatusAccent returns the leading-edge accent for a status.
// Out-of-range statuses fall back to the not-started accent.
func (t Theme) StatusAccent(s schedule.Status) scene.Color {
	if int(s) < len(t.StatusAccents) {
		return t.StatusAccents[s]
	}
	return t.StatusAccents[schedule.StatusNotStarted]
}

// DefaultTheme returns the stock light theme: warm paper background,
// gray staff ruling, status-tinted items.
func DefaultTheme() Theme {
	return Theme{
		Background:  scene.RGB(253, 252, 247),
		DayLine:     scene.RGB(228, 227, 220),
		MeasureLine: scene.RGB(189, 187, 178),
		GutterLine:  scene.RGB(70, 68, 64),
		StaffLine:   scene.RGB(148, 146, 138),
		LaneLabel:   scene.RGB(40, 38, 36),
		ItemBorder:  scene.RGB(52, 50, 48),
		ItemTitle:   scene.RGB(24, 24, 24),
		Selection:   scene.RGB(38, 110, 216),
		Link:        scene.RGBA(84, 82, 90, 230),
		Preview:     scene.RGBA(38, 110, 216, 200),
		StatusFills: [5]scene.Color{
			schedule.StatusNotStarted: scene.RGB(214, 220, 230),
			schedule.StatusInProgress: scene.RGB(132, 176, 232),
			schedule.StatusCompleted:  scene.RGB(146, 200, 152),
			schedule.StatusBlocked:    scene.RGB(236, 183, 102),
			schedule.StatusCancelled:  scene.RGB(204, 201, 196),
		},
		StatusAccents: [5]scene.Color{
			schedule.StatusNotStarted: scene.RGB(122, 136, 158),
			schedule.StatusInProgress: scene.RGB(44, 96, 168),
			schedule.StatusCompleted:  scene.RGB(52, 124, 60),
			schedule.StatusBlocked:    scene.RGB(176, 112, 24),
			schedule.StatusCancelled:  scene.RGB(128, 125, 120),
		},
	}
}
