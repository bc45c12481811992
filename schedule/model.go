// Package schedule defines the domain snapshot model the stave engine
// renders: lanes (staves), items (notes), dependency links, the viewport,
// and the command union the engine emits back to the host store.
//
// The host application owns every entity in this package. The engine only
// reads snapshots and proposes mutations as commands; it never mutates a
// snapshot and never owns persistent identity.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemID identifies an item. Ids are opaque host-owned strings.
type ItemID string

// LaneID identifies a lane.
type LaneID string

// LinkID identifies a link.
type LinkID string

// Status is the scheduling state of an item.
type Status uint8

const (
	// StatusNotStarted marks an item that has not begun.
	StatusNotStarted Status = iota
	// StatusInProgress marks an item currently being worked.
	StatusInProgress
	// StatusCompleted marks a finished item.
	StatusCompleted
	// StatusBlocked marks an item waiting on something external.
	StatusBlocked
	// StatusCancelled marks an abandoned item.
	StatusCancelled
)

var statusNames = [...]string{
	StatusNotStarted: "not_started",
	StatusInProgress: "in_progress",
	StatusCompleted:  "completed",
	StatusBlocked:    "blocked",
	StatusCancelled:  "cancelled",
}

// String returns the canonical name of the status.
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// ParseStatus maps a canonical status name back to its value.
func ParseStatus(s string) (Status, error) {
	for i, name := range statusNames {
		if name == s {
			return Status(i), nil
		}
	}
	return StatusNotStarted, fmt.Errorf("schedule: unknown status %q", s)
}

// LinkKind is the start/finish pairing of a dependency link.
type LinkKind uint8

const (
	// FinishToStart connects the source's finish to the destination's start.
	// This is the common "then" dependency.
	FinishToStart LinkKind = iota
	// StartToStart connects both starts.
	StartToStart
	// FinishToFinish connects both finishes.
	FinishToFinish
	// StartToFinish connects the source's start to the destination's finish.
	StartToFinish
)

var linkKindNames = [...]string{
	FinishToStart:  "finish_to_start",
	StartToStart:   "start_to_start",
	FinishToFinish: "finish_to_finish",
	StartToFinish:  "start_to_finish",
}

// String returns the canonical name of the link kind.
func (k LinkKind) String() string {
	if int(k) < len(linkKindNames) {
		return linkKindNames[k]
	}
	return "unknown"
}

// ParseLinkKind maps a canonical link kind name back to its value.
func ParseLinkKind(s string) (LinkKind, error) {
	for i, name := range linkKindNames {
		if name == s {
			return LinkKind(i), nil
		}
	}
	return FinishToStart, fmt.Errorf("schedule: unknown link kind %q", s)
}

// CapacityRule limits how many items may start on the same calendar day
// within a repeating measure of days. It is parsed from a time-signature
// style "N/D" string where N is the per-day start capacity and D is the
// measure length in days. The musical look is cosmetic: N is a capacity,
// not a beat count.
type CapacityRule struct {
	// SlotsPerDay is the maximum number of items starting on one day.
	SlotsPerDay uint32
	// DaysPerMeasure is the length of the repeating measure in days.
	DaysPerMeasure uint32
}

// DefaultCapacityRule returns the 4/4 rule used when a lane has none.
func DefaultCapacityRule() CapacityRule {
	return CapacityRule{SlotsPerDay: 4, DaysPerMeasure: 4}
}

// ParseSignature parses an "N/D" signature string into a CapacityRule.
// Both components must be positive integers.
func ParseSignature(s string) (CapacityRule, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return CapacityRule{}, fmt.Errorf("schedule: signature %q is not of the form N/D", s)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 32)
	if err != nil || n == 0 {
		return CapacityRule{}, fmt.Errorf("schedule: signature %q has invalid capacity", s)
	}
	d, err := strconv.ParseUint(strings.TrimSpace(den), 10, 32)
	if err != nil || d == 0 {
		return CapacityRule{}, fmt.Errorf("schedule: signature %q has invalid measure length", s)
	}
	return CapacityRule{SlotsPerDay: uint32(n), DaysPerMeasure: uint32(d)}, nil
}

// String renders the rule back in signature form.
func (r CapacityRule) String() string {
	return fmt.Sprintf("%d/%d", r.SlotsPerDay, r.DaysPerMeasure)
}

// Lane is a horizontal staff holding items at half-line offsets.
type Lane struct {
	ID   LaneID
	Name string

	// LineCount is the number of staff lines drawn for the lane.
	LineCount uint32

	// LineSpacingBase is the unscaled distance between adjacent staff
	// lines, in pixels.
	LineSpacingBase float64

	// Position orders lanes top to bottom.
	Position uint32

	// Capacity is the lane's start-capacity rule; nil means the default
	// 4/4 rule applies.
	Capacity *CapacityRule
}

// Rule returns the lane's capacity rule, falling back to the default.
func (l Lane) Rule() CapacityRule {
	if l.Capacity != nil {
		return *l.Capacity
	}
	return DefaultCapacityRule()
}

// Item is a schedulable unit: a note on a staff with a start day and a
// duration in whole days.
type Item struct {
	ID    ItemID
	Title string

	// StartDay is the item's start as whole days since the project epoch
	// (see timescale.DayIndex).
	StartDay int64

	// DurationDays is the item's length in days, at least 1.
	DurationDays uint32

	Status Status
	Lane   LaneID

	// LineIndex addresses the item's vertical slot in half-line steps:
	// 0 is the lane's top line, odd values sit between lines.
	LineIndex uint32
}

// EndDay returns the first day after the item.
func (it Item) EndDay() int64 {
	return it.StartDay + int64(it.DurationDays)
}

// Link is a directed dependency between two items.
//
// By convention the pair is normalized at creation so the source starts no
// later than the destination; edits after creation may break this and the
// engine does not re-enforce it.
type Link struct {
	ID   LinkID
	Src  ItemID
	Dst  ItemID
	Kind LinkKind
}

// Snapshot is one immutable view of the host's domain state, read by the
// engine once per frame.
type Snapshot struct {
	Lanes []Lane
	Items []Item
	Links []Link

	// Selection is the set of currently selected item ids.
	Selection map[ItemID]struct{}

	// Revision is a host-maintained change counter. The engine reuses
	// derived indexes (spatial grid, capacity census) across frames with
	// the same revision; zero disables reuse.
	Revision uint64
}

// Item returns the item with the given id.
func (s *Snapshot) Item(id ItemID) (Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Lane returns the lane with the given id.
func (s *Snapshot) Lane(id LaneID) (Lane, bool) {
	for _, l := range s.Lanes {
		if l.ID == id {
			return l, true
		}
	}
	return Lane{}, false
}

// Selected reports whether the item id is in the selection set.
func (s *Snapshot) Selected(id ItemID) bool {
	_, ok := s.Selection[id]
	return ok
}
