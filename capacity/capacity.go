// Package capacity implements the start-capacity rule for lanes.
//
// A lane's rule N/D allows at most N items to start on any one day,
// evaluated over repeating measures of D days. The finder is advisory:
// it prefers the desired day, scans its measure in phase order, then
// walks forward a bounded number of measures, and falls back to the
// desired day when everything is saturated. Placement never fails.
package capacity

import "github.com/gogpu/stave/schedule"

// MaxMeasures bounds the forward scan. Past this the schedule is so
// congested that honoring the rule would teleport items off-screen,
// which is worse than a polite overflow.
const MaxMeasures = 64

type laneDay struct {
	lane schedule.LaneID
	day  int64
}

// Census counts item starts per lane and day for one snapshot. Build it
// once per frame (or reuse across frames with the same revision) and
// query it during drags.
type Census struct {
	starts map[laneDay]int
	where  map[schedule.ItemID]laneDay
}

// NewCensus indexes the items' start days.
func NewCensus(items []schedule.Item) *Census {
	c := &Census{
		starts: make(map[laneDay]int, len(items)),
		where:  make(map[schedule.ItemID]laneDay, len(items)),
	}
	for _, it := range items {
		ld := laneDay{lane: it.Lane, day: it.StartDay}
		c.starts[ld]++
		c.where[it.ID] = ld
	}
	return c
}

// Count returns how many items start in the lane on the given day.
// If exclude names an item starting exactly there, it is not counted;
// an item being dragged must not block its own slot. A nil census
// counts zero everywhere.
func (c *Census) Count(lane schedule.LaneID, day int64, exclude schedule.ItemID) int {
	if c == nil {
		return 0
	}
	ld := laneDay{lane: lane, day: day}
	n := c.starts[ld]
	if exclude != "" {
		if at, ok := c.where[exclude]; ok && at == ld {
			n--
		}
	}
	return n
}

// FindDay returns the first day with a free start slot, preferring the
// desired day. Negative desired days are clamped to zero before the
// search.
//
// Scan order: the measure containing the desired day is tried first,
// starting at the desired day's phase and wrapping within the measure;
// then each following measure with the same phase rotation, up to
// MaxMeasures. A saturated scan returns the clamped desired day
// unchanged.
func FindDay(c *Census, rule schedule.CapacityRule, lane schedule.LaneID, desired int64, exclude schedule.ItemID) int64 {
	if desired < 0 {
		desired = 0
	}
	slots := int(rule.SlotsPerDay)
	measure := int64(rule.DaysPerMeasure)
	if slots <= 0 || measure <= 0 {
		return desired
	}

	measureStart := (desired / measure) * measure
	phase := desired - measureStart
	for k := int64(0); k < MaxMeasures; k++ {
		base := measureStart + k*measure
		for i := int64(0); i < measure; i++ {
			day := base + (phase+i)%measure
			if c.Count(lane, day, exclude) < slots {
				return day
			}
		}
	}
	return desired
}
