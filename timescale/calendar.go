package timescale

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Epoch anchors day indexes to the calendar. The engine core never
// touches calendar time; hosts convert dates to day indexes at the
// boundary and back when presenting.
type Epoch struct {
	t time.Time
}

// NewEpoch returns an epoch anchored at the UTC midnight of t's date.
func NewEpoch(t time.Time) Epoch {
	return Epoch{t: t.UTC().Truncate(day)}
}

// DefaultEpoch returns the conventional anchor, 2020-01-01 UTC.
func DefaultEpoch() Epoch {
	return Epoch{t: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// Time returns the anchor instant.
func (e Epoch) Time() time.Time {
	if e.t.IsZero() {
		return DefaultEpoch().t
	}
	return e.t
}

// DayIndex returns the whole number of days from the epoch to t's UTC
// date. Instants before the epoch yield negative indexes.
func (e Epoch) DayIndex(t time.Time) int64 {
	// Both sides are UTC midnights, so the difference is an exact
	// multiple of 24h and integer division is safe.
	return int64(t.UTC().Truncate(day).Sub(e.Time()) / day)
}

// TimeForDay returns the UTC midnight of the given day index.
func (e Epoch) TimeForDay(dayIndex int64) time.Time {
	return e.Time().Add(time.Duration(dayIndex) * day)
}

// ParseDay converts an ISO date string ("2026-03-01") to a day index.
func (e Epoch) ParseDay(s string) (int64, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, fmt.Errorf("timescale: invalid date %q: %w", s, err)
	}
	return e.DayIndex(t), nil
}

// FormatDay renders a day index as an ISO date string.
func (e Epoch) FormatDay(dayIndex int64) string {
	return e.TimeForDay(dayIndex).Format(time.DateOnly)
}
