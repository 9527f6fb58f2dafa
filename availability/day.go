package availability

import (
	"time"
)

// Day is a calendar day counted from 1970-01-01. Hours, minutes and seconds
// never take part in a Day, so two Days compare by date only.
type Day int64

// NullDay is a Day that may be absent, in the manner of sql.NullTime.
type NullDay struct {
	Day   Day
	Valid bool
}

// Calendar strips the time of day from timestamps in a fixed location.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc. A nil loc means the server's local zone.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc}
}

// Location is the zone the calendar reads civil dates in.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// DayOf returns the calendar day t falls on.
func (c Calendar) DayOf(t time.Time) Day {
	y, m, d := t.In(c.Location()).Date()
	// Counting in UTC keeps DST transitions from producing 23 or 25 hour days.
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

// Normalize is DayOf for an optional timestamp.
func (c Calendar) Normalize(t *time.Time) NullDay {
	if t == nil {
		return NullDay{}
	}
	return NullDay{Day: c.DayOf(*t), Valid: true}
}

// StartOf returns midnight of the day t falls on, in the calendar's location.
func (c Calendar) StartOf(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// Time returns midnight of d in the calendar's location.
func (c Calendar) Time(d Day) time.Time {
	u := time.Unix(int64(d)*secondsPerDay, 0).UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, c.Location())
}

const secondsPerDay = 24 * 60 * 60
