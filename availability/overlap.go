package availability

import (
	"time"
)

// Interval is a stay in whole days. Both ends are inclusive.
type Interval struct {
	CheckIn  NullDay
	CheckOut NullDay
}

// Interval normalizes a pair of optional timestamps.
func (c Calendar) Interval(checkIn, checkOut *time.Time) Interval {
	return Interval{CheckIn: c.Normalize(checkIn), CheckOut: c.Normalize(checkOut)}
}

// Span normalizes a pair of timestamps that are both present.
func (c Calendar) Span(checkIn, checkOut time.Time) Interval {
	return c.Interval(&checkIn, &checkOut)
}

// Complete reports whether both ends are present.
func (i Interval) Complete() bool {
	return i.CheckIn.Valid && i.CheckOut.Valid
}

// contains reports whether d lies in [i.CheckIn, i.CheckOut]. An absent end
// never contains anything.
func (i Interval) contains(d NullDay) bool {
	if !d.Valid || !i.Complete() {
		return false
	}
	return i.CheckIn.Day <= d.Day && d.Day <= i.CheckOut.Day
}

// Overlaps reports whether candidate and existing share a calendar day. It
// holds when either end of candidate falls inside existing, or when candidate
// covers existing entirely. Touching ends count: a stay checking out on day D
// collides with one checking in on day D.
//
// A condition that needs an absent end is false, so an incomplete candidate
// only overlaps through the ends it does have.
func Overlaps(candidate, existing Interval) bool {
	if existing.contains(candidate.CheckIn) {
		return true
	}
	if existing.contains(candidate.CheckOut) {
		return true
	}
	return candidate.contains(existing.CheckIn) && candidate.contains(existing.CheckOut)
}

// Nights is the number of days between the two ends, or 0 when either is absent.
func (i Interval) Nights() int64 {
	if !i.Complete() {
		return 0
	}
	n := int64(i.CheckOut.Day - i.CheckIn.Day)
	if n < 0 {
		return -n
	}
	return n
}
