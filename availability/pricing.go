package availability

import (
	"time"
)

// DayCount returns the whole days between checkIn and checkOut, ignoring the
// time of day and the order of the arguments.
func (c Calendar) DayCount(checkIn, checkOut time.Time) int64 {
	return c.Span(checkIn, checkOut).Nights()
}

// Cost prices a stay at pricePerNight for every day between checkIn and
// checkOut. Same-day stays cost nothing; rejecting them is up to the caller.
func (c Calendar) Cost(pricePerNight int64, checkIn, checkOut time.Time) int64 {
	return pricePerNight * c.DayCount(checkIn, checkOut)
}
