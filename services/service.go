package services

import (
	"context"
	"time"

	"hotel-booking/availability"
)

// Config holds the settings shared by the services.
type Config struct {
	// Calendar decides which day a timestamp falls on.
	Calendar availability.Calendar
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// QueryTimeout bounds every storage round trip of one call. Zero disables it.
	QueryTimeout time.Duration
	// SessionTTL is how long a login stays valid. Defaults to 24h.
	SessionTTL time.Duration
}

func (c *Config) withDefaults() Config {
	out := Config{Calendar: availability.NewCalendar(nil), Now: time.Now, SessionTTL: 24 * time.Hour}
	if c == nil {
		return out
	}
	// A zero Calendar reads dates in time.Local, same as the default.
	out.Calendar = c.Calendar
	if c.Now != nil {
		out.Now = c.Now
	}
	if c.QueryTimeout > 0 {
		out.QueryTimeout = c.QueryTimeout
	}
	if c.SessionTTL > 0 {
		out.SessionTTL = c.SessionTTL
	}
	return out
}

func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.QueryTimeout)
}

// today is midnight of the current day in the calendar's location.
func (c Config) today() time.Time {
	return c.Calendar.StartOf(c.Now())
}
