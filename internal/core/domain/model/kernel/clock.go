package kernel

import "time"

// Clock is the source of the current time for time based domain rules.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC, truncated to the microsecond
// precision of a Postgres timestamp so values survive a round trip unchanged.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
