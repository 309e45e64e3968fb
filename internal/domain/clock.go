package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock supplies "today" for empty calendars and build timestamps.
var clock = clockwork.NewRealClock()

// SetClock replaces the package time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time of the package clock.
func Now() time.Time {
	return clock.Now()
}

// Today returns the current calendar day of the package clock.
func Today() Date {
	return DateOf(clock.Now())
}
