package logsync

import "time"

// Poll cadence: a short burst follows any poll that reported new content, then
// the loop settles back to the long interval.
const (
	ShortInterval = 50 * time.Millisecond
	LongInterval  = 400 * time.Millisecond
	burstTicks    = 10
)

// Schedule decides the delay before the next poll tick. It is deterministic
// state, advanced once per completed poll; the actual timer lives with the
// caller so one polling task is ever in flight.
type Schedule struct {
	short     time.Duration
	long      time.Duration
	remaining int
}

// NewSchedule builds a schedule with the given intervals. Non-positive values
// fall back to the defaults.
func NewSchedule(short, long time.Duration) *Schedule {
	if short <= 0 {
		short = ShortInterval
	}
	if long <= 0 {
		long = LongInterval
	}
	return &Schedule{short: short, long: long}
}

// Next records the outcome of a completed poll and returns the delay before
// the following tick. advanced means the poll reported new content (version
// advanced or guid changed): it refills the burst countdown to its maximum,
// while every quiet tick decrements it. Failed polls always reschedule at the
// long interval; the loop never stops.
func (s *Schedule) Next(advanced, failed bool) time.Duration {
	if failed {
		s.remaining = 0
		return s.long
	}
	if advanced {
		s.remaining = burstTicks
	} else if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		return s.short
	}
	return s.long
}

// Bursting reports whether the schedule is currently in the short-interval
// window, for status display.
func (s *Schedule) Bursting() bool {
	return s.remaining > 0
}
