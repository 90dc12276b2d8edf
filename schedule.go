package datekeeper

import (
	"fmt"
	"time"
)

type granularity int

const (
	rotateDaily granularity = iota
	rotateMinutely
)

// A schedule computes rotation deadlines from an explicit reference
// time, so replayed record timestamps and synthetic test clocks drive
// rotation the same way wall time does.
type schedule struct {
	kind granularity
	// Daily anchor, the hour and minute of day at which a new file
	// starts.
	hour   int
	minute int
	// Minutes between rotations, minute granularity only.
	interval int
}

func (s schedule) validate() error {
	switch s.kind {
	case rotateMinutely:
		if s.interval < 1 || s.interval > 59 {
			return fmt.Errorf("invalid rotation interval %d, must be within [1, 59]", s.interval)
		}
	default:
		if s.hour < 0 || s.hour > 23 {
			return fmt.Errorf("invalid rotation hour %d, must be within [0, 23]", s.hour)
		}
		if s.minute < 0 || s.minute > 59 {
			return fmt.Errorf("invalid rotation minute %d, must be within [0, 59]", s.minute)
		}
	}
	return nil
}

// next returns the first deadline strictly after now. The candidate is
// built from now's calendar date with the anchor fields overwritten
// and seconds zeroed; a candidate that is not in the future is
// advanced by exactly one period.
func (s schedule) next(now time.Time) time.Time {
	var candidate time.Time
	switch s.kind {
	case rotateMinutely:
		candidate = now.Truncate(time.Minute)
	default:
		candidate = time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	}
	if candidate.After(now) {
		return candidate
	}
	return candidate.Add(s.period())
}

func (s schedule) period() time.Duration {
	if s.kind == rotateMinutely {
		return time.Duration(s.interval) * time.Minute
	}
	return 24 * time.Hour
}

// calculator returns the filename strategy matching the schedule's
// granularity, used when the keeper is constructed without an explicit
// one.
func (s schedule) calculator() Calculator {
	if s.kind == rotateMinutely {
		return MinuteCalculator{}
	}
	return DailyCalculator{}
}
