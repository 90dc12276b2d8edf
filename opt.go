package datekeeper

import (
	"fmt"
	"time"
)

// An Opt is a function that mutates a [Keeper]'s attributes.
// An Opt should return the mutated Keeper or an error if it fails to mutate the Keeper.
// An Opt should be used together with [New].
type Opt func(*Keeper) (*Keeper, error)

// Cap on retention capacity, matching what a 16-bit file counter can
// address.
const maxRetainedFiles = 1<<16 - 1

// Rotate once a day, starting a new file at the given hour and minute.
// The hour must be within [0, 23] and the minute within [0, 59];
// [New] fails otherwise. This is the default, anchored at 00:00.
func WithDailyRotation(hour, minute int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.sched = schedule{kind: rotateDaily, hour: hour, minute: minute}
		return k, nil
	}
}

// Rotate every interval minutes. The interval must be within [1, 59];
// [New] fails otherwise. A minute keeper that rotates away an initial
// file it never wrote to also removes that empty file.
func WithMinuteRotation(interval int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.sched = schedule{kind: rotateMinutely, interval: interval}
		return k, nil
	}
}

// Discard the content of an existing file when opening it, instead of
// appending.
func WithTruncate() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.truncate = true
		return k, nil
	}
}

// The maximum number of this keeper's files kept on disk, the active
// one included. Once the limit is reached each rotation deletes the
// oldest retained file. Zero, the default, retains everything.
func WithMaxFiles(n int) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if n < 0 || n > maxRetainedFiles {
			return nil, fmt.Errorf("invalid max files %d, must be within [0, %d]", n, maxRetainedFiles)
		}
		k.maxFiles = n
		return k, nil
	}
}

// Delete, during construction, existing rotation files older than the
// retention window. Deletion here is best effort; a file that cannot
// be removed does not fail construction. Only meaningful together with
// [WithMaxFiles].
func WithDeleteOnInit() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.deleteOnInit = true
		return k, nil
	}
}

// Compress rotated files with gzip. The retention window tracks and
// deletes the compressed names.
func WithGzip() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.compress = true
		return k, nil
	}
}

// The reference time used to name the initial file and compute the
// first rotation deadline. Defaults to the keeper's clock at
// construction. Mostly useful for tests and replay tooling.
func WithInitialTime(t time.Time) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.initialTime = t
		return k, nil
	}
}

// The clock consulted for records without a timestamp and for forced
// rotations. Defaults to [time.Now].
func WithClock(clock func() time.Time) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if clock == nil {
			return nil, fmt.Errorf("clock must not be nil")
		}
		k.clock = clock
		return k, nil
	}
}

// The filename strategy for rotated files. Defaults to the calculator
// matching the rotation granularity, [DailyCalculator] or
// [MinuteCalculator].
func WithCalculator(calc Calculator) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if calc == nil {
			return nil, fmt.Errorf("calculator must not be nil")
		}
		k.calc = calc
		return k, nil
	}
}

// Hooks observing the keeper's file lifecycle. See [FileEvents].
func WithFileEvents(events FileEvents) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.events = events
		return k, nil
	}
}

// The file and directory primitives the keeper operates through.
// Defaults to the real filesystem.
func WithFilesystem(fsys Filesystem) Opt {
	return func(k *Keeper) (*Keeper, error) {
		if fsys == nil {
			return nil, fmt.Errorf("filesystem must not be nil")
		}
		k.fsys = fsys
		return k, nil
	}
}

// Drop the keeper's mutual exclusion. Only safe when every call into
// the keeper comes from a single goroutine.
func WithoutLocking() Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.mu = nopLocker{}
		return k, nil
	}
}

// Force a rotation on a cron schedule, so an idle keeper still turns
// its file over at the boundary; rotation is otherwise only evaluated
// when a record arrives. The format is the one accepted by
// [github.com/robfig/cron/v3], for example "0 0 * * *" for midnight.
func WithCron(format string) Opt {
	return func(k *Keeper) (*Keeper, error) {
		k.cronFormat = format
		return k, nil
	}
}

// A nopLocker stands in for the keeper's mutex when the caller
// guarantees single-goroutine use.
type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}
