package datekeeper

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/robfig/cron/v3"
)

// A Record is one pre-formatted log entry handed to a [Keeper].
type Record struct {
	// Time decides which file bucket the record lands in. A zero Time
	// is stamped with the keeper's clock.
	Time time.Time
	// Payload is the formatted line, written verbatim.
	Payload []byte
	// Level and Source travel with the record for the benefit of
	// upstream formatters and auditing hooks; the keeper never reads
	// them.
	Level  string
	Source string
}

// A Keeper owns one date-rotated log file: it decides per record
// whether the active file still covers the record's timestamp, turns
// the file over when it does not, and keeps the number of files on
// disk within the configured retention window by deleting the oldest.
// Use [New] to create a Keeper.
type Keeper struct {
	// See [New] for documentation.
	base string
	// See [WithDailyRotation] and [WithMinuteRotation] for documentation.
	sched schedule
	// See [WithCalculator] for documentation.
	calc Calculator
	// See [WithTruncate] for documentation.
	truncate bool
	// See [WithMaxFiles] for documentation.
	maxFiles int
	// See [WithDeleteOnInit] for documentation.
	deleteOnInit bool
	// See [WithGzip] for documentation.
	compress bool
	// See [WithInitialTime] for documentation.
	initialTime time.Time
	// See [WithClock] for documentation.
	clock func() time.Time
	// See [WithFilesystem] for documentation.
	fsys Filesystem
	// See [WithFileEvents] for documentation.
	events FileEvents
	// See [WithCron] for documentation.
	cronFormat string

	c *cron.Cron

	mu       sync.Locker
	current  File
	filename string
	deadline time.Time
	// Set when the initial file of a minute keeper was empty at open;
	// such a file is removed instead of archived if the first record
	// arrives after the deadline has already passed.
	emptyInit bool

	retained *retentionQueue
}

// Make sure the Keeper implements the [io.WriteCloser] interface,
// so that it can be used with the [log] package.
var _ io.WriteCloser = (*Keeper)(nil)

// Create a new [Keeper] writing near the given base path; the time key
// is spliced between the base name's stem and its extension, so base
// "app.log" produces files like "app_2006-01-02.log". The directory
// must already exist.
//
// With no options this rotates daily at midnight, appends to existing
// files, and retains everything. See [Opt] for all available options.
// Invalid options, including an out-of-range rotation anchor, fail
// construction before any file is touched.
//
// A Keeper is registered under its base path for the life of the
// process; a second New against the same base path returns the
// already-registered Keeper and ignores the new options.
//
// Example usage:
//
//	keeper, err := datekeeper.New(
//		"/var/log/app.log",
//		datekeeper.WithDailyRotation(2, 30),
//		datekeeper.WithMaxFiles(7),
//	)
func New(base string, opts ...Opt) (*Keeper, error) {
	if base == "" {
		return nil, fmt.Errorf("failed to create new keeper, caused by empty base path")
	}

	keeper := &Keeper{
		base:  base,
		sched: schedule{kind: rotateDaily},
		clock: time.Now,
		fsys:  osFilesystem{},
		mu:    &sync.Mutex{},
	}
	var err error
	for _, opt := range opts {
		keeper, err = opt(keeper)
		if err != nil {
			return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
		}
	}
	if err := keeper.sched.validate(); err != nil {
		return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
	}
	if keeper.calc == nil {
		keeper.calc = keeper.sched.calculator()
	}

	if existing, ok := lookup(keeper.base); ok {
		return existing, nil
	}
	// Initialize fully before publishing, so a concurrent New on the
	// same base path can never observe a keeper without an open file or
	// deadline.
	if err := keeper.init(); err != nil {
		return nil, fmt.Errorf("failed to create new keeper, caused by %w", err)
	}
	registered, isNew := register(keeper.base, keeper)
	if !isNew {
		keeper.discard()
		return registered, nil
	}
	return keeper, nil
}

// discard releases what init acquired on a keeper that lost the
// registration race and was never published.
func (k *Keeper) discard() {
	if k.c != nil {
		k.c.Stop()
	}
	_ = k.closeCurrent()
}

// init opens the initial file, computes the first deadline, and
// rebuilds retention state from the directory. It runs before the
// keeper is published to any caller, so it needs no locking.
func (k *Keeper) init() error {
	// Parse the cron format before touching any file, so a bad format
	// fails construction without side effects.
	if err := k.setupCron(); err != nil {
		return err
	}

	at := k.initialTime
	if at.IsZero() {
		at = k.clock()
	}

	path := k.calc.CalcFilename(k.base, at)
	file, err := k.openFile(path)
	if err != nil {
		return fmt.Errorf("failed to open initial log file, caused by %w", err)
	}
	k.current = file
	k.filename = path
	k.deadline = k.sched.next(at)

	if k.sched.kind == rotateMinutely {
		if size, err := k.fsys.Size(path); err == nil && size == 0 {
			k.emptyInit = true
		}
	}

	if k.maxFiles > 0 {
		k.retained = newRetentionQueue()
		entries, err := scanArchives(k.fsys, k.calc, k.base)
		if err != nil {
			return fmt.Errorf("failed to reconcile existing log files, caused by %w", err)
		}
		k.reconcileArchives(entries)
	}

	if k.c != nil {
		go k.c.Run()
	}
	return nil
}

func (k *Keeper) setupCron() error {
	if k.cronFormat == "" {
		return nil
	}
	k.c = cron.New()
	if _, err := k.c.AddFunc(k.cronFormat, func() { _ = k.Rotate() }); err != nil {
		return fmt.Errorf("failed to setup cron, caused by %w", err)
	}
	return nil
}

// Write the msg to the current log file, stamped with the keeper's
// clock. Implements [io.Writer] so the Keeper slots under [log.New].
func (k *Keeper) Write(msg []byte) (int, error) {
	return k.WriteRecord(Record{Payload: msg})
}

// WriteRecord writes one record, rotating the active file first if the
// record's timestamp has reached the current deadline. The payload is
// written whether or not a rotation happened. A failed eviction of the
// oldest retained file is reported but never discards the payload, and
// the undeleted file stays tracked for a retry on a later rotation.
func (k *Keeper) WriteRecord(rec Record) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.writeRecord(rec)
}

func (k *Keeper) writeRecord(rec Record) (int, error) {
	at := rec.Time
	if at.IsZero() {
		at = k.clock()
	}

	rotated := false
	previous := k.filename
	wasEmptyInit := k.emptyInit
	if !at.Before(k.deadline) {
		if err := k.rotate(at); err != nil {
			return 0, err
		}
		rotated = true
	}
	k.emptyInit = false

	n, err := k.current.Write(rec.Payload)
	if err != nil {
		return n, fmt.Errorf("failed to write to %s, caused by %w", k.filename, err)
	}

	// Retention bookkeeping runs last so its failures never block the
	// record itself.
	if rotated {
		if err := k.archive(previous, wasEmptyInit); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Rotate to a new file immediately, without waiting for a record to
// cross the deadline. Rotating within the same time bucket reopens the
// bucket's file in place.
func (k *Keeper) Rotate() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	previous := k.filename
	wasEmptyInit := k.emptyInit
	if err := k.rotate(k.clock()); err != nil {
		return err
	}
	if previous != k.filename {
		k.emptyInit = false
	}
	return k.archive(previous, wasEmptyInit)
}

// Flush forces the active file to stable storage. Rotation and
// retention state are untouched.
func (k *Keeper) Flush() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.current.Sync(); err != nil {
		return fmt.Errorf("failed to flush %s, caused by %w", k.filename, err)
	}
	return nil
}

// Filename returns the path of the active file. It takes the same lock
// as the write path, so it never observes a half-completed rotation.
func (k *Keeper) Filename() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.filename
}

// Close releases the active file handle and unregisters the Keeper.
// The file stays on disk. Subsequent writes may cause an error.
func (k *Keeper) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.c != nil {
		k.c.Stop()
	}
	deregister(k.base)
	if err := k.closeCurrent(); err != nil {
		return fmt.Errorf("failed to close %s, caused by %w", k.filename, err)
	}
	return nil
}

// rotate opens the file owning at's bucket and makes it the active
// one, then recomputes the deadline from at itself, so deadlines stay
// monotonic even when record timestamps are replayed. The old handle
// is closed only after the new one opened; a failed open leaves the
// keeper writing where it was.
func (k *Keeper) rotate(at time.Time) error {
	path := k.calc.CalcFilename(k.base, at)
	file, err := k.openFile(path)
	if err != nil {
		return fmt.Errorf("failed to open rotated log file, caused by %w", err)
	}
	// Nothing to act on if the old handle fails to close; the new one
	// is already active.
	_ = k.closeCurrent()
	k.current = file
	k.filename = path
	k.deadline = k.sched.next(at)
	return nil
}

// archive finishes a rotation: the file that was active before it is
// removed outright if it was an untouched initial file, otherwise
// compressed when configured and folded into the retention window.
func (k *Keeper) archive(previous string, wasEmptyInit bool) error {
	if previous == k.filename {
		return nil
	}
	if wasEmptyInit {
		if err := k.removeIfExists(previous); err != nil {
			return fmt.Errorf("failed to remove empty initial log file %s, caused by %w", previous, err)
		}
		return nil
	}

	name := previous
	var compressErr error
	if k.compress {
		compressed, err := k.compressArchive(previous)
		if err != nil {
			compressErr = fmt.Errorf("failed to compress %s, caused by %w", previous, err)
		} else {
			name = compressed
		}
	}
	if k.retained != nil {
		if err := k.retain(name); err != nil {
			return err
		}
	}
	return compressErr
}

// retain folds a freshly rotated-away file into the retention window,
// evicting the oldest files until the window fits again. One slot of
// maxFiles belongs to the active file, so only maxFiles-1 archives are
// kept. On a failed delete the popped name goes back to the front of
// the queue and the error surfaces to the caller; the window then
// exceeds capacity until a later rotation manages to delete it.
func (k *Keeper) retain(name string) error {
	slots := k.maxFiles - 1
	if slots <= 0 {
		if err := k.removeIfExists(name); err != nil {
			return fmt.Errorf("failed to remove rotated log file %s, caused by %w", name, err)
		}
		return nil
	}

	var evictErr error
	for k.retained.length() >= slots {
		oldest, err := k.retained.popOldest()
		if err != nil {
			break
		}
		if err := k.removeIfExists(oldest); err != nil {
			k.retained.restoreOldest(oldest)
			evictErr = fmt.Errorf("failed to remove oldest log file %s, caused by %w", oldest, err)
			break
		}
	}
	k.retained.push(name)
	return evictErr
}

// compressArchive writes a gzip copy of path next to it and removes
// the original, returning the compressed path.
func (k *Keeper) compressArchive(path string) (string, error) {
	src, err := k.fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	target := path + gzipExtension
	dst, err := k.fsys.OpenFile(target, true)
	if err != nil {
		return "", err
	}
	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		_ = gz.Close()
		_ = dst.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	if err := k.fsys.Remove(path); err != nil {
		return "", err
	}
	return target, nil
}

func (k *Keeper) openFile(path string) (File, error) {
	if k.events.BeforeOpen != nil {
		k.events.BeforeOpen(path)
	}
	file, err := k.fsys.OpenFile(path, k.truncate)
	if err != nil {
		return nil, err
	}
	if k.events.AfterOpen != nil {
		k.events.AfterOpen(path, file)
	}
	return file, nil
}

func (k *Keeper) closeCurrent() error {
	if k.current == nil {
		return nil
	}
	if k.events.BeforeClose != nil {
		k.events.BeforeClose(k.filename, k.current)
	}
	err := k.current.Close()
	if k.events.AfterClose != nil {
		k.events.AfterClose(k.filename)
	}
	return err
}

// removeIfExists deletes path, treating an already-absent file as a
// successful delete.
func (k *Keeper) removeIfExists(path string) error {
	if err := k.fsys.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
