// Datekeeper is a Go package that manages date-based log file rotation.
//
// Note that Datekeeper is not a full-blown logging package. It only receives already-formatted log messages and manages the files they land in, and should be used as such.
// It plays nicely with the standard [log] and [log/slog] packages, or any package that writes through an [io.Writer], like [Logrus].
//
// The core of Datekeeper is the [Keeper] struct, which implements the [io.WriteCloser] interface.
// A Keeper is safe to use from multiple goroutines in the same process, but not across multiple processes.
//
// # The Keeper Struct
//
// A Keeper owns one active log file whose name carries the current time bucket, for example app_2006-01-02.log for a daily Keeper.
// To create a Keeper, use the [New] function with the base path the names derive from:
//
//	import (
//		"log"
//
//		"github.com/calvren/datekeeper"
//	)
//
//	func main() {
//		keeper, err := datekeeper.New("/var/log/app.log")
//		if err != nil {
//			// Handle error
//		}
//		// Instrument standard log with Datekeeper
//		logger := log.New(keeper, "[INFO] ", log.Lmsgprefix|log.LstdFlags)
//
//		logger.Printf("this is a log message")
//	}
//
// Callers that format and timestamp records themselves hand them to [Keeper.WriteRecord] instead; the record's own timestamp then drives rotation, which keeps replayed histories and synthetic test clocks honest.
//
// # Configure the Keeper
//
// Configuration comes in the form of WithXxx functions following the Go options pattern, applied at construction.
// A daily Keeper rotates at a configurable hour and minute of day, a minute Keeper every configurable number of minutes.
// [WithMaxFiles] bounds how many of the Keeper's files stay on disk, the active one included; every rotation past the bound deletes the oldest.
// An example:
//
//	keeper, err := datekeeper.New(
//		"/var/log/app.log",
//		// Start a new file every day at 02:30
//		datekeeper.WithDailyRotation(2, 30),
//		// Keep at most a week of files on disk
//		datekeeper.WithMaxFiles(7),
//		// Clean out older files left over from previous runs
//		datekeeper.WithDeleteOnInit(),
//	)
//
// The same settings can be loaded declaratively from YAML with [LoadConfig] and [Config.New].
//
// # How Does This Work
//
// When a Keeper is created it opens the file for the current time bucket (appending unless [WithTruncate] is set) and computes the next rotation deadline. The directory must already exist.
// If a retention bound is configured, the Keeper then scans the directory once and rebuilds its retention state from the files a previous run left behind: every file matching the Keeper's naming convention is indexed by its time key, the newest files up to the bound are adopted, and with [WithDeleteOnInit] the older remainder is deleted.
// Because the Keeper depends on file names to recognise its own rotations, changing the base path or the calculator orphans the files of previous executions.
//
// Every write first checks the record's timestamp against the deadline. Once the deadline is reached the Keeper opens the file for the record's bucket, retires the previous one into the retention window, and recomputes the deadline from the record's timestamp, so deadlines only ever move forward.
// If deleting the oldest file fails during eviction, the write reports the error but the Keeper keeps the undeleted file at the front of its queue and retries on a later rotation; the bound is a soft ceiling while deletions keep failing.
//
// Rotation is evaluated when records arrive, so an idle Keeper leaves its file open past the boundary. [WithCron] forces rotations on a schedule to cover that, and [Keeper.Rotate] does the same on demand.
//
// How files are named is itself pluggable: the [Calculator] interface turns the base path and a time into a concrete file name and extracts the time key back out of names it produced. [DailyCalculator] and [MinuteCalculator] are the built-in strategies; [WithCalculator] installs custom ones without touching the rotation logic.
//
// [Logrus]: https://github.com/sirupsen/logrus
package datekeeper
