package datekeeper

import (
	"path/filepath"
	"strings"
	"time"
)

// Separator placed between the base name's stem and the time key.
const timeKeySeparator = "_"

const (
	dailyKeyLayout  = "2006-01-02"
	minuteKeyLayout = "2006-01-02-15_04"
)

// A Calculator decides how rotated files are named.
//
// CalcFilename maps the keeper's base path and a point in time to the
// path of the file owning that time bucket. The time key must sit
// between the base name's stem and its extension, and two distinct
// buckets within the calculator's granularity must never map to the
// same path.
//
// ExtractTimeKey is the inverse: given the same base path and a
// candidate file path, it returns the time key CalcFilename embedded,
// or an empty string if the candidate was not produced by this
// calculator for this base path. Keys must be fixed-width and
// zero-padded so that lexicographic order matches chronological order;
// the keeper relies on this when it rebuilds retention state from the
// directory at startup.
//
// Use [WithCalculator] to install a custom implementation.
type Calculator interface {
	CalcFilename(base string, t time.Time) string
	ExtractTimeKey(base, candidate string) string
}

// A DailyCalculator names files with a date suffix,
// for example base "app.log" becomes "app_2006-01-02.log".
type DailyCalculator struct{}

var _ Calculator = DailyCalculator{}

func (DailyCalculator) CalcFilename(base string, t time.Time) string {
	stem, ext := splitExtension(base)
	return stem + timeKeySeparator + t.Format(dailyKeyLayout) + ext
}

func (DailyCalculator) ExtractTimeKey(base, candidate string) string {
	return extractTimeKey(base, candidate, dailyKeyLayout)
}

// A MinuteCalculator names files with a minute-precision suffix,
// for example base "app.log" becomes "app_2006-01-02-15_04.log".
type MinuteCalculator struct{}

var _ Calculator = MinuteCalculator{}

func (MinuteCalculator) CalcFilename(base string, t time.Time) string {
	stem, ext := splitExtension(base)
	return stem + timeKeySeparator + t.Format(minuteKeyLayout) + ext
}

func (MinuteCalculator) ExtractTimeKey(base, candidate string) string {
	return extractTimeKey(base, candidate, minuteKeyLayout)
}

func extractTimeKey(base, candidate, layout string) string {
	stem, ext := splitExtension(base)
	prefix := stem + timeKeySeparator
	if !strings.HasPrefix(candidate, prefix) {
		return ""
	}
	candidateStem, candidateExt := splitExtension(candidate)
	if candidateExt != ext {
		return ""
	}
	key := candidateStem[len(prefix):]
	if len(key) != len(layout) {
		return ""
	}
	if _, err := time.Parse(layout, key); err != nil {
		return ""
	}
	return key
}

// Split a path into everything before the extension and the extension
// itself. Unlike [filepath.Ext], the name of a dotfile does not count
// as an extension.
func splitExtension(path string) (stem, ext string) {
	ext = filepath.Ext(path)
	if ext == filepath.Base(path) {
		ext = ""
	}
	return strings.TrimSuffix(path, ext), ext
}
