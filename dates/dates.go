// ABOUTME: Day-level date math for filters and KPI follow-up buckets
// ABOUTME: All comparisons happen on local calendar days, never raw timestamps
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidBucket is returned for unknown bucket names or buckets a
// predicate does not support.
var ErrInvalidBucket = errors.New("invalid date bucket")

// DayLayout is the format used for custom range bounds.
const DayLayout = "2006-01-02"

// Bucket is a named day range relative to today.
type Bucket string

const (
	BucketNone      Bucket = ""
	BucketToday     Bucket = "today"
	BucketYesterday Bucket = "yesterday"
	BucketTomorrow  Bucket = "tomorrow"
	BucketThisWeek  Bucket = "this-week"
	BucketThisMonth Bucket = "this-month"
	BucketOverdue   Bucket = "overdue"
)

var knownBuckets = map[Bucket]bool{
	BucketToday:     true,
	BucketYesterday: true,
	BucketTomorrow:  true,
	BucketThisWeek:  true,
	BucketThisMonth: true,
	BucketOverdue:   true,
}

// ParseBucket parses a bucket name, accepting a few spellings used by saved links.
func ParseBucket(s string) (Bucket, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	switch normalized {
	case "":
		return BucketNone, nil
	case "thisweek", "week":
		normalized = string(BucketThisWeek)
	case "thismonth", "month":
		normalized = string(BucketThisMonth)
	case "missed":
		normalized = string(BucketOverdue)
	}
	b := Bucket(normalized)
	if !knownBuckets[b] {
		return BucketNone, fmt.Errorf("%w: %q", ErrInvalidBucket, s)
	}
	return b, nil
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayNumber maps t to a DST-independent ordinal of its calendar day in loc.
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// DaysFrom returns the number of calendar days from now's day to t's day,
// negative when t falls before today. now's location is the local zone.
func DaysFrom(t, now time.Time) int {
	loc := now.Location()
	return int(dayNumber(t, loc) - dayNumber(now, loc))
}

// InBucket reports whether t falls in bucket b relative to now.
func InBucket(t time.Time, b Bucket, now time.Time) bool {
	diff := DaysFrom(t, now)
	switch b {
	case BucketToday:
		return diff == 0
	case BucketYesterday:
		return diff == -1
	case BucketTomorrow:
		return diff == 1
	case BucketOverdue:
		return diff < 0
	case BucketThisWeek:
		// ISO week: Monday through Sunday.
		offset := (int(now.Weekday()) + 6) % 7
		return diff >= -offset && diff <= 6-offset
	case BucketThisMonth:
		ty, tm, _ := t.In(now.Location()).Date()
		ny, nm, _ := now.Date()
		return ty == ny && tm == nm
	}
	return false
}

// Window is either a named bucket or an inclusive custom day range. A nil
// bound leaves that side of the range open.
type Window struct {
	Bucket Bucket
	From   *time.Time
	To     *time.Time
}

// IsZero reports whether the window constrains nothing.
func (w Window) IsZero() bool {
	return w.Bucket == BucketNone && w.From == nil && w.To == nil
}

// Contains reports whether t is inside the window. ok=false (no date) never
// matches an active window.
func (w Window) Contains(t time.Time, ok bool, now time.Time) bool {
	if w.IsZero() {
		return true
	}
	if !ok || t.IsZero() {
		return false
	}
	if w.Bucket != BucketNone {
		return InBucket(t, w.Bucket, now)
	}
	loc := now.Location()
	day := dayNumber(t, loc)
	if w.From != nil && day < dayNumber(*w.From, loc) {
		return false
	}
	if w.To != nil && day > dayNumber(*w.To, loc) {
		return false
	}
	return true
}

// Allow returns ErrInvalidBucket when the window uses a bucket outside allowed.
func (w Window) Allow(allowed ...Bucket) error {
	if w.Bucket == BucketNone {
		return nil
	}
	for _, b := range allowed {
		if w.Bucket == b {
			return nil
		}
	}
	return fmt.Errorf("%w: %q not supported here", ErrInvalidBucket, w.Bucket)
}

// String renders the window for signatures and logs.
func (w Window) String() string {
	if w.Bucket != BucketNone {
		return string(w.Bucket)
	}
	if w.From == nil && w.To == nil {
		return ""
	}
	from, to := "", ""
	if w.From != nil {
		from = w.From.Format(DayLayout)
	}
	if w.To != nil {
		to = w.To.Format(DayLayout)
	}
	return from + ".." + to
}

// ParseWindow builds a window from a bucket name or explicit day bounds.
// Bounds use DayLayout and are interpreted in loc. A bucket and bounds
// together are rejected.
func ParseWindow(bucket, from, to string, loc *time.Location) (Window, error) {
	b, err := ParseBucket(bucket)
	if err != nil {
		return Window{}, err
	}
	w := Window{Bucket: b}
	if from != "" {
		t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(from), loc)
		if err != nil {
			return Window{}, fmt.Errorf("invalid range start %q: %w", from, err)
		}
		w.From = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(DayLayout, strings.TrimSpace(to), loc)
		if err != nil {
			return Window{}, fmt.Errorf("invalid range end %q: %w", to, err)
		}
		w.To = &t
	}
	if b != BucketNone && (w.From != nil || w.To != nil) {
		return Window{}, fmt.Errorf("%w: use either a bucket or a range, not both", ErrInvalidBucket)
	}
	return w, nil
}
