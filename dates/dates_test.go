package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// Wednesday 10 Jan 2024, mid-morning local time.
var now = time.Date(2024, 1, 10, 10, 0, 0, 0, ist)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 0, 0, 0, ist)
}

func TestInBucket(t *testing.T) {
	tests := []struct {
		name   string
		t      time.Time
		bucket Bucket
		want   bool
	}{
		{"today", day(2024, 1, 10), BucketToday, true},
		{"tomorrow is not today", day(2024, 1, 11), BucketToday, false},
		{"yesterday", day(2024, 1, 9), BucketYesterday, true},
		{"tomorrow", day(2024, 1, 11), BucketTomorrow, true},
		{"overdue", day(2023, 12, 31), BucketOverdue, true},
		{"today is not overdue", day(2024, 1, 10), BucketOverdue, false},
		{"monday of this week", day(2024, 1, 8), BucketThisWeek, true},
		{"sunday of this week", day(2024, 1, 14), BucketThisWeek, true},
		{"previous sunday", day(2024, 1, 7), BucketThisWeek, false},
		{"next monday", day(2024, 1, 15), BucketThisWeek, false},
		{"end of month", day(2024, 1, 31), BucketThisMonth, true},
		{"next month", day(2024, 2, 1), BucketThisMonth, false},
		{"no bucket never matches", day(2024, 1, 10), BucketNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InBucket(tt.t, tt.bucket, now))
		})
	}
}

func TestInBucketNormalizesUTCToLocalDay(t *testing.T) {
	// 20:00 UTC on the 9th is already the 10th in IST.
	stored := time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)
	assert.True(t, InBucket(stored, BucketToday, now))
	assert.False(t, InBucket(stored, BucketYesterday, now))
}

func TestThisWeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, 1, 14, 9, 0, 0, 0, ist)
	assert.True(t, InBucket(day(2024, 1, 8), BucketThisWeek, sunday))
	assert.False(t, InBucket(day(2024, 1, 15), BucketThisWeek, sunday))
}

func TestWindowContainsRange(t *testing.T) {
	w, err := ParseWindow("", "2024-01-05", "2024-01-10", ist)
	require.NoError(t, err)

	assert.True(t, w.Contains(day(2024, 1, 5), true, now))
	assert.True(t, w.Contains(day(2024, 1, 10), true, now), "range end is inclusive")
	assert.False(t, w.Contains(day(2024, 1, 11), true, now))
	assert.False(t, w.Contains(day(2024, 1, 4), true, now))
	assert.False(t, w.Contains(time.Time{}, false, now), "missing date fails an active window")
}

func TestWindowOpenEndedRange(t *testing.T) {
	w, err := ParseWindow("", "2024-01-05", "", ist)
	require.NoError(t, err)
	assert.True(t, w.Contains(day(2030, 1, 1), true, now))
	assert.False(t, w.Contains(day(2024, 1, 4), true, now))
}

func TestZeroWindowMatchesEverything(t *testing.T) {
	var w Window
	assert.True(t, w.IsZero())
	assert.True(t, w.Contains(time.Time{}, false, now))
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("This_Week")
	require.NoError(t, err)
	assert.Equal(t, BucketThisWeek, b)

	b, err = ParseBucket("missed")
	require.NoError(t, err)
	assert.Equal(t, BucketOverdue, b)

	_, err = ParseBucket("fortnight")
	assert.ErrorIs(t, err, ErrInvalidBucket)
}

func TestParseWindowRejectsBucketAndRange(t *testing.T) {
	_, err := ParseWindow("today", "2024-01-01", "", ist)
	assert.ErrorIs(t, err, ErrInvalidBucket)

	_, err = ParseWindow("", "01/02/2024", "", ist)
	assert.Error(t, err)
}

func TestWindowAllow(t *testing.T) {
	w := Window{Bucket: BucketYesterday}
	assert.NoError(t, w.Allow(BucketToday, BucketYesterday))
	assert.ErrorIs(t, w.Allow(BucketToday, BucketTomorrow), ErrInvalidBucket)
	assert.NoError(t, Window{}.Allow(BucketToday))
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC), ist)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, ist), got)
}
