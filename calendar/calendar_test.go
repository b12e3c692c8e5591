package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/saft-export/calendar"
)

// =============================================================================
// DAYS IN MONTH
// =============================================================================

func TestDaysInMonth_February(t *testing.T) {
	cases := map[int]int{
		2023: 28,
		2024: 29,
		1900: 28,
		2000: 29,
	}
	for year, want := range cases {
		days := calendar.DaysInMonth(year, time.February)
		assert.Len(t, days, want, "February %d", year)
	}
}

func TestDaysInMonth_ConsecutiveFromOne(t *testing.T) {
	for year := 1899; year <= 2101; year++ {
		for m := time.January; m <= time.December; m++ {
			days := calendar.DaysInMonth(year, m)
			require.NotEmpty(t, days)

			last := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
			require.Len(t, days, last, "%d-%02d", year, m)
			for i, d := range days {
				require.Equal(t, i+1, d, "%d-%02d index %d", year, m, i)
			}
		}
	}
}

func TestDaysInMonth_InvalidMonth(t *testing.T) {
	assert.Nil(t, calendar.DaysInMonth(2024, 0))
	assert.Nil(t, calendar.DaysInMonth(2024, 13))
	assert.Nil(t, calendar.WeekBuckets(2024, 13))
	assert.Equal(t, 0, calendar.DaysIn(2024, 0))
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, calendar.IsLeapYear(2024))
	assert.True(t, calendar.IsLeapYear(2000))
	assert.False(t, calendar.IsLeapYear(1900))
	assert.False(t, calendar.IsLeapYear(2023))
}

// =============================================================================
// WEEK BUCKETS
// =============================================================================

func TestWeekBuckets_February2024(t *testing.T) {
	// GIVEN: Feb 1 2024 is a Thursday
	// THEN: the leading short bucket runs Thursday..Sunday
	buckets := calendar.WeekBuckets(2024, time.February)

	require.Len(t, buckets, 5)
	assert.Equal(t, []int{1, 2, 3, 4}, buckets[0])
	assert.Equal(t, []int{5, 6, 7, 8, 9, 10, 11}, buckets[1])
	assert.Equal(t, []int{26, 27, 28, 29}, buckets[4])
}

func TestWeekBuckets_MonthStartingOnMonday(t *testing.T) {
	// January 2024 starts on a Monday: no separate short leading bucket.
	buckets := calendar.WeekBuckets(2024, time.January)

	require.NotEmpty(t, buckets)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, buckets[0])
	assert.Equal(t, []int{29, 30, 31}, buckets[len(buckets)-1])
}

func TestWeekBuckets_MonthStartingOnSunday(t *testing.T) {
	// September 2024 starts on a Sunday: the first bucket is a single day.
	buckets := calendar.WeekBuckets(2024, time.September)

	require.NotEmpty(t, buckets)
	assert.Equal(t, []int{1}, buckets[0])
	assert.Equal(t, []int{30}, buckets[len(buckets)-1])
}

func TestWeekBuckets_December(t *testing.T) {
	// December 2025 starts Monday and ends Wednesday.
	buckets := calendar.WeekBuckets(2025, time.December)

	require.Len(t, buckets, 5)
	assert.Equal(t, []int{29, 30, 31}, buckets[4])
}

func TestWeekBuckets_Properties(t *testing.T) {
	for year := 1899; year <= 2101; year++ {
		for m := time.January; m <= time.December; m++ {
			buckets := calendar.WeekBuckets(year, m)
			require.NotEmpty(t, buckets)

			var flat []int
			for i, b := range buckets {
				require.NotEmpty(t, b, "%d-%02d bucket %d empty", year, m, i)
				if i > 0 && i < len(buckets)-1 {
					require.Len(t, b, calendar.DaysPerWeek, "%d-%02d inner bucket %d", year, m, i)
				}
				require.LessOrEqual(t, len(b), calendar.DaysPerWeek)

				// Every bucket after the first starts on a Monday.
				if i > 0 {
					require.Equal(t, time.Monday, calendar.Weekday(year, m, b[0]))
				}
				// Every bucket but the last ends on a Sunday.
				if i < len(buckets)-1 {
					require.Equal(t, time.Sunday, calendar.Weekday(year, m, b[len(b)-1]))
				}
				flat = append(flat, b...)
			}
			require.Equal(t, calendar.DaysInMonth(year, m), flat, "%d-%02d", year, m)
		}
	}
}

func TestWeekBuckets_Deterministic(t *testing.T) {
	a := calendar.WeekBuckets(2024, time.March)
	b := calendar.WeekBuckets(2024, time.March)
	assert.Equal(t, a, b)
}

func TestBucketStarting(t *testing.T) {
	bucket, ok := calendar.BucketStarting(2024, time.March, 4)
	require.True(t, ok)
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10}, bucket)

	_, ok = calendar.BucketStarting(2024, time.March, 5)
	assert.False(t, ok, "5 March 2024 is a Tuesday, not a bucket start")
}
