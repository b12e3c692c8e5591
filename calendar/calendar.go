/*
calendar.go - Month day lists and Monday-aligned week buckets

PURPOSE:
  Derives the two views the export form needs to populate its period
  selectors: the days of a month and those days grouped into week rows.
  Everything here is pure: same (year, month) in, same slices out.

WEEK POLICY:
  A bucket opens on day 1 and on every Monday after it. Consequences:
  - Leading days before the first Monday form a short bucket
  - Trailing days after the last Sunday form a short bucket
  - A month starting on Monday has a full 7-day first bucket
  Concatenating the buckets in order gives back DaysInMonth exactly.

  Feb 2024 (starts Thursday):
    [1 2 3 4] [5..11] [12..18] [19..25] [26 27 28 29]

INPUT RANGE:
  Months outside 1..12 produce empty results instead of errors. There is
  no other failure path; any int year is a proleptic Gregorian year.

SEE ALSO:
  - options.go: Select options built from these slices
  - saft/form.go: Consumer (week/day option lists)
*/
package calendar

import "time"

// DaysPerWeek is the length of a full bucket.
const DaysPerWeek = 7

// IsLeapYear reports whether year has a February 29.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ValidMonth reports whether month is in 1..12.
func ValidMonth(month time.Month) bool {
	return month >= time.January && month <= time.December
}

// DaysIn returns the number of days in the month, or 0 for an invalid month.
func DaysIn(year int, month time.Month) int {
	if !ValidMonth(month) {
		return 0
	}
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysInMonth returns [1, 2, ..., N] for the given month.
func DaysInMonth(year int, month time.Month) []int {
	n := DaysIn(year, month)
	if n == 0 {
		return nil
	}
	days := make([]int, n)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

// Weekday returns the day of week for a day of the month.
func Weekday(year int, month time.Month, day int) time.Weekday {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()
}

// WeekBuckets partitions the month into Monday-to-Sunday runs. Only the
// first and last runs may be shorter than DaysPerWeek.
func WeekBuckets(year int, month time.Month) [][]int {
	days := DaysInMonth(year, month)
	if len(days) == 0 {
		return nil
	}

	first := Weekday(year, month, 1)
	var buckets [][]int
	var current []int
	for _, day := range days {
		// Weekday advances by one per day; no need to rebuild a time.Time.
		wd := time.Weekday((int(first) + day - 1) % DaysPerWeek)
		if wd == time.Monday && len(current) > 0 {
			buckets = append(buckets, current)
			current = nil
		}
		current = append(current, day)
	}
	return append(buckets, current)
}

// BucketStarting returns the bucket whose first day is day, if any.
func BucketStarting(year int, month time.Month, day int) ([]int, bool) {
	for _, bucket := range WeekBuckets(year, month) {
		if bucket[0] == day {
			return bucket, true
		}
	}
	return nil, false
}
