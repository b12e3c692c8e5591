package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// SELECT OPTIONS
// =============================================================================

// Option is one entry of a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Marker formats a day of month the way the form submits it ("05").
func Marker(day int) string {
	return fmt.Sprintf("%02d", day)
}

// ParseMarker parses a 1- or 2-digit day/month marker.
func ParseMarker(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// DayOptions lists every day of the month, labelled by its number.
func DayOptions(year int, month time.Month) []Option {
	days := DaysInMonth(year, month)
	opts := make([]Option, len(days))
	for i, d := range days {
		opts[i] = Option{Value: Marker(d), Label: strconv.Itoa(d)}
	}
	return opts
}

// WeekOptions lists the week buckets. The value is the first day of the
// bucket; the label reads "5 to 11 of February".
func WeekOptions(year int, month time.Month) []Option {
	buckets := WeekBuckets(year, month)
	opts := make([]Option, len(buckets))
	for i, b := range buckets {
		opts[i] = Option{
			Value: Marker(b[0]),
			Label: fmt.Sprintf("%d to %d of %s", b[0], b[len(b)-1], month),
		}
	}
	return opts
}

// MonthOptions lists "01".."12" with English month names.
func MonthOptions() []Option {
	opts := make([]Option, 0, 12)
	for m := time.January; m <= time.December; m++ {
		opts = append(opts, Option{Value: Marker(int(m)), Label: m.String()})
	}
	return opts
}

// YearOptions lists the current year followed by back previous years.
func YearOptions(current, back int) []Option {
	if back < 0 {
		back = 0
	}
	opts := make([]Option, 0, back+1)
	for y := current; y >= current-back; y-- {
		s := strconv.Itoa(y)
		opts = append(opts, Option{Value: s, Label: s})
	}
	return opts
}
