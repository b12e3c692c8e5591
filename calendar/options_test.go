package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/saft-export/calendar"
)

func TestWeekOptions_Labels(t *testing.T) {
	opts := calendar.WeekOptions(2024, time.February)

	require.Len(t, opts, 5)
	assert.Equal(t, calendar.Option{Value: "01", Label: "1 to 4 of February"}, opts[0])
	assert.Equal(t, calendar.Option{Value: "26", Label: "26 to 29 of February"}, opts[4])
}

func TestDayOptions(t *testing.T) {
	opts := calendar.DayOptions(2023, time.February)

	require.Len(t, opts, 28)
	assert.Equal(t, "01", opts[0].Value)
	assert.Equal(t, "1", opts[0].Label)
	assert.Equal(t, "28", opts[27].Value)
}

func TestMonthOptions(t *testing.T) {
	opts := calendar.MonthOptions()

	require.Len(t, opts, 12)
	assert.Equal(t, calendar.Option{Value: "01", Label: "January"}, opts[0])
	assert.Equal(t, calendar.Option{Value: "12", Label: "December"}, opts[11])
}

func TestYearOptions(t *testing.T) {
	opts := calendar.YearOptions(2026, 2)
	assert.Equal(t, []calendar.Option{
		{Value: "2026", Label: "2026"},
		{Value: "2025", Label: "2025"},
		{Value: "2024", Label: "2024"},
	}, opts)

	assert.Len(t, calendar.YearOptions(2026, -1), 1)
}

func TestParseMarker(t *testing.T) {
	n, ok := calendar.ParseMarker("05")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = calendar.ParseMarker("5")
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	for _, bad := range []string{"", "00", "123", "x1", "-1"} {
		_, ok := calendar.ParseMarker(bad)
		assert.False(t, ok, bad)
	}
}
