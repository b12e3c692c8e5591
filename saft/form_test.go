package saft_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/saft-export/saft"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestForm(t *testing.T, selections ...string) *saft.Form {
	t.Helper()
	require.Zero(t, len(selections)%2, "selections come in field/value pairs")

	f := saft.NewForm(saft.DefaultRequest(2024))
	for i := 0; i < len(selections); i += 2 {
		require.NoError(t, f.Select(saft.Field(selections[i]), selections[i+1]))
	}
	return f
}

// =============================================================================
// VISIBILITY
// =============================================================================

func TestResolve_Table(t *testing.T) {
	cases := []struct {
		doc    saft.DocumentType
		period saft.Period
		want   saft.Visibility
	}{
		{saft.DocumentAll, saft.PeriodYear, saft.Visibility{}},
		{saft.DocumentAll, saft.PeriodMonth, saft.Visibility{Month: true}},
		{saft.DocumentAll, saft.PeriodWeek, saft.Visibility{Month: true, Week: true}},
		{saft.DocumentAll, saft.PeriodDay, saft.Visibility{Month: true, Day: true}},
		{saft.DocumentGuides, saft.PeriodYear, saft.Visibility{}},
		{saft.DocumentGuides, saft.PeriodMonth, saft.Visibility{Month: true}},
		{saft.DocumentGuides, saft.PeriodWeek, saft.Visibility{Month: true}},
		{saft.DocumentGuides, saft.PeriodDay, saft.Visibility{Month: true}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, saft.Resolve(c.doc, c.period), "%s/%s", c.doc, c.period)
	}
}

func TestAllowedPeriods_GuidesExcludeWeekAndDay(t *testing.T) {
	assert.Equal(t, []saft.Period{saft.PeriodYear, saft.PeriodMonth}, saft.AllowedPeriods(saft.DocumentGuides))
	assert.Equal(t, saft.Periods, saft.AllowedPeriods(saft.DocumentAll))
}

func TestSelect_GuidesRejectsWeekPeriod(t *testing.T) {
	f := newTestForm(t, "type", "GUIDES")

	err := f.Select(saft.FieldPeriod, "weekly")

	require.Error(t, err)
	assert.ErrorIs(t, err, saft.ErrPeriodNotAllowed)
	assert.Equal(t, saft.PeriodYear, f.Request().Period, "rejected selection leaves state untouched")
}

func TestSelect_SwitchToGuidesFallsBackToMonth(t *testing.T) {
	// GIVEN: a daily export with a day picked
	f := newTestForm(t, "period", "daily", "month", "03", "day", "15")

	// WHEN: switching to transport guides
	require.NoError(t, f.Select(saft.FieldDocumentType, string(saft.DocumentGuides)))

	// THEN: the period falls back to monthly and the day is gone
	req := f.Request()
	assert.Equal(t, saft.PeriodMonth, req.Period)
	assert.Equal(t, "03", req.Month)
	assert.Empty(t, req.Day)
	assert.Equal(t, saft.Visibility{Month: true}, f.Visibility())
}

// =============================================================================
// STATE CLEARING
// =============================================================================

func TestSelect_DayToYearClearsSubPeriod(t *testing.T) {
	f := newTestForm(t, "period", "daily", "month", "03", "day", "15")
	require.Equal(t, "15", f.Request().Day)

	require.NoError(t, f.Select(saft.FieldPeriod, "annual"))

	req := f.Request()
	assert.Empty(t, req.Month)
	assert.Empty(t, req.Week)
	assert.Empty(t, req.Day)
	assert.Equal(t, saft.Visibility{}, f.Visibility())
}

func TestSelect_WeekToMonthClearsWeek(t *testing.T) {
	f := newTestForm(t, "period", "weekly", "month", "03", "week", "04")

	require.NoError(t, f.Select(saft.FieldPeriod, "monthly"))

	assert.Equal(t, "03", f.Request().Month)
	assert.Empty(t, f.Request().Week)
}

func TestSelect_MonthChangeClearsWeekAndDay(t *testing.T) {
	f := newTestForm(t, "period", "weekly", "month", "03", "week", "04")

	require.NoError(t, f.Select(saft.FieldMonth, "04"))

	assert.Equal(t, "04", f.Request().Month)
	assert.Empty(t, f.Request().Week)
}

func TestSelect_YearChangeClearsDay(t *testing.T) {
	f := newTestForm(t, "period", "daily", "month", "02", "day", "29")

	require.NoError(t, f.Select(saft.FieldYear, "2023"))

	assert.Empty(t, f.Request().Day)
	assert.Equal(t, "02", f.Request().Month)
}

func TestSelect_SameMonthKeepsWeek(t *testing.T) {
	f := newTestForm(t, "period", "weekly", "month", "03", "week", "04")

	require.NoError(t, f.Select(saft.FieldMonth, "3"))

	assert.Equal(t, "04", f.Request().Week)
}

// =============================================================================
// SELECTION ERRORS
// =============================================================================

func TestSelect_HiddenFieldRejected(t *testing.T) {
	f := newTestForm(t)

	err := f.Select(saft.FieldMonth, "03")
	assert.ErrorIs(t, err, saft.ErrNotSelectable)

	f = newTestForm(t, "period", "monthly")
	err = f.Select(saft.FieldWeek, "04")
	assert.ErrorIs(t, err, saft.ErrNotSelectable)
}

func TestSelect_WeekMustStartABucket(t *testing.T) {
	f := newTestForm(t, "period", "weekly", "month", "03")

	err := f.Select(saft.FieldWeek, "05")

	var verr *saft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, saft.FieldWeek, verr.Field)
	assert.ErrorIs(t, err, saft.ErrInvalidValue)
}

func TestSelect_WeekNeedsMonth(t *testing.T) {
	f := newTestForm(t, "period", "weekly")

	err := f.Select(saft.FieldWeek, "04")

	assert.ErrorIs(t, err, saft.ErrRequired)
}

func TestSelect_DayOutOfRange(t *testing.T) {
	f := newTestForm(t, "period", "daily", "month", "02")

	assert.ErrorIs(t, f.Select(saft.FieldDay, "30"), saft.ErrInvalidValue)
	assert.NoError(t, f.Select(saft.FieldDay, "29"))
}

func TestSelect_InvalidValues(t *testing.T) {
	f := newTestForm(t, "period", "monthly")

	assert.ErrorIs(t, f.Select(saft.FieldYear, "24"), saft.ErrInvalidValue)
	assert.ErrorIs(t, f.Select(saft.FieldMonth, "13"), saft.ErrInvalidValue)
	assert.ErrorIs(t, f.Select(saft.FieldPeriod, "hourly"), saft.ErrInvalidValue)
	assert.ErrorIs(t, f.Select(saft.FieldDocumentType, "INVOICES"), saft.ErrInvalidValue)
	assert.ErrorIs(t, f.Select(saft.FieldOnlyBilling, "maybe"), saft.ErrInvalidValue)
	assert.ErrorIs(t, f.Select(saft.Field("colour"), "red"), saft.ErrInvalidValue)
}

func TestSelect_OnlyBillingCheckbox(t *testing.T) {
	f := newTestForm(t)
	require.True(t, f.Request().OnlyBilling)

	require.NoError(t, f.Select(saft.FieldOnlyBilling, "false"))
	assert.False(t, f.Request().OnlyBilling)

	require.NoError(t, f.Select(saft.FieldOnlyBilling, "on"))
	assert.True(t, f.Request().OnlyBilling)
}

// =============================================================================
// OPTIONS
// =============================================================================

func TestForm_WeekOptionsFollowMonth(t *testing.T) {
	f := newTestForm(t, "period", "weekly")
	assert.Nil(t, f.WeekOptions(), "no month, no weeks")

	require.NoError(t, f.Select(saft.FieldMonth, "02"))
	opts := f.WeekOptions()
	require.Len(t, opts, 5)
	assert.Equal(t, "1 to 4 of February", opts[0].Label)

	assert.Len(t, f.DayOptions(), 29)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate_DefaultIsValid(t *testing.T) {
	assert.NoError(t, newTestForm(t).Validate())
}

func TestValidate_DayRequired(t *testing.T) {
	f := newTestForm(t, "period", "daily", "month", "03")

	err := f.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, saft.ErrRequired)
	var verrs saft.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, map[saft.Field]string{saft.FieldDay: "Select a day"}, verrs.ByField())
}

func TestValidate_MissingMonthAndWeek(t *testing.T) {
	f := newTestForm(t, "period", "weekly")

	var verrs saft.ValidationErrors
	require.ErrorAs(t, f.Validate(), &verrs)
	byField := verrs.ByField()
	assert.Contains(t, byField, saft.FieldMonth)
	assert.Contains(t, byField, saft.FieldWeek)
}

func TestValidate_InconsistentRequest(t *testing.T) {
	// A request built by hand rather than through Select.
	f := saft.NewForm(saft.ExportRequest{
		DocumentType: saft.DocumentGuides,
		Period:       saft.PeriodDay,
		Year:         "2024",
		Month:        "03",
		Day:          "05",
	})

	err := f.Validate()

	assert.ErrorIs(t, err, saft.ErrPeriodNotAllowed)
	assert.Empty(t, f.Request().Day, "hidden day is cleared on construction")
}

// =============================================================================
// PAYLOAD
// =============================================================================

func TestPayload_WeekBecomesDay(t *testing.T) {
	// GIVEN: ALL, weekly, March 2024
	f := newTestForm(t, "period", "weekly", "month", "03")
	assert.Equal(t, saft.Visibility{Month: true, Week: true}, f.Visibility())

	// WHEN: picking the week starting Monday 11th and submitting
	require.NoError(t, f.Select(saft.FieldWeek, "11"))
	p, err := f.Payload()
	require.NoError(t, err)

	// THEN: the marker travels as "day" and there is no week key
	assert.Equal(t, "11", p.Day)
	assert.Equal(t, "03", p.Month)
	assert.True(t, p.Web)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotContains(t, body, "week")
	assert.Equal(t, "11", body["day"])
	assert.Equal(t, "weekly", body["period"])
	assert.Equal(t, true, body["web"])
}

func TestPayload_MonthHasNoDay(t *testing.T) {
	f := newTestForm(t, "period", "monthly", "month", "07")

	p, err := f.Payload()
	require.NoError(t, err)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"INVOICING_ESTIMATE","period":"monthly","year":"2024","month":"07","isOnlyBilling":true,"web":true}`, string(raw))
}

func TestPayload_YearOnly(t *testing.T) {
	f := newTestForm(t, "type", "GUIDES", "isOnlyBilling", "false")

	p, err := f.Payload()
	require.NoError(t, err)

	assert.Equal(t, saft.Payload{
		DocumentType: saft.DocumentGuides,
		Period:       saft.PeriodYear,
		Year:         "2024",
		OnlyBilling:  false,
		Web:          true,
	}, p)
}

func TestPayload_InvalidBlocksSubmission(t *testing.T) {
	f := newTestForm(t, "period", "daily", "month", "03")

	_, err := f.Payload()

	assert.True(t, saft.IsValidation(err))
}

// =============================================================================
// RESTORE
// =============================================================================

func TestRestore_DropsHiddenValues(t *testing.T) {
	// A browser round trip after switching DAY -> YEAR still carries the
	// old month and day.
	f, err := saft.Restore(saft.ExportRequest{
		DocumentType: saft.DocumentAll,
		Period:       saft.PeriodYear,
		Year:         "2024",
		Month:        "03",
		Day:          "15",
		OnlyBilling:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, saft.ExportRequest{
		DocumentType: saft.DocumentAll,
		Period:       saft.PeriodYear,
		Year:         "2024",
		OnlyBilling:  true,
	}, f.Request())
}

func TestRestore_DropsStaleWeek(t *testing.T) {
	// Week 04 starts a bucket in March 2024 but not in April 2024.
	f, err := saft.Restore(saft.ExportRequest{
		Period: saft.PeriodWeek,
		Year:   "2024",
		Month:  "04",
		Week:   "04",
	})
	require.NoError(t, err)

	assert.Equal(t, "04", f.Request().Month)
	assert.Empty(t, f.Request().Week)
}

func TestRestore_GuidesRejectsDaily(t *testing.T) {
	// GIVEN: a submitted GUIDES request for a single day
	submitted := saft.ExportRequest{
		DocumentType: saft.DocumentGuides,
		Period:       saft.PeriodDay,
		Year:         "2024",
		Month:        "05",
		Day:          "02",
	}

	// WHEN: it is restored
	f, err := saft.Restore(submitted)

	// THEN: it is refused instead of widened to the month
	assert.Nil(t, f)
	assert.ErrorIs(t, err, saft.ErrPeriodNotAllowed)
	var verr *saft.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, saft.FieldPeriod, verr.Field)

	submitted.Period = saft.PeriodWeek
	_, err = saft.Restore(submitted)
	assert.ErrorIs(t, err, saft.ErrPeriodNotAllowed)
}

func TestReconcile_GuidesWithDailyFallsBack(t *testing.T) {
	// The type radio switched to GUIDES while the page was on DAY.
	f, err := saft.Reconcile(saft.ExportRequest{
		DocumentType: saft.DocumentGuides,
		Period:       saft.PeriodDay,
		Year:         "2024",
		Month:        "05",
		Day:          "02",
	})
	require.NoError(t, err)

	assert.Equal(t, saft.PeriodMonth, f.Request().Period)
	assert.Equal(t, "05", f.Request().Month)
	assert.Empty(t, f.Request().Day)
}

func TestRestore_MalformedYear(t *testing.T) {
	_, err := saft.Restore(saft.ExportRequest{Year: "20x4"})

	var verr *saft.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, saft.FieldYear, verr.Field)
}
