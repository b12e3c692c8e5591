/*
form.go - Selection dependency resolver for the export form

PURPOSE:
  Decides which sub-period fields are shown, which periods may be picked,
  and keeps the pending request free of stale values. All recomputation
  happens synchronously inside Select, the single "selection changed"
  entry point.

VISIBILITY:
  period | month | week            | day
  -------+-------+-----------------+----------------
  YEAR   |   -   |   -             |   -
  MONTH  |  yes  |   -             |   -
  WEEK   |  yes  | only for ALL    |   -
  DAY    |  yes  |   -             | only for ALL

  GUIDES cannot pick WEEK or DAY at all.

CLEARING RULES:
  - Any change that hides a field clears its value
    (DAY -> YEAR clears month and day, WEEK -> MONTH clears week, ...)
  - Changing year or month clears week and day: their options changed
  - Switching to GUIDES on WEEK/DAY falls back to MONTH; a submitted
    GUIDES request on WEEK/DAY is rejected

SUBMISSION:
  Payload() validates, then folds the week marker into "day" so the wire
  body never has a week key. MONTH sends neither week nor day.

SEE ALSO:
  - calendar/calendar.go: Week buckets and day lists
  - api/form_page.go, api/handlers.go: Consumers
*/
package saft

import (
	"strconv"
	"strings"
	"time"

	"github.com/warp/saft-export/calendar"
)

// =============================================================================
// VISIBILITY & ALLOWED PERIODS
// =============================================================================

// Visibility says which sub-period fields the form shows.
type Visibility struct {
	Month bool `json:"month"`
	Week  bool `json:"week"`
	Day   bool `json:"day"`
}

// Resolve returns the visibility for a document type and period.
func Resolve(doc DocumentType, period Period) Visibility {
	return Visibility{
		Month: period.UsesMonth(),
		Week:  period == PeriodWeek && doc == DocumentAll,
		Day:   period == PeriodDay && doc == DocumentAll,
	}
}

// PeriodAllowed reports whether period can be picked for doc.
func PeriodAllowed(doc DocumentType, period Period) bool {
	if doc == DocumentGuides {
		return period == PeriodYear || period == PeriodMonth
	}
	return true
}

// AllowedPeriods lists the selectable periods for doc, in display order.
func AllowedPeriods(doc DocumentType) []Period {
	var out []Period
	for _, p := range Periods {
		if PeriodAllowed(doc, p) {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// FORM
// =============================================================================

// Form holds one session's pending request. It is not safe for concurrent
// use; each session owns its Form.
type Form struct {
	req ExportRequest
}

// NewForm starts a session from initial, usually DefaultRequest.
func NewForm(initial ExportRequest) *Form {
	f := &Form{req: initial}
	f.clearHidden()
	return f
}

// Restore rebuilds a form from a submitted state. Values for fields the
// resulting period hides, and week/day values that do not belong to the
// chosen month, are dropped instead of rejected. Malformed type, period,
// year or month values are still errors, and so is a period the document
// type does not allow.
func Restore(submitted ExportRequest) (*Form, error) {
	return restore(submitted, false)
}

// Reconcile is Restore for a page round trip, where the type radio may just
// have changed. The type is applied after the period, so GUIDES on WEEK or
// DAY falls back to MONTH instead of failing.
func Reconcile(submitted ExportRequest) (*Form, error) {
	return restore(submitted, true)
}

func restore(submitted ExportRequest, typeLast bool) (*Form, error) {
	f := &Form{req: ExportRequest{
		DocumentType: DocumentAll,
		Period:       PeriodYear,
		OnlyBilling:  submitted.OnlyBilling,
	}}

	steps := []struct {
		field Field
		value string
	}{
		{FieldDocumentType, string(submitted.DocumentType)},
		{FieldPeriod, string(submitted.Period)},
	}
	if typeLast {
		steps[0], steps[1] = steps[1], steps[0]
	}
	for _, s := range steps {
		if s.value == "" {
			continue
		}
		if err := f.Select(s.field, s.value); err != nil {
			return nil, err
		}
	}
	if submitted.Year != "" {
		if err := f.Select(FieldYear, submitted.Year); err != nil {
			return nil, err
		}
	}

	vis := f.Visibility()
	if vis.Month && submitted.Month != "" {
		if err := f.Select(FieldMonth, submitted.Month); err != nil {
			return nil, err
		}
	}
	if vis.Week && submitted.Week != "" {
		_ = f.Select(FieldWeek, submitted.Week) // stale markers are dropped
	}
	if vis.Day && submitted.Day != "" {
		_ = f.Select(FieldDay, submitted.Day)
	}
	return f, nil
}

// Request returns a copy of the pending request.
func (f *Form) Request() ExportRequest {
	return f.req
}

// Visibility returns the current sub-period visibility.
func (f *Form) Visibility() Visibility {
	return Resolve(f.req.DocumentType, f.req.Period)
}

// AllowedPeriods returns the periods selectable for the current document type.
func (f *Form) AllowedPeriods() []Period {
	return AllowedPeriods(f.req.DocumentType)
}

// WeekOptions lists the week choices for the selected month, or nil.
func (f *Form) WeekOptions() []calendar.Option {
	year, month, ok := f.req.yearMonth()
	if !ok {
		return nil
	}
	return calendar.WeekOptions(year, month)
}

// DayOptions lists the day choices for the selected month, or nil.
func (f *Form) DayOptions() []calendar.Option {
	year, month, ok := f.req.yearMonth()
	if !ok {
		return nil
	}
	return calendar.DayOptions(year, month)
}

// Select applies one user selection and recomputes everything downstream.
// An empty value clears month, week or day.
func (f *Form) Select(field Field, value string) error {
	value = strings.TrimSpace(value)

	switch field {
	case FieldDocumentType:
		doc, err := ParseDocumentType(value)
		if err != nil {
			return newValidationError(field, ErrInvalidValue, "Unknown document type %q", value)
		}
		f.req.DocumentType = doc
		if !PeriodAllowed(doc, f.req.Period) {
			f.req.Period = PeriodMonth
		}
		f.clearHidden()
		return nil

	case FieldPeriod:
		period, err := ParsePeriod(value)
		if err != nil {
			return newValidationError(field, ErrInvalidValue, "Unknown period %q", value)
		}
		if !PeriodAllowed(f.req.DocumentType, period) {
			return newValidationError(field, ErrPeriodNotAllowed,
				"%s exports are not available for this document type", period.Label())
		}
		f.req.Period = period
		f.clearHidden()
		return nil

	case FieldYear:
		if !isYear(value) {
			return newValidationError(field, ErrInvalidValue, "Year must have 4 digits")
		}
		if value != f.req.Year {
			f.req.Year = value
			f.req.Week, f.req.Day = "", ""
		}
		return nil

	case FieldMonth:
		if !f.Visibility().Month {
			return newValidationError(field, ErrNotSelectable, "Month is not used for %s exports", f.req.Period.Label())
		}
		month := ""
		if value != "" {
			m, ok := calendar.ParseMarker(value)
			if !ok || !calendar.ValidMonth(time.Month(m)) {
				return newValidationError(field, ErrInvalidValue, "Unknown month %q", value)
			}
			month = calendar.Marker(m)
		}
		if month != f.req.Month {
			f.req.Month = month
			f.req.Week, f.req.Day = "", ""
		}
		return nil

	case FieldWeek:
		if !f.Visibility().Week {
			return newValidationError(field, ErrNotSelectable, "Week is not used for this export")
		}
		if value == "" {
			f.req.Week = ""
			return nil
		}
		marker, err := f.weekMarker(value)
		if err != nil {
			return err
		}
		f.req.Week, f.req.Day = marker, ""
		return nil

	case FieldDay:
		if !f.Visibility().Day {
			return newValidationError(field, ErrNotSelectable, "Day is not used for this export")
		}
		if value == "" {
			f.req.Day = ""
			return nil
		}
		marker, err := f.dayMarker(value)
		if err != nil {
			return err
		}
		f.req.Day, f.req.Week = marker, ""
		return nil

	case FieldOnlyBilling:
		on, err := parseCheckbox(value)
		if err != nil {
			return newValidationError(field, ErrInvalidValue, "Expected true or false")
		}
		f.req.OnlyBilling = on
		return nil
	}

	return newValidationError(field, ErrInvalidValue, "Unknown field")
}

// clearHidden drops values of fields the current visibility hides.
func (f *Form) clearHidden() {
	vis := f.Visibility()
	if !vis.Month {
		f.req.Month = ""
	}
	if !vis.Week {
		f.req.Week = ""
	}
	if !vis.Day {
		f.req.Day = ""
	}
}

func (f *Form) weekMarker(value string) (string, *ValidationError) {
	year, month, ok := f.req.yearMonth()
	if !ok {
		return "", newValidationError(FieldWeek, ErrRequired, "Select a month first")
	}
	day, ok := calendar.ParseMarker(value)
	if !ok {
		return "", newValidationError(FieldWeek, ErrInvalidValue, "Unknown week %q", value)
	}
	if _, ok := calendar.BucketStarting(year, month, day); !ok {
		return "", newValidationError(FieldWeek, ErrInvalidValue,
			"No week of %s %d starts on day %d", month, year, day)
	}
	return calendar.Marker(day), nil
}

func (f *Form) dayMarker(value string) (string, *ValidationError) {
	year, month, ok := f.req.yearMonth()
	if !ok {
		return "", newValidationError(FieldDay, ErrRequired, "Select a month first")
	}
	day, ok := calendar.ParseMarker(value)
	if !ok || day > calendar.DaysIn(year, month) {
		return "", newValidationError(FieldDay, ErrInvalidValue,
			"%s %d has no day %q", month, year, value)
	}
	return calendar.Marker(day), nil
}

// =============================================================================
// VALIDATION & SUBMISSION
// =============================================================================

// Validate checks that every field the active period needs is set and
// consistent. It returns ValidationErrors, or nil.
func (f *Form) Validate() error {
	r := f.req
	var errs ValidationErrors

	if r.DocumentType != DocumentAll && r.DocumentType != DocumentGuides {
		errs = append(errs, newValidationError(FieldDocumentType, ErrRequired, "Select a document type"))
	}
	if _, err := ParsePeriod(string(r.Period)); err != nil {
		errs = append(errs, newValidationError(FieldPeriod, ErrRequired, "Select a period"))
	} else if !PeriodAllowed(r.DocumentType, r.Period) {
		errs = append(errs, newValidationError(FieldPeriod, ErrPeriodNotAllowed,
			"%s exports are not available for this document type", r.Period.Label()))
	}

	switch {
	case r.Year == "":
		errs = append(errs, newValidationError(FieldYear, ErrRequired, "Select a year"))
	case !isYear(r.Year):
		errs = append(errs, newValidationError(FieldYear, ErrInvalidValue, "Year must have 4 digits"))
	}

	vis := f.Visibility()
	if vis.Month {
		switch {
		case r.Month == "":
			errs = append(errs, newValidationError(FieldMonth, ErrRequired, "Select a month"))
		case len(r.Month) != 2:
			errs = append(errs, newValidationError(FieldMonth, ErrInvalidValue, "Month must have 2 digits"))
		default:
			if _, _, ok := r.yearMonth(); !ok && isYear(r.Year) {
				errs = append(errs, newValidationError(FieldMonth, ErrInvalidValue, "Unknown month %q", r.Month))
			}
		}
	} else if r.Month != "" {
		errs = append(errs, newValidationError(FieldMonth, ErrInvalidValue, "Month is not used for %s exports", r.Period.Label()))
	}

	if vis.Week {
		if r.Week == "" {
			errs = append(errs, newValidationError(FieldWeek, ErrRequired, "Select a week"))
		} else if _, _, ok := r.yearMonth(); ok {
			if _, err := f.weekMarker(r.Week); err != nil {
				errs = append(errs, err)
			}
		}
	} else if r.Week != "" {
		errs = append(errs, newValidationError(FieldWeek, ErrInvalidValue, "Week is not used for this export"))
	}

	if vis.Day {
		if r.Day == "" {
			errs = append(errs, newValidationError(FieldDay, ErrRequired, "Select a day"))
		} else if _, _, ok := r.yearMonth(); ok {
			if _, err := f.dayMarker(r.Day); err != nil {
				errs = append(errs, err)
			}
		}
	} else if r.Day != "" {
		errs = append(errs, newValidationError(FieldDay, ErrInvalidValue, "Day is not used for this export"))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Payload validates the form and builds the body for the export endpoint.
func (f *Form) Payload() (Payload, error) {
	if err := f.Validate(); err != nil {
		return Payload{}, err
	}

	r := f.req
	p := Payload{
		DocumentType: r.DocumentType,
		Period:       r.Period,
		Year:         r.Year,
		OnlyBilling:  r.OnlyBilling,
		Web:          true,
	}
	switch r.Period {
	case PeriodMonth:
		p.Month = r.Month
	case PeriodWeek:
		p.Month = r.Month
		p.Day = r.Week
	case PeriodDay:
		p.Month = r.Month
		p.Day = r.Day
	}
	return p, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil && s[0] != '-' && s[0] != '+'
}

// parseCheckbox accepts strconv booleans plus the HTML checkbox value "on".
func parseCheckbox(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
