/*
form_page.go - Server-rendered export form

PURPOSE:
  Serves the form as plain HTML for browsers without the JSON client.
  Every select change re-submits the form with GET, so each page load
  is one resolve round trip:

    GET  /   query -> saft.Reconcile -> render
    POST /   form  -> saft.Restore -> submit -> render message or errors

  Both drop values the new selection hides, which is how the clearing
  rules apply across a round trip. Only Reconcile falls back to MONTH when
  GUIDES meets WEEK or DAY; a posted GUIDES request on those is an error.

SEE ALSO:
  - templates/form.html: Markup
  - submit.go: Shared submission path
*/
package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/warp/saft-export/calendar"
	"github.com/warp/saft-export/saft"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

const (
	shownYearKey  = "shownYear"
	shownMonthKey = "shownMonth"
)

type choice struct {
	Value   string
	Label   string
	Checked bool
	Allowed bool
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Request        saft.ExportRequest
	Visibility     saft.Visibility
	DocumentTypes  []choice
	Periods        []choice
	Years          []selectOption
	Months         []selectOption
	Weeks          []selectOption
	Days           []selectOption
	Errors         map[string]string
	Message        template.HTML
	MessageIsError bool
	VersionLabel   string
	LastExport     *saft.ExportRecord
}

// ShowForm renders the form for the state carried in the query string.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("submitted") == "" {
		h.renderForm(w, r, http.StatusOK, saft.NewForm(saft.DefaultRequest(h.now().Year())), nil, "", false)
		return
	}

	form, err := saft.Reconcile(requestFromValues(q))
	if err != nil {
		h.renderForm(w, r, http.StatusBadRequest, saft.NewForm(saft.DefaultRequest(h.now().Year())), err, "", false)
		return
	}
	h.renderForm(w, r, http.StatusOK, form, nil, "", false)
}

// SubmitForm validates the posted state, submits it and renders the outcome.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	form, err := saft.Restore(requestFromValues(r.PostForm))
	if err != nil {
		h.renderForm(w, r, http.StatusBadRequest, saft.NewForm(saft.DefaultRequest(h.now().Year())), err, "", false)
		return
	}

	result, err := h.submit(r.Context(), form)
	switch {
	case err == nil:
		h.renderForm(w, r, http.StatusOK, form, nil, template.HTML(result.Notice.HTML()), false)
	case saft.IsValidation(err):
		h.renderForm(w, r, http.StatusBadRequest, form, err, "", false)
	case errors.Is(err, ErrSubmissionInFlight):
		h.renderForm(w, r, http.StatusConflict, form, nil, template.HTML(template.HTMLEscapeString(err.Error())), true)
	case errors.Is(err, saft.ErrTransport):
		msg := template.HTMLEscapeString(saft.DisplayMessage(err))
		h.renderForm(w, r, http.StatusBadGateway, form, nil, template.HTML(msg), true)
	default:
		h.renderForm(w, r, http.StatusInternalServerError, form, nil, "Export failed", true)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form *saft.Form, verr error, message template.HTML, isError bool) {
	req := form.Request()
	vis := form.Visibility()

	data := pageData{
		Request:        req,
		Visibility:     vis,
		Errors:         map[string]string{},
		Message:        message,
		MessageIsError: isError,
		VersionLabel:   saft.VersionLabel(req.DocumentType),
	}
	for field, msg := range fieldErrors(verr) {
		data.Errors[string(field)] = msg
	}

	for _, d := range saft.DocumentTypes {
		data.DocumentTypes = append(data.DocumentTypes, choice{
			Value: string(d), Label: d.Label(), Checked: d == req.DocumentType, Allowed: true,
		})
	}
	for _, p := range saft.Periods {
		data.Periods = append(data.Periods, choice{
			Value:   string(p),
			Label:   p.Label(),
			Checked: p == req.Period,
			Allowed: saft.PeriodAllowed(req.DocumentType, p),
		})
	}

	data.Years = selectOptions(calendar.YearOptions(h.now().Year(), h.yearsBack), req.Year)
	if vis.Month {
		data.Months = selectOptions(calendar.MonthOptions(), req.Month)
	}
	if vis.Week {
		data.Weeks = selectOptions(form.WeekOptions(), req.Week)
	}
	if vis.Day {
		data.Days = selectOptions(form.DayOptions(), req.Day)
	}

	last, err := h.store.LastExport(r.Context(), req.DocumentType)
	if err != nil {
		h.logger.Warn("failed to load last export", "type", req.DocumentType, "error", err)
	}
	data.LastExport = last

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render form", "error", err)
	}
}

// requestFromValues reads the form fields. An absent checkbox is false.
// The page echoes the year and month it was rendered with; when the
// submitted ones differ, week and day belong to another month and are
// dropped.
func requestFromValues(v url.Values) saft.ExportRequest {
	billing := v.Get(string(saft.FieldOnlyBilling))
	req := saft.ExportRequest{
		DocumentType: saft.DocumentType(v.Get(string(saft.FieldDocumentType))),
		Period:       saft.Period(v.Get(string(saft.FieldPeriod))),
		Year:         v.Get(string(saft.FieldYear)),
		Month:        v.Get(string(saft.FieldMonth)),
		Week:         v.Get(string(saft.FieldWeek)),
		Day:          v.Get(string(saft.FieldDay)),
		OnlyBilling:  billing != "" && billing != "off" && billing != "false",
	}
	if v.Has(shownYearKey) && (v.Get(shownYearKey) != req.Year || v.Get(shownMonthKey) != req.Month) {
		req.Week, req.Day = "", ""
	}
	return req
}

func selectOptions(opts []calendar.Option, selected string) []selectOption {
	out := make([]selectOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, selectOption{Value: o.Value, Label: o.Label, Selected: o.Value == selected})
	}
	return out
}
