/*
handlers.go - HTTP API handlers for the SAF-T export form

PURPOSE:
  Exposes the form resolver, the calendar calculator and the export
  submission via a JSON API. The HTML page in form_page.go is a second
  consumer of the same Handler.

ENDPOINTS:
  Form:
    GET    /api/form/defaults               Initial state with options
    POST   /api/form/resolve                Apply one change to a state

  Calendar:
    GET    /api/calendar/{year}/{month}/days   Days of the month
    GET    /api/calendar/{year}/{month}/weeks  Monday-aligned weeks

  Exports:
    POST   /api/exports                     Submit an export
    GET    /api/exports                     History, newest first
    GET    /api/exports/last?type=ALL       Last generated file
    GET    /api/exports/history.xlsx        History as a workbook

ARCHITECTURE:
  Handler struct holds all dependencies:
  - store: Export history
  - exporter: Upstream client
  - metrics, logger
  - now: Clock, injectable for tests

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, with per-field messages
  - 404: No export recorded yet
  - 409: Another export is in flight
  - 502: The export endpoint refused or could not be reached
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - submit.go: Submission coordinator
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/saft-export/calendar"
	"github.com/warp/saft-export/history"
	"github.com/warp/saft-export/observability"
	"github.com/warp/saft-export/saft"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	store     saft.ExportStore
	exporter  Exporter
	metrics   *observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
	yearsBack int

	inFlight atomic.Bool
}

// Dependencies wires a Handler. Store and Exporter are required.
type Dependencies struct {
	Store     saft.ExportStore
	Exporter  Exporter
	Metrics   *observability.Metrics
	Logger    *slog.Logger
	Now       func() time.Time
	YearsBack int
}

// NewHandler creates a new handler, filling in defaults for optional deps.
func NewHandler(deps Dependencies) *Handler {
	h := &Handler{
		store:     deps.Store,
		exporter:  deps.Exporter,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Now,
		yearsBack: deps.YearsBack,
	}
	if h.metrics == nil {
		h.metrics = observability.NewMetrics()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Metrics returns the collectors the handler reports to.
func (h *Handler) Metrics() *observability.Metrics {
	return h.metrics
}

// =============================================================================
// FORM HANDLERS
// =============================================================================

// GetDefaults returns the state a new session starts from.
func (h *Handler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	form := saft.NewForm(saft.DefaultRequest(h.now().Year()))
	writeJSON(w, http.StatusOK, h.formState(form))
}

// ResolveForm restores a submitted state, applies the optional change and
// returns the resolved form.
func (h *Handler) ResolveForm(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	form, err := saft.Restore(req.State)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	if req.Change != nil {
		if err := form.Select(req.Change.Field, req.Change.Value); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, h.formState(form))
}

func (h *Handler) formState(form *saft.Form) FormStateDTO {
	req := form.Request()
	vis := form.Visibility()

	opts := FormOptionsDTO{
		Years:  calendar.YearOptions(h.now().Year(), h.yearsBack),
		Months: []calendar.Option{},
		Weeks:  []calendar.Option{},
		Days:   []calendar.Option{},
	}
	for _, d := range saft.DocumentTypes {
		opts.DocumentTypes = append(opts.DocumentTypes, DocumentTypeDTO{Value: d, Label: d.Label()})
	}
	for _, p := range saft.Periods {
		opts.Periods = append(opts.Periods, PeriodDTO{
			Value:   p,
			Label:   p.Label(),
			Allowed: saft.PeriodAllowed(req.DocumentType, p),
		})
	}
	if vis.Month {
		opts.Months = calendar.MonthOptions()
	}
	if vis.Week {
		opts.Weeks = orEmpty(form.WeekOptions())
	}
	if vis.Day {
		opts.Days = orEmpty(form.DayOptions())
	}

	return FormStateDTO{
		State:        req,
		Visibility:   vis,
		Options:      opts,
		VersionLabel: saft.VersionLabel(req.DocumentType),
	}
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetMonthDays returns the days of a month.
func (h *Handler) GetMonthDays(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DaysResponse{
		Year:    year,
		Month:   int(month),
		Days:    calendar.DaysInMonth(year, month),
		Options: calendar.DayOptions(year, month),
	})
}

// GetMonthWeeks returns the Monday-aligned weeks of a month.
func (h *Handler) GetMonthWeeks(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, WeeksResponse{
		Year:    year,
		Month:   int(month),
		Weeks:   calendar.WeekBuckets(year, month),
		Options: calendar.WeekOptions(year, month),
	})
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	m, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || !calendar.ValidMonth(time.Month(m)) {
		writeError(w, http.StatusBadRequest, "Invalid month (use 1-12)", err)
		return 0, 0, false
	}
	return year, time.Month(m), true
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// SubmitExport validates the state and sends it to the export endpoint.
func (h *Handler) SubmitExport(w http.ResponseWriter, r *http.Request) {
	var req saft.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	form, err := saft.Restore(req)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.submit(r.Context(), form)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ExportResponse{
		ID:      result.ID,
		Message: result.Notice.String(),
		Notice:  result.Notice,
		Mailto:  result.Notice.Mailto(),
	})
}

// ListExports returns the export history, newest first.
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.store.ListExports(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list exports", err)
		return
	}

	dtos := make([]ExportRecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toExportRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLastExport returns the last generated file for a document type.
func (h *Handler) GetLastExport(w http.ResponseWriter, r *http.Request) {
	doc := saft.DocumentAll
	if v := r.URL.Query().Get("type"); v != "" {
		parsed, err := saft.ParseDocumentType(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid document type", err)
			return
		}
		doc = parsed
	}

	rec, err := h.store.LastExport(r.Context(), doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load last export", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "No export generated yet", nil)
		return
	}
	writeJSON(w, http.StatusOK, toExportRecordDTO(*rec))
}

// DownloadHistory streams the full history as an XLSX workbook.
func (h *Handler) DownloadHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListExports(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list exports", err)
		return
	}

	var buf bytes.Buffer
	if err := history.Write(&buf, records); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build workbook", err)
		return
	}

	filename := fmt.Sprintf("saft-exports-%s.xlsx", h.now().Format("20060102"))
	w.Header().Set("Content-Type", history.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to stream workbook", "error", err)
	}
}

// =============================================================================
// HEALTH
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the store answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeValidationError maps resolver errors to 400 with per-field messages.
func writeValidationError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: "Validation failed", Code: "validation", Fields: fieldErrors(err)}
	if len(resp.Fields) == 0 {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case saft.IsValidation(err):
		writeValidationError(w, err)
	case errors.Is(err, ErrSubmissionInFlight):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "in_flight"})
	case errors.Is(err, saft.ErrTransport):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: saft.DisplayMessage(err), Code: "upstream"})
	default:
		writeError(w, http.StatusInternalServerError, "Export failed", err)
	}
}

// fieldErrors flattens a ValidationError or ValidationErrors into a map.
func fieldErrors(err error) map[saft.Field]string {
	var many saft.ValidationErrors
	if errors.As(err, &many) {
		return many.ByField()
	}
	var one *saft.ValidationError
	if errors.As(err, &one) {
		return map[saft.Field]string{one.Field: one.Message}
	}
	return nil
}

func orEmpty(opts []calendar.Option) []calendar.Option {
	if opts == nil {
		return []calendar.Option{}
	}
	return opts
}
