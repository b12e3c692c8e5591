/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures of the form API. The form state itself is
  saft.ExportRequest, whose JSON keys already match the upstream wire
  names; everything around it lives here.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Form:
    FormStateDTO, ResolveRequest, FieldChange, PeriodDTO

  Calendar:
    DaysResponse, WeeksResponse

  Exports:
    ExportResponse, ExportRecordDTO

  Errors:
    ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
  - saft/types.go: ExportRequest and Payload
*/
package api

import (
	"time"

	"github.com/warp/saft-export/calendar"
	"github.com/warp/saft-export/saft"
)

// =============================================================================
// FORM
// =============================================================================

// PeriodDTO is one period radio button.
type PeriodDTO struct {
	Value   saft.Period `json:"value"`
	Label   string      `json:"label"`
	Allowed bool        `json:"allowed"`
}

// DocumentTypeDTO is one document type radio button.
type DocumentTypeDTO struct {
	Value saft.DocumentType `json:"value"`
	Label string            `json:"label"`
}

// FormOptionsDTO holds the option lists of every select.
type FormOptionsDTO struct {
	DocumentTypes []DocumentTypeDTO `json:"documentTypes"`
	Periods       []PeriodDTO       `json:"periods"`
	Years         []calendar.Option `json:"years"`
	Months        []calendar.Option `json:"months"`
	Weeks         []calendar.Option `json:"weeks"`
	Days          []calendar.Option `json:"days"`
}

// FormStateDTO is the resolved form: state, visibility and options.
type FormStateDTO struct {
	State        saft.ExportRequest `json:"state"`
	Visibility   saft.Visibility    `json:"visibility"`
	Options      FormOptionsDTO     `json:"options"`
	VersionLabel string             `json:"versionLabel"`
}

// FieldChange is one "selection changed" event.
type FieldChange struct {
	Field saft.Field `json:"field"`
	Value string     `json:"value"`
}

// ResolveRequest applies an optional change to a submitted state.
type ResolveRequest struct {
	State  saft.ExportRequest `json:"state"`
	Change *FieldChange       `json:"change,omitempty"`
}

// =============================================================================
// CALENDAR
// =============================================================================

// DaysResponse lists the days of a month.
type DaysResponse struct {
	Year    int               `json:"year"`
	Month   int               `json:"month"`
	Days    []int             `json:"days"`
	Options []calendar.Option `json:"options"`
}

// WeeksResponse lists the Monday-aligned weeks of a month.
type WeeksResponse struct {
	Year    int               `json:"year"`
	Month   int               `json:"month"`
	Weeks   [][]int           `json:"weeks"`
	Options []calendar.Option `json:"options"`
}

// =============================================================================
// EXPORTS
// =============================================================================

// ExportResponse is returned when the export endpoint accepted a request.
type ExportResponse struct {
	ID      string      `json:"id"`
	Message string      `json:"message"`
	Notice  saft.Notice `json:"notice"`
	Mailto  string      `json:"mailto,omitempty"`
}

// ExportRecordDTO represents a recorded submission.
type ExportRecordDTO struct {
	ID           string            `json:"id"`
	DocumentType saft.DocumentType `json:"type"`
	Period       saft.Period       `json:"period"`
	Year         string            `json:"year"`
	Month        string            `json:"month,omitempty"`
	Day          string            `json:"day,omitempty"`
	OnlyBilling  bool              `json:"isOnlyBilling"`
	Status       saft.ExportStatus `json:"status"`
	Message      string            `json:"message"`
	VersionLabel string            `json:"versionLabel"`
	CreatedAt    time.Time         `json:"createdAt"`
}

func toExportRecordDTO(rec saft.ExportRecord) ExportRecordDTO {
	return ExportRecordDTO{
		ID:           rec.ID,
		DocumentType: rec.DocumentType,
		Period:       rec.Period,
		Year:         rec.Year,
		Month:        rec.Month,
		Day:          rec.Day,
		OnlyBilling:  rec.OnlyBilling,
		Status:       rec.Status,
		Message:      rec.Message,
		VersionLabel: saft.VersionLabel(rec.DocumentType),
		CreatedAt:    rec.CreatedAt,
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response. Fields carries per-field
// validation messages keyed by the form field name.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Code    string                `json:"code,omitempty"`
	Fields  map[saft.Field]string `json:"fields,omitempty"`
	Details any                   `json:"details,omitempty"`
}
