/*
types.go - Domain types for the SAF-T export request

PURPOSE:
  Names the selections the export form is made of and their wire values.
  The form state (ExportRequest) and the outgoing body (Payload) are kept
  as separate types: the week selector is a UI convenience that never
  reaches the upstream endpoint.

WIRE VALUES:
  DocumentType  ALL     -> "INVOICING_ESTIMATE"
                GUIDES  -> "SHIPPING_TRANSPORT_RETURN_GUIDES"
  Period        YEAR    -> "annual"
                MONTH   -> "monthly"
                WEEK    -> "weekly"
                DAY     -> "daily"

SEE ALSO:
  - form.go: Resolver that mutates an ExportRequest
  - errors.go: Validation and transport errors
*/
package saft

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// DOCUMENT TYPE
// =============================================================================

// DocumentType selects which documents go into the SAF-T file.
type DocumentType string

const (
	DocumentAll    DocumentType = "INVOICING_ESTIMATE"
	DocumentGuides DocumentType = "SHIPPING_TRANSPORT_RETURN_GUIDES"
)

// DocumentTypes lists the selectable document types in display order.
var DocumentTypes = []DocumentType{DocumentAll, DocumentGuides}

// ParseDocumentType accepts the wire value or the short name (ALL, GUIDES).
func ParseDocumentType(s string) (DocumentType, error) {
	switch s {
	case string(DocumentAll), "ALL":
		return DocumentAll, nil
	case string(DocumentGuides), "GUIDES":
		return DocumentGuides, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Label is the radio button text.
func (d DocumentType) Label() string {
	switch d {
	case DocumentAll:
		return "Invoicing and estimates"
	case DocumentGuides:
		return "Shipping, transport and return guides"
	default:
		return string(d)
	}
}

// VersionLabel is the SAF-T schema version shown under the download link.
func VersionLabel(d DocumentType) string {
	switch d {
	case DocumentGuides:
		return "SAF-T (PT) version 1.04_01, transport documents"
	default:
		return "SAF-T (PT) version 1.04_01"
	}
}

// =============================================================================
// PERIOD
// =============================================================================

// Period is the granularity of the export.
type Period string

const (
	PeriodYear  Period = "annual"
	PeriodMonth Period = "monthly"
	PeriodWeek  Period = "weekly"
	PeriodDay   Period = "daily"
)

// Periods lists every period in display order.
var Periods = []Period{PeriodYear, PeriodMonth, PeriodWeek, PeriodDay}

// ParsePeriod accepts the wire value or the short name (YEAR, MONTH, ...).
func ParsePeriod(s string) (Period, error) {
	switch s {
	case string(PeriodYear), "YEAR":
		return PeriodYear, nil
	case string(PeriodMonth), "MONTH":
		return PeriodMonth, nil
	case string(PeriodWeek), "WEEK":
		return PeriodWeek, nil
	case string(PeriodDay), "DAY":
		return PeriodDay, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Label is the radio button text.
func (p Period) Label() string {
	switch p {
	case PeriodYear:
		return "Yearly"
	case PeriodMonth:
		return "Monthly"
	case PeriodWeek:
		return "Weekly"
	case PeriodDay:
		return "Daily"
	default:
		return string(p)
	}
}

// UsesMonth reports whether the period needs a month.
func (p Period) UsesMonth() bool {
	return p == PeriodMonth || p == PeriodWeek || p == PeriodDay
}

// =============================================================================
// EXPORT REQUEST (form state)
// =============================================================================

// Field names a form control. The values match the JSON keys.
type Field string

const (
	FieldDocumentType Field = "type"
	FieldPeriod       Field = "period"
	FieldYear         Field = "year"
	FieldMonth        Field = "month"
	FieldWeek         Field = "week"
	FieldDay          Field = "day"
	FieldOnlyBilling  Field = "isOnlyBilling"
)

// ExportRequest is the pending state of the form. Week and Day are the two
// shapes of the sub-period; at most one of them is set.
type ExportRequest struct {
	DocumentType DocumentType `json:"type"`
	Period       Period       `json:"period"`
	Year         string       `json:"year"`
	Month        string       `json:"month"`
	Week         string       `json:"week"`
	Day          string       `json:"day"`
	OnlyBilling  bool         `json:"isOnlyBilling"`
}

// DefaultRequest is the state a new form session starts from.
func DefaultRequest(year int) ExportRequest {
	return ExportRequest{
		DocumentType: DocumentAll,
		Period:       PeriodYear,
		Year:         strconv.Itoa(year),
		OnlyBilling:  true,
	}
}

// yearMonth returns the parsed year and month, ok=false if either is unset.
func (r ExportRequest) yearMonth() (int, time.Month, bool) {
	year, err := strconv.Atoi(r.Year)
	if err != nil || len(r.Year) != 4 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(r.Month)
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return year, time.Month(m), true
}

// =============================================================================
// PAYLOAD (wire)
// =============================================================================

// Payload is the body POSTed to the export endpoint. There is no week key:
// a week selection travels as its first day in Day.
type Payload struct {
	DocumentType DocumentType `json:"type"`
	Period       Period       `json:"period"`
	Year         string       `json:"year"`
	Month        string       `json:"month,omitempty"`
	Day          string       `json:"day,omitempty"`
	OnlyBilling  bool         `json:"isOnlyBilling"`
	Web          bool         `json:"web"`
}
