/*
store.go - Persistence interface for submitted exports

PURPOSE:
  Every submission is recorded with its outcome so the form can offer the
  last generated file per document type and an export history.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, used by the server
  - saft/store/memory.go: In-memory, for tests and -db=""
*/
package saft

import (
	"context"
	"time"
)

// ExportStatus is the outcome of a submission.
type ExportStatus string

const (
	StatusSucceeded ExportStatus = "succeeded"
	StatusFailed    ExportStatus = "failed"
)

// ExportRecord is one submission as sent upstream.
type ExportRecord struct {
	ID           string
	DocumentType DocumentType
	Period       Period
	Year         string
	Month        string
	Day          string
	OnlyBilling  bool
	Status       ExportStatus
	Message      string // notice text on success, display error on failure
	CreatedAt    time.Time
}

// NewExportRecord builds a record from the payload that was sent.
func NewExportRecord(id string, p Payload, status ExportStatus, message string, at time.Time) ExportRecord {
	return ExportRecord{
		ID:           id,
		DocumentType: p.DocumentType,
		Period:       p.Period,
		Year:         p.Year,
		Month:        p.Month,
		Day:          p.Day,
		OnlyBilling:  p.OnlyBilling,
		Status:       status,
		Message:      message,
		CreatedAt:    at.UTC(),
	}
}

// ExportStore persists export records.
type ExportStore interface {
	// SaveExport appends a record. IDs are unique.
	SaveExport(ctx context.Context, rec ExportRecord) error

	// LastExport returns the most recent succeeded export for doc, or nil.
	LastExport(ctx context.Context, doc DocumentType) (*ExportRecord, error)

	// ListExports returns the newest records first; limit <= 0 means all.
	ListExports(ctx context.Context, limit int) ([]ExportRecord, error)
}
