/*
submit.go - Export submission coordinator

PURPOSE:
  The one path every export takes, from the HTML form or the JSON API:

    1. Validate the form and build the payload (400 on failure)
    2. Claim the in-flight slot (409 if another export is running)
    3. POST the payload upstream (502 on failure, never retried)
    4. Record the outcome in the export store
    5. Count the outcome in the metrics

IN-FLIGHT GUARD:
  The upstream generates one file at a time and mails it, so the server
  allows a single outstanding submission. A second one is rejected, not
  queued.

SEE ALSO:
  - exportclient/client.go: Upstream transport
  - saft/form.go: Validation and payload transform
*/
package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/warp/saft-export/observability"
	"github.com/warp/saft-export/saft"
)

// ErrSubmissionInFlight is returned while another export is being generated.
var ErrSubmissionInFlight = errors.New("an export is already being generated")

// Exporter sends a payload to the export endpoint.
type Exporter interface {
	Export(ctx context.Context, p saft.Payload) (saft.Notice, error)
}

// submission is the outcome of one accepted export.
type submission struct {
	ID     string
	Notice saft.Notice
}

// submit runs the export for a restored form.
func (h *Handler) submit(ctx context.Context, form *saft.Form) (submission, error) {
	req := form.Request()

	payload, err := form.Payload()
	if err != nil {
		h.metrics.ObserveSubmission(string(req.DocumentType), string(req.Period), observability.OutcomeInvalid)
		return submission{}, err
	}

	if !h.inFlight.CompareAndSwap(false, true) {
		h.metrics.ObserveSubmission(string(payload.DocumentType), string(payload.Period), observability.OutcomeBusy)
		return submission{}, ErrSubmissionInFlight
	}
	defer h.inFlight.Store(false)

	start := time.Now()
	notice, exportErr := h.exporter.Export(ctx, payload)
	h.metrics.ObserveUpstream(time.Since(start))

	id := uuid.NewString()
	status, outcome, message := saft.StatusSucceeded, observability.OutcomeSucceeded, notice.String()
	if exportErr != nil {
		status, outcome, message = saft.StatusFailed, observability.OutcomeFailed, saft.DisplayMessage(exportErr)
	}
	h.metrics.ObserveSubmission(string(payload.DocumentType), string(payload.Period), outcome)

	rec := saft.NewExportRecord(id, payload, status, message, h.now())
	if err := h.store.SaveExport(context.WithoutCancel(ctx), rec); err != nil {
		h.logger.Error("failed to record export", "id", id, "error", err)
	}

	if exportErr != nil {
		h.logger.Warn("export failed",
			"id", id,
			"type", payload.DocumentType,
			"period", payload.Period,
			"error", exportErr,
		)
		return submission{ID: id}, exportErr
	}

	h.logger.Info("export requested",
		"id", id,
		"type", payload.DocumentType,
		"period", payload.Period,
		"year", payload.Year,
		"month", payload.Month,
		"day", payload.Day,
	)
	return submission{ID: id, Notice: notice}, nil
}
