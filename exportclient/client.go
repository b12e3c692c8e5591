/*
client.go - HTTP client for the upstream SAF-T export endpoint

PURPOSE:
  Sends one export request and turns the reply into either a Notice or a
  *saft.TransportError. The client never retries: a failed export is
  reported and the user decides whether to submit again.

WIRE FORMAT:
  POST {baseURL}/export-saft
    {"type":"INVOICING_ESTIMATE","period":"weekly","year":"2024",
     "month":"03","day":"11","isOnlyBilling":true,"web":true}

  2xx  {"message":"Report ready:john@example.com"}
  else {"errors":[{"error":"Invalid year"}]}

SEE ALSO:
  - saft/notice.go: Message parsing
  - saft/errors.go: TransportError
*/
package exportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warp/saft-export/saft"
)

// DefaultTimeout bounds one export request when none is configured.
const DefaultTimeout = 30 * time.Second

// ExportPath is the upstream route, relative to the base URL.
const ExportPath = "/export-saft"

// Client submits export payloads to the upstream service.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for baseURL. A zero timeout uses DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type successResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Errors []struct {
		Error string `json:"error"`
	} `json:"errors"`
}

// Export posts the payload and parses the completion message.
func (c *Client) Export(ctx context.Context, p saft.Payload) (saft.Notice, error) {
	p.Web = true

	body, err := json.Marshal(p)
	if err != nil {
		return saft.Notice{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ExportPath, bytes.NewReader(body))
	if err != nil {
		return saft.Notice{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return saft.Notice{}, &saft.TransportError{
			Message: "The export service could not be reached",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return saft.Notice{}, &saft.TransportError{
			StatusCode: resp.StatusCode,
			Message:    "The export service response could not be read",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return saft.Notice{}, &saft.TransportError{
			StatusCode: resp.StatusCode,
			Message:    failureMessage(resp.StatusCode, raw),
		}
	}

	var result successResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return saft.Notice{}, &saft.TransportError{
			StatusCode: resp.StatusCode,
			Message:    "The export service returned an unreadable response",
			Err:        err,
		}
	}

	return saft.ParseNotice(result.Message), nil
}

// failureMessage returns the first error descriptor verbatim, or a generic
// text naming the status when the body carries none.
func failureMessage(status int, raw []byte) string {
	var result errorResponse
	if err := json.Unmarshal(raw, &result); err == nil {
		if len(result.Errors) > 0 && result.Errors[0].Error != "" {
			return result.Errors[0].Error
		}
	}
	return fmt.Sprintf("Export failed with status %d %s", status, http.StatusText(status))
}
