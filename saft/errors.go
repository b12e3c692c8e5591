/*
errors.go - Error types for the export form

ERROR CATEGORIES:
  1. Validation errors - a field is missing or inconsistent for the active
     period. Raised before submission, shown next to the field.
  2. Transport errors - the export endpoint refused or could not be
     reached. Shown verbatim as one message; never retried.

USAGE:
  if errors.Is(err, saft.ErrRequired) { ... }

  var verr *saft.ValidationError
  if errors.As(err, &verr) {
      fieldErrors[verr.Field] = verr.Message
  }
*/
package saft

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRequired is returned when the active period needs a field that is empty.
	ErrRequired = errors.New("field required")

	// ErrInvalidValue is returned for malformed or out-of-range values.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNotSelectable is returned when selecting a field the period hides.
	ErrNotSelectable = errors.New("field not selectable")

	// ErrPeriodNotAllowed is returned for WEEK or DAY with transport guides.
	ErrPeriodNotAllowed = errors.New("period not allowed for document type")

	// ErrTransport is the root of every export endpoint failure.
	ErrTransport = errors.New("export request failed")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError ties a failure to the field it is shown next to.
type ValidationError struct {
	Field   Field
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(field Field, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Err: err}
}

// ValidationErrors collects every failing field of one validation pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, v := range e {
		errs[i] = v
	}
	return errs
}

// ByField maps each failing field to its message.
func (e ValidationErrors) ByField() map[Field]string {
	out := make(map[Field]string, len(e))
	for _, v := range e {
		if _, seen := out[v.Field]; !seen {
			out[v.Field] = v.Message
		}
	}
	return out
}

// TransportError carries the message the export endpoint returned.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("export request failed: %s", e.Message)
	}
	return fmt.Sprintf("export request failed (status %d): %s", e.StatusCode, e.Message)
}

func (e *TransportError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrTransport
}

// Is makes every TransportError match ErrTransport, wrapped cause or not.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is a form validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// DisplayMessage returns the single string shown to the user for err.
func DisplayMessage(err error) string {
	var t *TransportError
	if errors.As(err, &t) {
		return t.Message
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}
