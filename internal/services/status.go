package services

import (
	"context"
	"errors"
)

// Status classifies a failure into the user-visible outcome the workflow
// should surface. None of the statuses trigger an automatic retry; they only
// tell the user what kind of action can recover.
type Status string

const (
	StatusOK        Status = "ok"
	StatusRetryable Status = "retryable"
	StatusBlocked   Status = "blocked"
	StatusRejected  Status = "rejected"
	StatusNotFound  Status = "not_found"
	StatusInvalid   Status = "invalid"
	StatusCanceled  Status = "canceled"
)

// FailureStatus maps an error returned by any core component to the status
// the caller should display.
func FailureStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, ErrInvalidSettings), errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return StatusInvalid
	case errors.Is(err, ErrCatalogUnavailable), errors.Is(err, ErrServiceUnavailable):
		return StatusBlocked
	case errors.Is(err, ErrGenerationFailed):
		return StatusRejected
	case errors.Is(err, ErrArtifactNotFound):
		return StatusNotFound
	default:
		return StatusRetryable
	}
}

// StatusMessage renders a one-line explanation suitable for terminal output.
func StatusMessage(err error) string {
	switch FailureStatus(err) {
	case StatusOK:
		return "ok"
	case StatusCanceled:
		return "request canceled"
	case StatusInvalid:
		return "invalid input: " + err.Error()
	case StatusBlocked:
		if errors.Is(err, ErrServiceUnavailable) {
			return "generation service is not healthy; the workflow stays blocked until it recovers"
		}
		return "pattern catalog unavailable; retry selecting the signal family"
	case StatusRejected:
		return "generation rejected: " + GenerationReason(err)
	case StatusNotFound:
		return "artifact not found for this session"
	default:
		return "generation service unreachable; try again"
	}
}
