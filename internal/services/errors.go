package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNetwork            = errors.New("network error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
)

// GenerationError carries the reason the generation service gave for
// rejecting a request. It matches ErrGenerationFailed under errors.Is.
type GenerationError struct {
	Reason     string
	StatusCode int
}

func (e *GenerationError) Error() string {
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = "no reason given"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (http %d): %s", ErrGenerationFailed, e.StatusCode, reason)
	}
	return fmt.Sprintf("%s: %s", ErrGenerationFailed, reason)
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// GenerationReason extracts the service-supplied reason from a generation
// failure, or returns the error text when none is attached.
func GenerationReason(err error) string {
	if err == nil {
		return ""
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return strings.TrimSpace(genErr.Reason)
	}
	return err.Error()
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
