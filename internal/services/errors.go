package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration      = errors.New("configuration error")
	ErrIdentifierConflict = errors.New("identifier conflict")
	ErrExternalTool       = errors.New("external tool error")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
)

// Exit codes reported by the CLI for each error marker.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitConfiguration      = 2
	ExitIdentifierConflict = 3
	ExitExternalTool       = 4
	ExitNotFound           = 5
	ExitValidation         = 6
)

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		return wrapUnmarked(detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func wrapUnmarked(detail string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	return errors.New(detail)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrIdentifierConflict):
		return ExitIdentifierConflict
	case errors.Is(err, ErrExternalTool):
		return ExitExternalTool
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrValidation):
		return ExitValidation
	default:
		return ExitFailure
	}
}

// Kind returns a stable machine-readable name for the error's marker.
func Kind(err error) string {
	switch ExitCode(err) {
	case ExitOK:
		return ""
	case ExitConfiguration:
		return "configuration"
	case ExitIdentifierConflict:
		return "identifier_conflict"
	case ExitExternalTool:
		return "external_tool"
	case ExitNotFound:
		return "not_found"
	case ExitValidation:
		return "validation"
	default:
		return "internal"
	}
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}
