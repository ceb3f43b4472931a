package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Stage failure kinds. Stages wrap these so callers can match with
// errors.Is and surface a specific message per kind.
var (
	ErrMissingInput        = errors.New("missing input")
	ErrBackendUnavailable  = errors.New("backend unavailable")
	ErrServiceTimeout      = errors.New("service timeout")
	ErrUnparseableResponse = errors.New("unparseable model response")
	ErrIncompleteAnalysis  = errors.New("incomplete analysis")
	ErrNotReady            = errors.New("analysis not ready")
	ErrSessionNotFound     = errors.New("session not found")
	ErrAudioConflict       = errors.New("conflicting audio reference")
)

// classify maps a raw client error onto the stage taxonomy, keeping the
// cause text in the message.
func classify(stage string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %v: %w", stage, err, ErrServiceTimeout)
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s: %v: %w", stage, err, ErrMissingInput)
	default:
		return fmt.Errorf("%s: %v: %w", stage, err, ErrBackendUnavailable)
	}
}
