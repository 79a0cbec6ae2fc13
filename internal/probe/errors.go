package probe

import (
	"context"
	"errors"
)

// Probe failures. Each one means "not valid right now": the candidate is
// dropped, nothing is retried and nothing reaches the pipeline caller.
var (
	ErrUnexpectedStatus  = errors.New("stream responded with a non-success status")
	ErrNoSegment         = errors.New("manifest has no media segment")
	ErrEmptyDownload     = errors.New("no media bytes downloaded")
	ErrAnalysisTimeout   = errors.New("stream analysis exceeded its deadline")
	ErrAnalysisFailed    = errors.New("stream analysis failed")
	ErrNoStreams         = errors.New("analysis reported no video stream")
	ErrInvalidDimensions = errors.New("video dimensions must be positive")
	ErrNoProbeData       = errors.New("no probe data available")
	ErrEmptyURL          = errors.New("probe url cannot be empty")
	ErrInvalidTimestamp  = errors.New("probe timestamp must not be zero")
)

// Reason maps a probe error to a short, bounded label for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, ErrNoSegment):
		return "empty_manifest"
	case errors.Is(err, ErrEmptyDownload):
		return "empty_download"
	case errors.Is(err, ErrAnalysisTimeout):
		return "analysis_timeout"
	case errors.Is(err, ErrNoStreams):
		return "no_streams"
	case errors.Is(err, ErrInvalidDimensions):
		return "invalid_dimensions"
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network"
	}
}
