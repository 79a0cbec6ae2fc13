package driven

import (
	"context"

	"github.com/alorle/iptv-collector/internal/probe"
)

// StreamAnalyzer starts media analysis sessions backed by an external tool.
type StreamAnalyzer interface {
	// Start spawns a session. The caller must Close it on every path.
	Start(ctx context.Context) (AnalysisSession, error)
}

// AnalysisSession analyzes one buffer of media bytes.
type AnalysisSession interface {
	// Analyze feeds media to the session and reports the first video stream.
	// If ctx expires first the session is terminated and
	// probe.ErrAnalysisTimeout is returned.
	Analyze(ctx context.Context, media []byte) (probe.VideoInfo, error)

	// Close force-terminates the session if it is still running and releases
	// its resources. It is safe to call more than once.
	Close() error
}
