package driven

import (
	"context"
	"time"
)

// MediaSource defines the interface for reading stream content during a deep probe.
type MediaSource interface {
	// Peek starts a streaming request and returns at most n leading bytes.
	// A non-success status is an error.
	Peek(ctx context.Context, rawURL string, n int) ([]byte, error)

	// FetchManifest retrieves a playlist manifest body in full.
	FetchManifest(ctx context.Context, rawURL string) ([]byte, error)

	// Download reads media into memory until limit bytes arrive or the
	// deadline elapses, whichever comes first. Reaching the deadline is not
	// an error: whatever arrived is returned.
	Download(ctx context.Context, rawURL string, limit int, deadline time.Duration) ([]byte, error)
}
