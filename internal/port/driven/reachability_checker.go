package driven

import "context"

// ReachabilityChecker defines the interface for the cheap first-pass liveness check.
// This is a driven port implemented by concrete adapters (e.g., HTTP client).
type ReachabilityChecker interface {
	// Check returns nil if the stream answered with a success status in time.
	Check(ctx context.Context, rawURL string) error
}
