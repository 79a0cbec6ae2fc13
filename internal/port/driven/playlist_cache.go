package driven

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when no cached copy exists for a playlist.
var ErrCacheMiss = errors.New("playlist not cached")

// CachedPlaylist is the last successfully fetched body of a subscription.
type CachedPlaylist struct {
	URL       string
	Body      []byte
	FetchedAt time.Time
}

// PlaylistCache defines the interface for the last-known-good playlist store.
// This is a driven port implemented by concrete adapters (e.g., BoltDB).
type PlaylistCache interface {
	// Get returns the cached playlist for url, or ErrCacheMiss.
	Get(ctx context.Context, url string) (CachedPlaylist, error)

	// Put stores body as the latest copy of url.
	Put(ctx context.Context, url string, body []byte) error
}
