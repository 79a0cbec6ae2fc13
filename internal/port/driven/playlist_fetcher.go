package driven

import "context"

// PlaylistFetcher defines the interface for retrieving subscription playlists.
type PlaylistFetcher interface {
	// Fetch returns the raw playlist body published at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
