package driven

import "context"

// CatalogWriter defines the interface for publishing generated playlists.
type CatalogWriter interface {
	// Write replaces the named output atomically.
	Write(ctx context.Context, name string, content []byte) error
}
