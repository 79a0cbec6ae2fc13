package driven

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-collector/internal/port/driven"
)

const playlistsBucket = "playlists"

// PlaylistCacheBoltDB implements the PlaylistCache port using BoltDB.
// Entries are keyed by subscription URL.
type PlaylistCacheBoltDB struct {
	db *bbolt.DB
}

// NewPlaylistCacheBoltDB creates a new BoltDB-backed playlist cache.
// It initializes the required bucket if it doesn't exist.
func NewPlaylistCacheBoltDB(db *bbolt.DB) (*PlaylistCacheBoltDB, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(playlistsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PlaylistCacheBoltDB{db: db}, nil
}

// playlistDTO is the JSON serialization format for a cached playlist.
type playlistDTO struct {
	URL       string `json:"url"`
	Body      []byte `json:"body"`
	FetchedAt int64  `json:"fetched_at"`
}

// Put stores body as the latest copy of url.
func (c *PlaylistCacheBoltDB) Put(ctx context.Context, url string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(playlistDTO{
		URL:       url,
		Body:      body,
		FetchedAt: time.Now().UnixNano(),
	})
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playlistsBucket))
		if b == nil {
			return errors.New("playlists bucket not found")
		}
		return b.Put([]byte(url), data)
	})
}

// Get returns the cached playlist for url.
func (c *PlaylistCacheBoltDB) Get(ctx context.Context, url string) (driven.CachedPlaylist, error) {
	if err := ctx.Err(); err != nil {
		return driven.CachedPlaylist{}, err
	}

	var dto playlistDTO
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playlistsBucket))
		if b == nil {
			return errors.New("playlists bucket not found")
		}

		data := b.Get([]byte(url))
		if data == nil {
			return driven.ErrCacheMiss
		}
		return json.Unmarshal(data, &dto)
	})
	if err != nil {
		return driven.CachedPlaylist{}, err
	}

	return driven.CachedPlaylist{
		URL:       dto.URL,
		Body:      dto.Body,
		FetchedAt: time.Unix(0, dto.FetchedAt),
	}, nil
}
