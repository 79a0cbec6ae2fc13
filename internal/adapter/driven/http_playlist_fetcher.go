package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dustin/go-humanize"

	"github.com/alorle/iptv-collector/internal/port/driven"
)

// maxPlaylistSize bounds a subscription body held in memory.
const maxPlaylistSize = 64 << 20

// errPlaylistStatus marks a non-200 answer; 4xx answers are not retried.
var errPlaylistStatus = errors.New("playlist source returned non-success status")

// PlaylistFetcherConfig tunes the subscription fetcher.
type PlaylistFetcherConfig struct {
	Timeout    time.Duration
	Attempts   uint
	RetryDelay time.Duration
	UserAgent  string
}

// HTTPPlaylistFetcher implements the PlaylistFetcher port. Failed downloads are
// retried with exponential backoff; when every attempt fails the last cached
// copy is served instead.
type HTTPPlaylistFetcher struct {
	httpClient *http.Client
	cache      driven.PlaylistCache
	attempts   uint
	retryDelay time.Duration
	userAgent  string
	logger     *slog.Logger
}

// NewHTTPPlaylistFetcher creates a fetcher. cache may be nil to disable the fallback.
func NewHTTPPlaylistFetcher(cfg PlaylistFetcherConfig, cache driven.PlaylistCache, logger *slog.Logger) *HTTPPlaylistFetcher {
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	return &HTTPPlaylistFetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// SetHTTPClient allows replacing the default HTTP client.
func (f *HTTPPlaylistFetcher) SetHTTPClient(client *http.Client) {
	f.httpClient = client
}

// Fetch downloads the playlist at url, refreshing the cache on success.
func (f *HTTPPlaylistFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	content, err := retry.DoWithData(
		func() ([]byte, error) { return f.fetchOnce(ctx, url) },
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Debug("retrying playlist fetch", "url", url, "attempt", n+1, "error", err)
		}),
	)
	if err == nil {
		f.logger.Info("fetched playlist", "url", url, "size", humanize.Bytes(uint64(len(content))))
		if f.cache != nil {
			if putErr := f.cache.Put(ctx, url, content); putErr != nil {
				f.logger.Warn("failed to update playlist cache", "url", url, "error", putErr)
			}
		}
		return content, nil
	}

	if f.cache == nil || ctx.Err() != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", url, err)
	}

	cached, cacheErr := f.cache.Get(ctx, url)
	if cacheErr != nil {
		return nil, fmt.Errorf("upstream fetch failed and no cache available: %w", err)
	}

	f.logger.Warn("serving cached playlist",
		"url", url,
		"cached_at", cached.FetchedAt.Format(time.RFC3339),
		"age", humanize.Time(cached.FetchedAt),
		"error", err,
	)
	return cached.Body, nil
}

func (f *HTTPPlaylistFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", errPlaylistStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return content, nil
}
