package driven

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/alorle/iptv-collector/internal/probe"
)

// DefaultUserAgent is sent with every deep-probe request.
const DefaultUserAgent = "iPhone"

// maxManifestSize bounds a manifest body held in memory.
const maxManifestSize = 4 << 20

// HTTPMediaSource implements the MediaSource port over HTTP.
// Every request carries the configured User-Agent and a Referer pointing at
// the origin of the requested URL.
type HTTPMediaSource struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPMediaSource creates a media source. requestTimeout bounds Peek and
// FetchManifest; Download uses its own deadline.
func NewHTTPMediaSource(requestTimeout time.Duration, userAgent string) *HTTPMediaSource {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPMediaSource{
		httpClient: &http.Client{Timeout: requestTimeout},
		userAgent:  userAgent,
	}
}

// SetHTTPClient allows replacing the default HTTP client.
func (s *HTTPMediaSource) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Peek returns at most n leading bytes of the response body.
func (s *HTTPMediaSource) Peek(ctx context.Context, rawURL string, n int) ([]byte, error) {
	resp, err := s.get(ctx, s.httpClient, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(resp.Body, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read stream head: %w", err)
	}
	return buf[:read], nil
}

// FetchManifest returns the whole manifest body.
func (s *HTTPMediaSource) FetchManifest(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := s.get(ctx, s.httpClient, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return body, nil
}

// Download buffers media until limit bytes arrive or deadline elapses.
// A slow server that never reaches limit still returns what it sent.
func (s *HTTPMediaSource) Download(ctx context.Context, rawURL string, limit int, deadline time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	// The download deadline replaces the client timeout for this request.
	client := *s.httpClient
	client.Timeout = 0

	resp, err := s.get(ctx, &client, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = io.Copy(&buf, io.LimitReader(resp.Body, int64(limit)))
	if err != nil && !isDeadline(ctx, err) {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *HTTPMediaSource) get(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", refererFor(req.URL))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", probe.ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp, nil
}

func refererFor(u *url.URL) string {
	return u.Scheme + "://" + u.Host + "/"
}

// isDeadline reports whether a body read stopped because the download
// deadline fired rather than because the connection failed.
func isDeadline(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
