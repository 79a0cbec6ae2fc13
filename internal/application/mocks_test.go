package application

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alorle/iptv-collector/internal/candidate"
	"github.com/alorle/iptv-collector/internal/port/driven"
	"github.com/alorle/iptv-collector/internal/probe"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockMediaSource implements driven.MediaSource for testing.
type mockMediaSource struct {
	peekFunc          func(ctx context.Context, rawURL string, n int) ([]byte, error)
	fetchManifestFunc func(ctx context.Context, rawURL string) ([]byte, error)
	downloadFunc      func(ctx context.Context, rawURL string, limit int, deadline time.Duration) ([]byte, error)
}

func (m *mockMediaSource) Peek(ctx context.Context, rawURL string, n int) ([]byte, error) {
	if m.peekFunc != nil {
		return m.peekFunc(ctx, rawURL, n)
	}
	return []byte{0x47, 0x40, 0x00}, nil
}

func (m *mockMediaSource) FetchManifest(ctx context.Context, rawURL string) ([]byte, error) {
	if m.fetchManifestFunc != nil {
		return m.fetchManifestFunc(ctx, rawURL)
	}
	return nil, nil
}

func (m *mockMediaSource) Download(ctx context.Context, rawURL string, limit int, deadline time.Duration) ([]byte, error) {
	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, rawURL, limit, deadline)
	}
	return []byte{0x47, 0x40, 0x00, 0x10}, nil
}

// mockAnalyzer implements driven.StreamAnalyzer and counts session activity.
type mockAnalyzer struct {
	startFunc   func(ctx context.Context) error
	analyzeFunc func(ctx context.Context, media []byte) (probe.VideoInfo, error)

	started  atomic.Int32
	analyzed atomic.Int32
	closed   atomic.Int32
}

func (m *mockAnalyzer) Start(ctx context.Context) (driven.AnalysisSession, error) {
	if m.startFunc != nil {
		if err := m.startFunc(ctx); err != nil {
			return nil, err
		}
	}
	m.started.Add(1)
	return &mockSession{parent: m}, nil
}

type mockSession struct {
	parent *mockAnalyzer
	once   sync.Once
}

func (s *mockSession) Analyze(ctx context.Context, media []byte) (probe.VideoInfo, error) {
	s.parent.analyzed.Add(1)
	if s.parent.analyzeFunc != nil {
		return s.parent.analyzeFunc(ctx, media)
	}
	return probe.NewVideoInfo(1920, 1080, "h264")
}

func (s *mockSession) Close() error {
	s.once.Do(func() { s.parent.closed.Add(1) })
	return nil
}

// mockReachabilityChecker implements driven.ReachabilityChecker for testing.
type mockReachabilityChecker struct {
	checkFunc func(ctx context.Context, rawURL string) error
	calls     atomic.Int32
}

func (m *mockReachabilityChecker) Check(ctx context.Context, rawURL string) error {
	m.calls.Add(1)
	if m.checkFunc != nil {
		return m.checkFunc(ctx, rawURL)
	}
	return nil
}

// mockDeepProber implements DeepProber for testing.
type mockDeepProber struct {
	probeFunc func(ctx context.Context, c candidate.Candidate) (probe.Result, error)
	calls     atomic.Int32
}

func (m *mockDeepProber) Probe(ctx context.Context, c candidate.Candidate) (probe.Result, error) {
	m.calls.Add(1)
	if m.probeFunc != nil {
		return m.probeFunc(ctx, c)
	}
	return okResult(c.URL(), 100*time.Millisecond)
}

func okResult(url string, latency time.Duration) (probe.Result, error) {
	video, err := probe.NewVideoInfo(1280, 720, "h264")
	if err != nil {
		return probe.Result{}, err
	}
	return probe.NewResult(url, time.Now(), latency, "", 1024, video)
}

// mockPlaylistFetcher implements driven.PlaylistFetcher for testing.
type mockPlaylistFetcher struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockPlaylistFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil, nil
}

// mockCatalogWriter implements driven.CatalogWriter and keeps what was written.
type mockCatalogWriter struct {
	mu      sync.Mutex
	files   map[string][]byte
	writeFn func(ctx context.Context, name string, content []byte) error
}

func (m *mockCatalogWriter) Write(ctx context.Context, name string, content []byte) error {
	if m.writeFn != nil {
		if err := m.writeFn(ctx, name, content); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = append([]byte(nil), content...)
	return nil
}

func (m *mockCatalogWriter) file(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.files[name])
}

func mustCandidate(name, url, source string) candidate.Candidate {
	c, err := candidate.New(name, url, source, nil)
	if err != nil {
		panic(err)
	}
	return c
}
