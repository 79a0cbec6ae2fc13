package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alorle/iptv-collector/internal/candidate"
	"github.com/alorle/iptv-collector/internal/port/driven"
	"github.com/alorle/iptv-collector/internal/probe"
)

// StreamProberConfig bounds the work spent on a single candidate.
type StreamProberConfig struct {
	PeekSize         int
	TargetSize       int
	DownloadDeadline time.Duration
	AnalyzeTimeout   time.Duration
	Budget           time.Duration
}

// DefaultStreamProberConfig returns the limits used when none are configured.
func DefaultStreamProberConfig() StreamProberConfig {
	return StreamProberConfig{
		PeekSize:         2048,
		TargetSize:       512 * 1024,
		DownloadDeadline: 8 * time.Second,
		AnalyzeTimeout:   10 * time.Second,
		Budget:           15 * time.Second,
	}
}

// StreamProber confirms that a candidate serves decodable video and measures
// how long that took.
type StreamProber struct {
	source   driven.MediaSource
	analyzer driven.StreamAnalyzer
	cfg      StreamProberConfig
	logger   *slog.Logger
}

// NewStreamProber creates a new StreamProber.
func NewStreamProber(source driven.MediaSource, analyzer driven.StreamAnalyzer, cfg StreamProberConfig, logger *slog.Logger) *StreamProber {
	return &StreamProber{
		source:   source,
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Probe runs the deep check on one candidate. Any error means the candidate
// is not valid right now; the analyzer process is gone by the time Probe returns.
func (p *StreamProber) Probe(ctx context.Context, c candidate.Candidate) (probe.Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Budget)
	defer cancel()

	mediaURL, err := p.resolveMedia(ctx, c.URL())
	if err != nil {
		return probe.Result{}, err
	}

	session, err := p.analyzer.Start(ctx)
	if err != nil {
		return probe.Result{}, fmt.Errorf("%w: %w", probe.ErrAnalysisFailed, err)
	}
	defer session.Close()

	media, err := p.source.Download(ctx, mediaURL, p.cfg.TargetSize, p.cfg.DownloadDeadline)
	if err != nil {
		return probe.Result{}, fmt.Errorf("failed to download media: %w", err)
	}
	if len(media) == 0 {
		return probe.Result{}, probe.ErrEmptyDownload
	}

	actx, acancel := context.WithTimeout(ctx, p.cfg.AnalyzeTimeout)
	defer acancel()

	video, err := session.Analyze(actx, media)
	if err != nil {
		return probe.Result{}, err
	}

	segmentURL := ""
	if mediaURL != c.URL() {
		segmentURL = mediaURL
	}

	return probe.NewResult(c.URL(), time.Now(), time.Since(start), segmentURL, len(media), video)
}

// resolveMedia returns the URL that serves media bytes: the candidate itself,
// or the first segment of its manifest.
func (p *StreamProber) resolveMedia(ctx context.Context, rawURL string) (string, error) {
	head, err := p.source.Peek(ctx, rawURL, p.cfg.PeekSize)
	if err != nil {
		return "", fmt.Errorf("failed to open stream: %w", err)
	}
	if !probe.IsManifest(head) {
		return rawURL, nil
	}

	body, err := p.source.FetchManifest(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch manifest: %w", err)
	}

	segment, err := probe.FirstSegment(body, rawURL)
	if err != nil {
		return "", err
	}
	p.logger.Debug("resolved manifest segment", "url", rawURL, "segment", segment)
	return segment, nil
}
