package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alorle/iptv-collector/internal/candidate"
	"github.com/alorle/iptv-collector/internal/m3u"
	"github.com/alorle/iptv-collector/internal/metrics"
	"github.com/alorle/iptv-collector/internal/policy"
	"github.com/alorle/iptv-collector/internal/port/driven"
	"github.com/alorle/iptv-collector/internal/ranking"
)

// ErrNoCandidates is returned when no subscription yielded a single entry.
// It is the only condition that aborts a batch.
var ErrNoCandidates = errors.New("no candidates obtained from any subscription")

// Output file names.
const (
	M3UName = "iptv.m3u"
	TXTName = "iptv.txt"
)

// Validator validates a batch of classified candidates.
type Validator interface {
	Validate(ctx context.Context, cs []candidate.Candidate) []candidate.Candidate
}

// CollectorConfig describes one collection batch.
type CollectorConfig struct {
	Subscriptions    []string
	FetchConcurrency int
	EPGURL           string
	LogoBase         string
}

// Catalog is the published result of one batch.
type Catalog struct {
	RunID       string
	GeneratedAt time.Time
	Candidates  []candidate.Candidate
	M3U         []byte
	TXT         []byte
}

// CollectorService runs the whole collection batch: fetch subscriptions,
// filter, validate, rank and publish.
type CollectorService struct {
	fetcher   driven.PlaylistFetcher
	validator Validator
	writer    driven.CatalogWriter
	policy    policy.Policy
	encoder   *m3u.Encoder
	cfg       CollectorConfig
	logger    *slog.Logger

	mu      sync.RWMutex
	latest  Catalog
	lastErr error
	hasRun  bool
}

// NewCollectorService creates a new CollectorService.
func NewCollectorService(
	fetcher driven.PlaylistFetcher,
	validator Validator,
	writer driven.CatalogWriter,
	pol policy.Policy,
	cfg CollectorConfig,
	logger *slog.Logger,
) *CollectorService {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 4
	}
	return &CollectorService{
		fetcher:   fetcher,
		validator: validator,
		writer:    writer,
		policy:    pol,
		encoder:   m3u.NewEncoder(cfg.EPGURL, cfg.LogoBase),
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one batch and publishes its catalog.
func (s *CollectorService) Run(ctx context.Context) (Catalog, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	start := time.Now()

	catalog, err := s.run(ctx, runID, logger)

	s.mu.Lock()
	s.hasRun = true
	s.lastErr = err
	if err == nil {
		s.latest = catalog
	}
	s.mu.Unlock()

	if err != nil {
		logger.Error("collection batch failed", "error", err, "elapsed", time.Since(start))
		return Catalog{}, err
	}

	metrics.RecordBatch(time.Since(start), catalog.GeneratedAt)
	logger.Info("collection batch completed",
		"channels", len(catalog.Candidates),
		"m3u_size", humanize.Bytes(uint64(len(catalog.M3U))),
		"elapsed", time.Since(start),
	)
	return catalog, nil
}

func (s *CollectorService) run(ctx context.Context, runID string, logger *slog.Logger) (Catalog, error) {
	logger.Info("starting collection batch", "subscriptions", len(s.cfg.Subscriptions))

	all, err := s.fetchAll(ctx, logger)
	if err != nil {
		return Catalog{}, err
	}
	metrics.SetStageCandidates("parsed", len(all))

	filtered := s.policy.Apply(all)
	metrics.SetStageCandidates("filtered", len(filtered))
	logger.Info("filter completed", "parsed", len(all), "kept", len(filtered), "rejected", len(all)-len(filtered))

	validated := s.validator.Validate(ctx, filtered)
	if err := ctx.Err(); err != nil {
		return Catalog{}, fmt.Errorf("batch interrupted: %w", err)
	}
	if len(validated) == 0 {
		logger.Warn("no candidate survived validation")
	}

	ranked := ranking.Rank(validated)
	metrics.SetStageCandidates("ranked", len(ranked))

	var m3uBuf, txtBuf bytes.Buffer
	if err := s.encoder.Encode(&m3uBuf, ranked); err != nil {
		return Catalog{}, fmt.Errorf("failed to encode m3u: %w", err)
	}
	if err := m3u.EncodeTXT(&txtBuf, ranked); err != nil {
		return Catalog{}, fmt.Errorf("failed to encode txt: %w", err)
	}

	if err := s.writer.Write(ctx, M3UName, m3uBuf.Bytes()); err != nil {
		return Catalog{}, fmt.Errorf("failed to publish %s: %w", M3UName, err)
	}
	if err := s.writer.Write(ctx, TXTName, txtBuf.Bytes()); err != nil {
		return Catalog{}, fmt.Errorf("failed to publish %s: %w", TXTName, err)
	}

	return Catalog{
		RunID:       runID,
		GeneratedAt: time.Now(),
		Candidates:  ranked,
		M3U:         m3uBuf.Bytes(),
		TXT:         txtBuf.Bytes(),
	}, nil
}

// fetchAll downloads every subscription concurrently. A failed subscription
// is skipped; results keep subscription order.
func (s *CollectorService) fetchAll(ctx context.Context, logger *slog.Logger) ([]candidate.Candidate, error) {
	parsed := make([][]candidate.Candidate, len(s.cfg.Subscriptions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, url := range s.cfg.Subscriptions {
		g.Go(func() error {
			body, err := s.fetcher.Fetch(gctx, url)
			if err != nil {
				metrics.RecordSourceFetch("failed")
				logger.Warn("skipping subscription", "url", url, "error", err)
				return nil
			}
			metrics.RecordSourceFetch("ok")
			parsed[i] = m3u.Decode(body, url)
			logger.Debug("parsed subscription", "url", url, "entries", len(parsed[i]))
			return nil
		})
	}
	_ = g.Wait()

	var all []candidate.Candidate
	for _, cs := range parsed {
		all = append(all, cs...)
	}
	if len(all) == 0 {
		return nil, ErrNoCandidates
	}
	return all, nil
}

// Latest returns the most recently published catalog, if any.
func (s *CollectorService) Latest() (Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, !s.latest.GeneratedAt.IsZero()
}

// LastRun reports whether any batch ran and the error of the most recent one.
func (s *CollectorService) LastRun() (ran bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasRun, s.lastErr
}
