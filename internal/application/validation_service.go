package application

import (
	"context"
	"log/slog"
	"maps"
	"runtime"
	"sync"

	"github.com/alorle/iptv-collector/internal/candidate"
	"github.com/alorle/iptv-collector/internal/metrics"
	"github.com/alorle/iptv-collector/internal/policy"
	"github.com/alorle/iptv-collector/internal/pool"
	"github.com/alorle/iptv-collector/internal/port/driven"
	"github.com/alorle/iptv-collector/internal/probe"
)

// Stage labels used in logs and metrics.
const (
	StageBulk = "bulk"
	StageDeep = "deep"
)

// DeepProber runs the deep check on a single candidate.
type DeepProber interface {
	Probe(ctx context.Context, c candidate.Candidate) (probe.Result, error)
}

// ValidationConfig tunes the two validation stages.
type ValidationConfig struct {
	BulkConcurrency int
	WhitelistBypass bool
	DeepWorkers     int
	// Skip bypasses both stages and stamps every candidate with zero latency.
	Skip bool
}

// DefaultValidationConfig returns the stage limits used when none are configured.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		BulkConcurrency: 500,
		WhitelistBypass: true,
		DeepWorkers:     2 * runtime.NumCPU(),
	}
}

// ValidationService drops candidates that do not currently serve video.
type ValidationService struct {
	checker driven.ReachabilityChecker
	prober  DeepProber
	policy  policy.Policy
	cfg     ValidationConfig
	logger  *slog.Logger
}

// NewValidationService creates a new ValidationService.
func NewValidationService(
	checker driven.ReachabilityChecker,
	prober DeepProber,
	pol policy.Policy,
	cfg ValidationConfig,
	logger *slog.Logger,
) *ValidationService {
	return &ValidationService{
		checker: checker,
		prober:  prober,
		policy:  pol,
		cfg:     cfg,
		logger:  logger,
	}
}

// Validate runs the bulk check then the deep check, or only stamps zero
// latency when validation is skipped.
func (s *ValidationService) Validate(ctx context.Context, cs []candidate.Candidate) []candidate.Candidate {
	if s.cfg.Skip {
		out := make([]candidate.Candidate, len(cs))
		for i, c := range cs {
			out[i] = c.WithLatency(0)
		}
		s.logger.Info("validation skipped", "candidates", len(out))
		return out
	}

	return s.DeepCheck(ctx, s.BulkCheck(ctx, cs))
}

// BulkCheck keeps candidates whose URL answers 200 OK. Whitelisted candidates
// bypass the check when configured to.
func (s *ValidationService) BulkCheck(ctx context.Context, cs []candidate.Candidate) []candidate.Candidate {
	var bypass, pending []candidate.Candidate
	for _, c := range cs {
		if s.cfg.WhitelistBypass && s.policy.Whitelisted(c) {
			bypass = append(bypass, c)
			continue
		}
		pending = append(pending, c)
	}

	tally := newFailureTally()
	alive := pool.Collect(ctx, pending, s.cfg.BulkConcurrency, func(ctx context.Context, c candidate.Candidate) (candidate.Candidate, bool) {
		if err := s.checker.Check(ctx, c.URL()); err != nil {
			tally.record(StageBulk, err)
			s.logger.Debug("bulk check failed", "url", c.URL(), "name", c.Name(), "reason", probe.Reason(err), "error", err)
			return candidate.Candidate{}, false
		}
		return c, true
	}, s.panicOptions(StageBulk, tally))

	out := append(bypass, alive...)

	s.logger.Info("bulk check completed",
		"checked", len(pending),
		"alive", len(alive),
		"bypassed", len(bypass),
		"failures", tally.snapshot(),
	)
	metrics.SetStageCandidates(StageBulk, len(out))

	return out
}

// DeepCheck keeps candidates that serve decodable video and stamps their
// latency and resolution.
func (s *ValidationService) DeepCheck(ctx context.Context, cs []candidate.Candidate) []candidate.Candidate {
	type outcome struct {
		candidate candidate.Candidate
		result    probe.Result
	}

	tally := newFailureTally()
	outcomes := pool.Collect(ctx, cs, s.cfg.DeepWorkers, func(ctx context.Context, c candidate.Candidate) (outcome, bool) {
		res, err := s.prober.Probe(ctx, c)
		if err != nil {
			tally.record(StageDeep, err)
			s.logger.Debug("deep probe failed", "url", c.URL(), "name", c.Name(), "reason", probe.Reason(err), "error", err)
			return outcome{}, false
		}
		metrics.ObserveDeepProbe(res.Latency())
		return outcome{
			candidate: c.WithProbe(res.LatencyMillis(), res.Resolution()),
			result:    res,
		}, true
	}, s.panicOptions(StageDeep, tally))

	out := make([]candidate.Candidate, len(outcomes))
	results := make([]probe.Result, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.candidate
		results[i] = o.result
	}

	if summary, err := probe.NewSummary(StageDeep, len(cs), results, tally.snapshot()); err == nil {
		s.logger.Info("deep probe completed",
			"probed", summary.Attempted(),
			"valid", summary.Succeeded(),
			"avg_latency", summary.AvgLatency(),
			"max_latency", summary.MaxLatency(),
			"top_failures", summary.TopReasons(),
		)
	}
	metrics.SetStageCandidates(StageDeep, len(out))

	return out
}

func (s *ValidationService) panicOptions(stage string, tally *failureTally) pool.Options {
	return pool.Options{OnPanic: func(recovered any) {
		err := pool.PanicError(recovered)
		tally.add(stage, "panic")
		s.logger.Warn("probe task panicked", "stage", stage, "error", err)
	}}
}

// failureTally counts failure reasons from concurrent tasks.
type failureTally struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFailureTally() *failureTally {
	return &failureTally{counts: make(map[string]int)}
}

func (t *failureTally) record(stage string, err error) {
	t.add(stage, probe.Reason(err))
}

func (t *failureTally) add(stage, reason string) {
	metrics.RecordProbeFailure(stage, reason)
	t.mu.Lock()
	t.counts[reason]++
	t.mu.Unlock()
}

func (t *failureTally) snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.counts)
}
