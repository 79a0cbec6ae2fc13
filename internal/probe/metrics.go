package probe

import (
	"maps"
	"slices"
	"time"
)

// Summary holds aggregated figures for one validation stage of a batch.
type Summary struct {
	stage      string
	attempted  int
	succeeded  int
	failures   map[string]int
	avgLatency time.Duration
	maxLatency time.Duration
}

// NewSummary aggregates a stage from its successful results and its failure
// reasons (as produced by Reason). Returns ErrNoProbeData if nothing was attempted.
func NewSummary(stage string, attempted int, results []Result, failures map[string]int) (Summary, error) {
	if attempted == 0 {
		return Summary{}, ErrNoProbeData
	}

	var total, peak time.Duration
	for _, r := range results {
		total += r.Latency()
		peak = max(peak, r.Latency())
	}

	var avg time.Duration
	if len(results) > 0 {
		avg = total / time.Duration(len(results))
	}

	return Summary{
		stage:      stage,
		attempted:  attempted,
		succeeded:  len(results),
		failures:   maps.Clone(failures),
		avgLatency: avg,
		maxLatency: peak,
	}, nil
}

func (s Summary) Stage() string             { return s.stage }
func (s Summary) Attempted() int            { return s.attempted }
func (s Summary) Succeeded() int            { return s.succeeded }
func (s Summary) Failed() int               { return s.attempted - s.succeeded }
func (s Summary) AvgLatency() time.Duration { return s.avgLatency }
func (s Summary) MaxLatency() time.Duration { return s.maxLatency }

// SuccessRatio is succeeded/attempted.
func (s Summary) SuccessRatio() float64 {
	return float64(s.succeeded) / float64(s.attempted)
}

// Failures returns the failure count per reason.
func (s Summary) Failures() map[string]int {
	return maps.Clone(s.failures)
}

// TopReasons returns failure reasons ordered by count descending, then name.
func (s Summary) TopReasons() []string {
	reasons := slices.Collect(maps.Keys(s.failures))
	slices.SortFunc(reasons, func(a, b string) int {
		if s.failures[a] != s.failures[b] {
			return s.failures[b] - s.failures[a]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return reasons
}
