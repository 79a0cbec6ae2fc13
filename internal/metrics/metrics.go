package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidatesStage tracks how many candidates left each pipeline stage in the last batch
	CandidatesStage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_collector_candidates",
		Help: "Number of candidates remaining after each pipeline stage",
	}, []string{"stage"})

	// ProbeFailures tracks dropped candidates by stage and failure reason
	ProbeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_collector_probe_failures_total",
		Help: "Total number of candidates dropped by a prober",
	}, []string{"stage", "reason"})

	// DeepProbeLatency tracks time-to-validated-media for successful deep probes
	DeepProbeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "iptv_collector_deep_probe_latency_seconds",
		Help:    "Latency of successful deep probes",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15},
	})

	// SourceFetches tracks subscription downloads by outcome (ok, failed)
	SourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_collector_source_fetches_total",
		Help: "Total number of subscription fetches by outcome",
	}, []string{"outcome"})

	// BatchDuration tracks the wall time of the last complete batch
	BatchDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_collector_batch_duration_seconds",
		Help: "Duration of the last collection batch",
	})

	// LastSuccess records when a batch last published a catalog
	LastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_collector_last_success_timestamp_seconds",
		Help: "Unix time of the last successfully published catalog",
	})
)

// SetStageCandidates records the survivor count of a stage
func SetStageCandidates(stage string, count int) {
	CandidatesStage.WithLabelValues(stage).Set(float64(count))
}

// RecordProbeFailure increments the failure counter for a stage and reason
func RecordProbeFailure(stage, reason string) {
	ProbeFailures.WithLabelValues(stage, reason).Inc()
}

// ObserveDeepProbe records the latency of a successful deep probe
func ObserveDeepProbe(latency time.Duration) {
	DeepProbeLatency.Observe(latency.Seconds())
}

// RecordSourceFetch increments the fetch counter for an outcome
func RecordSourceFetch(outcome string) {
	SourceFetches.WithLabelValues(outcome).Inc()
}

// RecordBatch records a finished batch
func RecordBatch(duration time.Duration, finished time.Time) {
	BatchDuration.Set(duration.Seconds())
	LastSuccess.Set(float64(finished.Unix()))
}

// WriteTextfile dumps the default registry in the node_exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
