package application

import (
	"context"
	"time"
)

// BatchReporter exposes the outcome of collection batches.
type BatchReporter interface {
	Latest() (Catalog, bool)
	LastRun() (ran bool, err error)
}

// HealthService reports whether the collector is publishing catalogs.
type HealthService struct {
	batches BatchReporter
	maxAge  time.Duration
}

// NewHealthService creates a new health check service. A catalog older than
// maxAge degrades the status; zero disables the age check.
func NewHealthService(batches BatchReporter, maxAge time.Duration) *HealthService {
	return &HealthService{
		batches: batches,
		maxAge:  maxAge,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status      string // "ok", "starting" or "degraded"
	Catalog     ComponentHealth
	Channels    int
	GeneratedAt time.Time
}

// Check inspects the last batch.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	ran, lastErr := s.batches.LastRun()
	if !ran {
		return HealthStatus{Status: "starting", Catalog: ComponentHealth{Status: "ok"}}
	}

	status := HealthStatus{Status: "ok", Catalog: ComponentHealth{Status: "ok"}}

	catalog, ok := s.batches.Latest()
	if ok {
		status.Channels = len(catalog.Candidates)
		status.GeneratedAt = catalog.GeneratedAt
	}

	switch {
	case lastErr != nil:
		status.Status = "degraded"
		status.Catalog = ComponentHealth{Status: "error", Error: lastErr.Error()}
	case !ok:
		status.Status = "degraded"
		status.Catalog = ComponentHealth{Status: "error", Error: "no catalog published"}
	case s.maxAge > 0 && time.Since(catalog.GeneratedAt) > s.maxAge:
		status.Status = "degraded"
		status.Catalog = ComponentHealth{Status: "error", Error: "catalog is stale"}
	}

	return status
}
