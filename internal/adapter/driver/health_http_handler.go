package driver

import (
	"net/http"
	"time"

	"github.com/alorle/iptv-collector/internal/application"
)

// HealthHTTPHandler handles HTTP requests for health checks.
type HealthHTTPHandler struct {
	service *application.HealthService
}

// NewHealthHTTPHandler creates a new HTTP handler for health checks.
func NewHealthHTTPHandler(service *application.HealthService) *HealthHTTPHandler {
	return &HealthHTTPHandler{service: service}
}

// healthResponse represents the JSON response for health check endpoint.
type healthResponse struct {
	Status      string     `json:"status"`
	Catalog     string     `json:"catalog"`
	Error       string     `json:"error,omitempty"`
	Channels    int        `json:"channels"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// ServeHTTP handles GET /health
func (h *HealthHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := h.service.Check(r.Context())

	resp := healthResponse{
		Status:   status.Status,
		Catalog:  status.Catalog.Status,
		Error:    status.Catalog.Error,
		Channels: status.Channels,
	}
	if !status.GeneratedAt.IsZero() {
		resp.GeneratedAt = &status.GeneratedAt
	}

	// A collector still running its first batch is alive.
	httpStatus := http.StatusOK
	if status.Status == "degraded" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
