package driver

import "net/http"

// BatchTrigger queues a collection batch.
type BatchTrigger interface {
	Trigger() bool
}

// RefreshHTTPHandler lets operators request a batch outside the schedule.
type RefreshHTTPHandler struct {
	trigger BatchTrigger
}

// NewRefreshHTTPHandler creates a new HTTP handler for manual refreshes.
func NewRefreshHTTPHandler(trigger BatchTrigger) *RefreshHTTPHandler {
	return &RefreshHTTPHandler{trigger: trigger}
}

type refreshResponse struct {
	Status string `json:"status"`
}

// ServeHTTP handles POST /refresh
func (h *RefreshHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !h.trigger.Trigger() {
		writeError(w, http.StatusConflict, "a refresh is already queued")
		return
	}

	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "queued"})
}
