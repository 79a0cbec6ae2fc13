package driver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alorle/iptv-collector/internal/application"
)

// CatalogSource provides the most recently published catalog.
type CatalogSource interface {
	Latest() (application.Catalog, bool)
}

// CatalogHTTPHandler serves the published playlists.
type CatalogHTTPHandler struct {
	source CatalogSource
}

// NewCatalogHTTPHandler creates a new HTTP handler for the published catalog.
func NewCatalogHTTPHandler(source CatalogSource) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{source: source}
}

// ServeHTTP handles GET /iptv.m3u and GET /iptv.txt
func (h *CatalogHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var contentType string
	switch r.URL.Path {
	case "/" + application.M3UName:
		contentType = "audio/mpegurl"
	case "/" + application.TXTName:
		contentType = "text/plain; charset=utf-8"
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	catalog, ok := h.source.Latest()
	if !ok {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusServiceUnavailable, "catalog not published yet")
		return
	}

	body := catalog.M3U
	if r.URL.Path == "/"+application.TXTName {
		body = catalog.TXT
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Last-Modified", catalog.GeneratedAt.UTC().Format(http.TimeFormat))
	w.Header().Set("X-Run-Id", catalog.RunID)

	if since, err := http.ParseTime(r.Header.Get("If-Modified-Since")); err == nil &&
		!catalog.GeneratedAt.Truncate(time.Second).After(since) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(body)
	}
}
