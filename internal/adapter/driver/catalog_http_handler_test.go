package driver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alorle/iptv-collector/internal/application"
)

// mockCatalogSource is a mock implementation of CatalogSource.
type mockCatalogSource struct {
	catalog   application.Catalog
	published bool
}

func (m *mockCatalogSource) Latest() (application.Catalog, bool) {
	return m.catalog, m.published
}

func publishedSource() *mockCatalogSource {
	return &mockCatalogSource{
		published: true,
		catalog: application.Catalog{
			RunID:       "run-1",
			GeneratedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			M3U:         []byte("#EXTM3U\n#EXTINF:-1,CCTV1\nhttp://a.example/1\n"),
			TXT:         []byte("CCTV,#genre#\nCCTV1,http://a.example/1\n"),
		},
	}
}

func TestCatalogHTTPHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name            string
		method          string
		path            string
		source          *mockCatalogSource
		wantStatus      int
		wantContentType string
		wantBody        string
	}{
		{
			name:            "m3u playlist",
			method:          http.MethodGet,
			path:            "/iptv.m3u",
			source:          publishedSource(),
			wantStatus:      http.StatusOK,
			wantContentType: "audio/mpegurl",
			wantBody:        "#EXTM3U\n#EXTINF:-1,CCTV1\nhttp://a.example/1\n",
		},
		{
			name:            "txt playlist",
			method:          http.MethodGet,
			path:            "/iptv.txt",
			source:          publishedSource(),
			wantStatus:      http.StatusOK,
			wantContentType: "text/plain; charset=utf-8",
			wantBody:        "CCTV,#genre#\nCCTV1,http://a.example/1\n",
		},
		{
			name:            "head has no body",
			method:          http.MethodHead,
			path:            "/iptv.m3u",
			source:          publishedSource(),
			wantStatus:      http.StatusOK,
			wantContentType: "audio/mpegurl",
		},
		{
			name:            "nothing published yet",
			method:          http.MethodGet,
			path:            "/iptv.m3u",
			source:          &mockCatalogSource{},
			wantStatus:      http.StatusServiceUnavailable,
			wantContentType: "application/json",
		},
		{
			name:            "unknown file",
			method:          http.MethodGet,
			path:            "/other.m3u",
			source:          publishedSource(),
			wantStatus:      http.StatusNotFound,
			wantContentType: "application/json",
		},
		{
			name:            "post not allowed",
			method:          http.MethodPost,
			path:            "/iptv.m3u",
			source:          publishedSource(),
			wantStatus:      http.StatusMethodNotAllowed,
			wantContentType: "application/json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCatalogHTTPHandler(tt.source)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantContentType {
				t.Errorf("expected Content-Type %q, got %q", tt.wantContentType, got)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("unexpected body:\n%s", rec.Body.String())
			}
			if tt.method == http.MethodHead && rec.Body.Len() != 0 {
				t.Errorf("expected empty body for HEAD, got %d bytes", rec.Body.Len())
			}
		})
	}
}

func TestCatalogHTTPHandler_Headers(t *testing.T) {
	handler := NewCatalogHTTPHandler(publishedSource())

	req := httptest.NewRequest(http.MethodGet, "/iptv.m3u", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Last-Modified"); got != "Sun, 01 Mar 2026 08:00:00 GMT" {
		t.Errorf("unexpected Last-Modified %q", got)
	}
	if got := rec.Header().Get("X-Run-Id"); got != "run-1" {
		t.Errorf("unexpected X-Run-Id %q", got)
	}
}

func TestCatalogHTTPHandler_NotModified(t *testing.T) {
	handler := NewCatalogHTTPHandler(publishedSource())

	req := httptest.NewRequest(http.MethodGet, "/iptv.txt", nil)
	req.Header.Set("If-Modified-Since", "Sun, 01 Mar 2026 09:00:00 GMT")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotModified {
		t.Errorf("expected status 304, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}
