package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockBatchReporter struct {
	catalog Catalog
	hasCat  bool
	ran     bool
	err     error
}

func (m *mockBatchReporter) Latest() (Catalog, bool)        { return m.catalog, m.hasCat }
func (m *mockBatchReporter) LastRun() (ran bool, err error) { return m.ran, m.err }

func TestHealthService_Check(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		reporter   *mockBatchReporter
		maxAge     time.Duration
		wantStatus string
	}{
		{
			name:       "no batch yet",
			reporter:   &mockBatchReporter{},
			wantStatus: "starting",
		},
		{
			name:       "fresh catalog",
			reporter:   &mockBatchReporter{ran: true, hasCat: true, catalog: Catalog{GeneratedAt: now}},
			maxAge:     time.Hour,
			wantStatus: "ok",
		},
		{
			name:       "last batch failed",
			reporter:   &mockBatchReporter{ran: true, hasCat: true, catalog: Catalog{GeneratedAt: now}, err: errors.New("boom")},
			wantStatus: "degraded",
		},
		{
			name:       "stale catalog",
			reporter:   &mockBatchReporter{ran: true, hasCat: true, catalog: Catalog{GeneratedAt: now.Add(-2 * time.Hour)}},
			maxAge:     time.Hour,
			wantStatus: "degraded",
		},
		{
			name:       "ran but never published",
			reporter:   &mockBatchReporter{ran: true},
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewHealthService(tt.reporter, tt.maxAge).Check(context.Background())
			if got.Status != tt.wantStatus {
				t.Errorf("Check().Status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}
}
