package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Bulk.Concurrency != 500 {
		t.Errorf("Expected Bulk.Concurrency to be 500, got %d", cfg.Bulk.Concurrency)
	}
	if !cfg.Bulk.WhitelistBypass {
		t.Error("Expected Bulk.WhitelistBypass to be true")
	}
	if cfg.Deep.Workers <= 0 {
		t.Errorf("Expected Deep.Workers to be positive, got %d", cfg.Deep.Workers)
	}
	if cfg.Deep.PeekSize != 2048 {
		t.Errorf("Expected Deep.PeekSize to be 2048, got %d", cfg.Deep.PeekSize)
	}
	if cfg.Deep.TargetSize != 512*1024 {
		t.Errorf("Expected Deep.TargetSize to be 512KB, got %d", cfg.Deep.TargetSize)
	}
	if cfg.Deep.Budget != 15*time.Second {
		t.Errorf("Expected Deep.Budget to be 15s, got %v", cfg.Deep.Budget)
	}
	if cfg.Deep.UserAgent != "iPhone" {
		t.Errorf("Expected Deep.UserAgent to be iPhone, got %s", cfg.Deep.UserAgent)
	}
	if cfg.IPv6 != IPv6Auto {
		t.Errorf("Expected IPv6 to be auto, got %s", cfg.IPv6)
	}
	if cfg.Cache.Path != "" {
		t.Errorf("Expected cache to be disabled by default, got %s", cfg.Cache.Path)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing subscriptions file",
			mutate:  func(cfg *Config) { cfg.Lists.Subscriptions = "" },
			wantErr: "Subscriptions list file is required",
		},
		{
			name:    "missing keywords file",
			mutate:  func(cfg *Config) { cfg.Lists.Keywords = "" },
			wantErr: "Keywords list file is required",
		},
		{
			name:    "zero bulk concurrency",
			mutate:  func(cfg *Config) { cfg.Bulk.Concurrency = 0 },
			wantErr: "Bulk concurrency must be positive",
		},
		{
			name:    "negative rate limit",
			mutate:  func(cfg *Config) { cfg.Bulk.RateLimit = -1 },
			wantErr: "Bulk rate limit cannot be negative",
		},
		{
			name:    "zero deep workers",
			mutate:  func(cfg *Config) { cfg.Deep.Workers = 0 },
			wantErr: "Deep workers must be positive",
		},
		{
			name:    "zero budget",
			mutate:  func(cfg *Config) { cfg.Deep.Budget = 0 },
			wantErr: "Deep budget must be positive",
		},
		{
			name:    "empty ffprobe path",
			mutate:  func(cfg *Config) { cfg.Deep.FFProbePath = "" },
			wantErr: "ffprobe path is required",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "TRACE" },
			wantErr: "Log level",
		},
		{
			name:    "bad ipv6 mode",
			mutate:  func(cfg *Config) { cfg.IPv6 = "maybe" },
			wantErr: "IPv6 mode",
		},
		{
			name:    "negative serve interval",
			mutate:  func(cfg *Config) { cfg.Serve.Interval = -time.Minute },
			wantErr: "Serve interval cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Bulk.Concurrency = 0
	cfg.Deep.Workers = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration validation failed:") {
		t.Errorf("Unexpected error prefix: %s", msg)
	}
	if strings.Count(msg, "\n  - ") != 2 {
		t.Errorf("Expected two reported problems, got: %s", msg)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `lists:
  dir: "/etc/iptv"
  subscriptions: "subs.txt"
bulk:
  concurrency: 64
  timeout: "3s"
  rate_limit: 20
  whitelist_bypass: false
deep:
  workers: 2
  budget: "20s"
sources:
  retries: 5
cache:
  path: "/var/lib/iptv/cache.db"
output:
  dir: "/srv/www"
  epg_url: "http://example.com/e.xml"
log:
  level: "DEBUG"
serve:
  port: "9090"
  interval: "6h"
ipv6: "off"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Lists.Dir != "/etc/iptv" {
		t.Errorf("Expected Lists.Dir to be /etc/iptv, got %s", cfg.Lists.Dir)
	}
	if cfg.Lists.Subscriptions != "subs.txt" {
		t.Errorf("Expected Lists.Subscriptions to be subs.txt, got %s", cfg.Lists.Subscriptions)
	}
	if cfg.Lists.Keywords != "keywords.txt" {
		t.Errorf("Expected unset Lists.Keywords to keep default, got %s", cfg.Lists.Keywords)
	}
	if cfg.Bulk.Concurrency != 64 {
		t.Errorf("Expected Bulk.Concurrency to be 64, got %d", cfg.Bulk.Concurrency)
	}
	if cfg.Bulk.Timeout != 3*time.Second {
		t.Errorf("Expected Bulk.Timeout to be 3s, got %v", cfg.Bulk.Timeout)
	}
	if cfg.Bulk.RateLimit != 20 {
		t.Errorf("Expected Bulk.RateLimit to be 20, got %v", cfg.Bulk.RateLimit)
	}
	if cfg.Bulk.WhitelistBypass {
		t.Error("Expected Bulk.WhitelistBypass to be false")
	}
	if cfg.Deep.Budget != 20*time.Second {
		t.Errorf("Expected Deep.Budget to be 20s, got %v", cfg.Deep.Budget)
	}
	if cfg.Sources.Retries != 5 {
		t.Errorf("Expected Sources.Retries to be 5, got %d", cfg.Sources.Retries)
	}
	if cfg.Cache.Path != "/var/lib/iptv/cache.db" {
		t.Errorf("Expected Cache.Path to be set, got %s", cfg.Cache.Path)
	}
	if cfg.Serve.Interval != 6*time.Hour {
		t.Errorf("Expected Serve.Interval to be 6h, got %v", cfg.Serve.Interval)
	}
	if cfg.IPv6 != IPv6Off {
		t.Errorf("Expected IPv6 to be off, got %s", cfg.IPv6)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("bulk: [unclosed"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("Expected parse error for invalid YAML")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	envVars := map[string]string{
		"LIST_DIR":         "/lists",
		"OUTPUT_DIR":       "/out",
		"CACHE_PATH":       "/data/cache.db",
		"BULK_CONCURRENCY": "100",
		"DEEP_WORKERS":     "3",
		"DEEP_BUDGET":      "30s",
		"SKIP_VALIDATION":  "true",
		"LOG_LEVEL":        "debug",
		"IPV6":             "ON",
		"HTTP_PORT":        "9999",
		"SERVE_INTERVAL":   "1h",
	}
	for k, v := range envVars {
		t.Setenv(k, v)
	}

	cfg := Default()
	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Lists.Dir != "/lists" {
		t.Errorf("Expected Lists.Dir to be /lists, got %s", cfg.Lists.Dir)
	}
	if cfg.Output.Dir != "/out" {
		t.Errorf("Expected Output.Dir to be /out, got %s", cfg.Output.Dir)
	}
	if cfg.Cache.Path != "/data/cache.db" {
		t.Errorf("Expected Cache.Path to be /data/cache.db, got %s", cfg.Cache.Path)
	}
	if cfg.Bulk.Concurrency != 100 {
		t.Errorf("Expected Bulk.Concurrency to be 100, got %d", cfg.Bulk.Concurrency)
	}
	if cfg.Deep.Workers != 3 {
		t.Errorf("Expected Deep.Workers to be 3, got %d", cfg.Deep.Workers)
	}
	if cfg.Deep.Budget != 30*time.Second {
		t.Errorf("Expected Deep.Budget to be 30s, got %v", cfg.Deep.Budget)
	}
	if !cfg.Validation.Skip {
		t.Error("Expected Validation.Skip to be true")
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("Expected Log.Level to be DEBUG, got %s", cfg.Log.Level)
	}
	if cfg.IPv6 != IPv6On {
		t.Errorf("Expected IPv6 to be on, got %s", cfg.IPv6)
	}
	if cfg.Serve.Port != "9999" {
		t.Errorf("Expected Serve.Port to be 9999, got %s", cfg.Serve.Port)
	}
	if cfg.Serve.Interval != time.Hour {
		t.Errorf("Expected Serve.Interval to be 1h, got %v", cfg.Serve.Interval)
	}
}

func TestApplyEnvOverrides_InvalidValues(t *testing.T) {
	t.Setenv("BULK_CONCURRENCY", "-5")
	t.Setenv("DEEP_BUDGET", "soon")
	t.Setenv("IPV6", "sometimes")
	t.Setenv("SKIP_VALIDATION", "perhaps")

	cfg := Default()
	err := applyEnvOverrides(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid environment values")
	}

	for _, want := range []string{
		"BULK_CONCURRENCY must be positive",
		"DEEP_BUDGET: invalid duration format",
		"IPV6 must be one of: auto, on, off",
		"SKIP_VALIDATION: must be true or false",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to contain %q, got: %v", want, err)
		}
	}

	if cfg.Bulk.Concurrency != 500 {
		t.Errorf("Invalid value should not override default, got %d", cfg.Bulk.Concurrency)
	}
}

func TestLoadWithMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/non/existent/config.yaml")
	t.Setenv("OUTPUT_DIR", "/tmp/out")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error when config file is missing: %v", err)
	}

	if cfg.Bulk.Concurrency != 500 {
		t.Errorf("Expected default Bulk.Concurrency, got %d", cfg.Bulk.Concurrency)
	}
	if cfg.Output.Dir != "/tmp/out" {
		t.Errorf("Expected Output.Dir override, got %s", cfg.Output.Dir)
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("bulk:\n  concurrency: 0\n"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	t.Setenv("CONFIG_FILE", configPath)

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for zero concurrency")
	}
}

func TestLoadLists(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	write("subscribe.txt", "# sources\nhttp://a.example/list.m3u\n\n  http://b.example/list.txt  \n")
	write("keywords.txt", "CCTV\n卫视\n")
	write("blacklist.txt", "bad.example\n")

	cfg := Default()
	cfg.Lists.Dir = dir

	lists, err := cfg.LoadLists()
	if err != nil {
		t.Fatalf("LoadLists() error = %v", err)
	}

	if got := strings.Join(lists.Subscriptions, "|"); got != "http://a.example/list.m3u|http://b.example/list.txt" {
		t.Errorf("Unexpected subscriptions: %s", got)
	}
	if got := strings.Join(lists.Keywords, "|"); got != "CCTV|卫视" {
		t.Errorf("Unexpected keywords: %s", got)
	}
	if len(lists.Blacklist) != 1 {
		t.Errorf("Expected one blacklist entry, got %d", len(lists.Blacklist))
	}
	if len(lists.Whitelist) != 0 {
		t.Errorf("Missing whitelist should read as empty, got %v", lists.Whitelist)
	}
}

func TestLoadLists_RequiredMissing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "subscribe.txt"), []byte("http://a.example/x.m3u\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Lists.Dir = dir

	if _, err := cfg.LoadLists(); err == nil {
		t.Error("Expected error when keywords file is missing")
	}
}

func TestReadList_EmptyRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.txt")
	if err := os.WriteFile(path, []byte("# only comments\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadList(path, true)
	if !errors.Is(err, ErrEmptyList) {
		t.Errorf("Expected ErrEmptyList, got %v", err)
	}

	entries, err := ReadList(path, false)
	if err != nil || len(entries) != 0 {
		t.Errorf("Optional empty list should read as empty, got %v, %v", entries, err)
	}
}
