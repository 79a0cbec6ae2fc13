package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-collector/internal/adapter/driven"
	"github.com/alorle/iptv-collector/internal/adapter/driver"
	"github.com/alorle/iptv-collector/internal/application"
	"github.com/alorle/iptv-collector/internal/config"
	"github.com/alorle/iptv-collector/internal/logging"
	"github.com/alorle/iptv-collector/internal/metrics"
	"github.com/alorle/iptv-collector/internal/netcheck"
	"github.com/alorle/iptv-collector/internal/policy"
	ports "github.com/alorle/iptv-collector/internal/port/driven"
)

func main() {
	_ = godotenv.Load(".env")

	fs := flag.NewFlagSet("iptv-collector", flag.ExitOnError)
	skipValidation := fs.Bool("skip-validation", false, "skip reachability and stream checks, stamping zero latency")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: iptv-collector [flags] [serve]\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	mode := fs.Arg(0)
	switch mode {
	case "":
		mode = "run"
	case "serve":
	default:
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *skipValidation {
		cfg.Validation.Skip = true
	}

	logger, logCloser := logging.New(os.Stdout, logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer func() {
		_ = logCloser.Close()
	}()
	slog.SetDefault(logger)

	lists, err := cfg.LoadLists()
	if err != nil {
		log.Fatalf("failed to load list files: %v", err)
	}

	logger.Info("starting iptv-collector",
		"mode", mode,
		"subscriptions", len(lists.Subscriptions),
		"keywords", len(lists.Keywords),
		"skip_validation", cfg.Validation.Skip,
		"output_dir", cfg.Output.Dir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pol := policy.Policy{
		Keywords:  lists.Keywords,
		Blacklist: lists.Blacklist,
		Whitelist: lists.Whitelist,
		AllowIPv6: netcheck.Resolve(ctx, cfg.IPv6, logger),
	}

	// Open BoltDB for the playlist cache
	var cache ports.PlaylistCache
	if cfg.Cache.Path != "" {
		db, err := bbolt.Open(cfg.Cache.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
		if err != nil {
			log.Fatalf("failed to open cache database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("error closing cache database", "error", err)
			}
		}()

		boltCache, err := driven.NewPlaylistCacheBoltDB(db)
		if err != nil {
			log.Fatalf("failed to create playlist cache: %v", err)
		}
		cache = boltCache
	}

	// Create driven adapters
	fetcher := driven.NewHTTPPlaylistFetcher(driven.PlaylistFetcherConfig{
		Timeout:    cfg.Sources.Timeout,
		Attempts:   cfg.Sources.Retries,
		RetryDelay: cfg.Sources.RetryDelay,
		UserAgent:  cfg.Sources.UserAgent,
	}, cache, logger)
	checker := driven.NewHTTPReachabilityChecker(cfg.Bulk.Timeout, cfg.Bulk.RateLimit)
	mediaSource := driven.NewHTTPMediaSource(cfg.Deep.RequestTimeout, cfg.Deep.UserAgent)
	analyzer := driven.NewFFProbeAnalyzer(driven.FFProbeConfig{Binary: cfg.Deep.FFProbePath}, logger)
	writer, err := driven.NewCatalogFileWriter(afero.NewOsFs(), cfg.Output.Dir)
	if err != nil {
		log.Fatalf("failed to create output writer: %v", err)
	}

	// Create application services
	prober := application.NewStreamProber(mediaSource, analyzer, application.StreamProberConfig{
		PeekSize:         cfg.Deep.PeekSize,
		TargetSize:       cfg.Deep.TargetSize,
		DownloadDeadline: cfg.Deep.DownloadDeadline,
		AnalyzeTimeout:   cfg.Deep.AnalyzeTimeout,
		Budget:           cfg.Deep.Budget,
	}, logger)
	validator := application.NewValidationService(checker, prober, pol, application.ValidationConfig{
		BulkConcurrency: cfg.Bulk.Concurrency,
		WhitelistBypass: cfg.Bulk.WhitelistBypass,
		DeepWorkers:     cfg.Deep.Workers,
		Skip:            cfg.Validation.Skip,
	}, logger)
	collector := application.NewCollectorService(fetcher, validator, writer, pol, application.CollectorConfig{
		Subscriptions:    lists.Subscriptions,
		FetchConcurrency: cfg.Sources.Concurrency,
		EPGURL:           cfg.Output.EPGURL,
		LogoBase:         cfg.Output.LogoBase,
	}, logger)

	if mode == "run" {
		_, err := collector.Run(ctx)
		writeMetrics(cfg.Metrics.Textfile, logger)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	runServer(ctx, cfg, collector, logger)
}

func runServer(ctx context.Context, cfg *config.Config, collector *application.CollectorService, logger *slog.Logger) {
	var maxAge time.Duration
	if cfg.Serve.Interval > 0 {
		maxAge = 2 * cfg.Serve.Interval
	}

	scheduler := application.NewScheduler(metricsRunner{collector, cfg.Metrics.Textfile, logger}, cfg.Serve.Interval, logger)
	healthService := application.NewHealthService(collector, maxAge)

	// Create HTTP handlers
	catalogHandler := driver.NewCatalogHTTPHandler(collector)
	healthHandler := driver.NewHealthHTTPHandler(healthService)
	refreshHandler := driver.NewRefreshHTTPHandler(scheduler)

	mux := http.NewServeMux()
	mux.Handle("/"+application.M3UName, catalogHandler)
	mux.Handle("/"+application.TXTName, catalogHandler)
	mux.Handle("/health", healthHandler)
	mux.Handle("/refresh", refreshHandler)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Serve.Address + ":" + cfg.Serve.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	scheduled := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(scheduled)
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	<-scheduled

	logger.Info("server stopped")
}

// metricsRunner refreshes the metrics textfile after every batch.
type metricsRunner struct {
	collector *application.CollectorService
	textfile  string
	logger    *slog.Logger
}

func (r metricsRunner) Run(ctx context.Context) (application.Catalog, error) {
	catalog, err := r.collector.Run(ctx)
	writeMetrics(r.textfile, r.logger)
	return catalog, err
}

func writeMetrics(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("failed to write metrics textfile", "path", path, "error", err)
	}
}
