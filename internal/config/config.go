package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// IPv6 capability modes.
const (
	IPv6Auto = "auto"
	IPv6On   = "on"
	IPv6Off  = "off"
)

// Config holds the complete application configuration
type Config struct {
	// Operator list files, resolved against Dir
	Lists struct {
		Dir           string `yaml:"dir"`
		Subscriptions string `yaml:"subscriptions"`
		Keywords      string `yaml:"keywords"`
		Blacklist     string `yaml:"blacklist"`
		Whitelist     string `yaml:"whitelist"`
	} `yaml:"lists"`

	// Bulk reachability stage
	Bulk struct {
		Concurrency     int           `yaml:"concurrency"`
		Timeout         time.Duration `yaml:"timeout"`
		RateLimit       float64       `yaml:"rate_limit"`
		WhitelistBypass bool          `yaml:"whitelist_bypass"`
	} `yaml:"bulk"`

	// Deep stream stage
	Deep struct {
		Workers          int           `yaml:"workers"`
		FFProbePath      string        `yaml:"ffprobe_path"`
		UserAgent        string        `yaml:"user_agent"`
		RequestTimeout   time.Duration `yaml:"request_timeout"`
		PeekSize         int           `yaml:"peek_size"`
		TargetSize       int           `yaml:"target_size"`
		DownloadDeadline time.Duration `yaml:"download_deadline"`
		AnalyzeTimeout   time.Duration `yaml:"analyze_timeout"`
		Budget           time.Duration `yaml:"budget"`
	} `yaml:"deep"`

	Validation struct {
		Skip bool `yaml:"skip"`
	} `yaml:"validation"`

	// Subscription fetching
	Sources struct {
		Timeout     time.Duration `yaml:"timeout"`
		Retries     uint          `yaml:"retries"`
		RetryDelay  time.Duration `yaml:"retry_delay"`
		Concurrency int           `yaml:"concurrency"`
		UserAgent   string        `yaml:"user_agent"`
	} `yaml:"sources"`

	// Last-known-good playlist store; empty path disables it
	Cache struct {
		Path string `yaml:"path"`
	} `yaml:"cache"`

	Output struct {
		Dir      string `yaml:"dir"`
		EPGURL   string `yaml:"epg_url"`
		LogoBase string `yaml:"logo_base"`
	} `yaml:"output"`

	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	// Serve mode HTTP settings
	Serve struct {
		Address  string        `yaml:"address"`
		Port     string        `yaml:"port"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"serve"`

	// IPv6 is one of auto, on, off
	IPv6 string `yaml:"ipv6"`
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.Lists.Subscriptions == "" {
		errors = append(errors, "Subscriptions list file is required")
	}
	if c.Lists.Keywords == "" {
		errors = append(errors, "Keywords list file is required")
	}

	if c.Bulk.Concurrency <= 0 {
		errors = append(errors, "Bulk concurrency must be positive")
	}
	if c.Bulk.Timeout <= 0 {
		errors = append(errors, "Bulk timeout must be positive")
	}
	if c.Bulk.RateLimit < 0 {
		errors = append(errors, "Bulk rate limit cannot be negative")
	}

	if c.Deep.Workers <= 0 {
		errors = append(errors, "Deep workers must be positive")
	}
	if c.Deep.FFProbePath == "" {
		errors = append(errors, "ffprobe path is required")
	}
	if c.Deep.PeekSize <= 0 {
		errors = append(errors, "Deep peek size must be positive")
	}
	if c.Deep.TargetSize <= 0 {
		errors = append(errors, "Deep target size must be positive")
	}
	for name, d := range map[string]time.Duration{
		"request timeout":   c.Deep.RequestTimeout,
		"download deadline": c.Deep.DownloadDeadline,
		"analyze timeout":   c.Deep.AnalyzeTimeout,
		"budget":            c.Deep.Budget,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("Deep %s must be positive", name))
		}
	}

	if c.Sources.Timeout <= 0 {
		errors = append(errors, "Sources timeout must be positive")
	}
	if c.Sources.Concurrency <= 0 {
		errors = append(errors, "Sources concurrency must be positive")
	}

	if c.Output.Dir == "" {
		errors = append(errors, "Output directory is required")
	}

	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errors = append(errors, fmt.Sprintf("Log level %q must be one of DEBUG, INFO, WARN, ERROR", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errors = append(errors, fmt.Sprintf("Log format %q must be json or text", c.Log.Format))
	}

	if c.Serve.Port == "" {
		errors = append(errors, "Serve port is required")
	}
	if c.Serve.Interval < 0 {
		errors = append(errors, "Serve interval cannot be negative")
	}

	switch c.IPv6 {
	case IPv6Auto, IPv6On, IPv6Off:
	default:
		errors = append(errors, fmt.Sprintf("IPv6 mode %q must be one of auto, on, off", c.IPv6))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.Lists.Dir = "config"
	cfg.Lists.Subscriptions = "subscribe.txt"
	cfg.Lists.Keywords = "keywords.txt"
	cfg.Lists.Blacklist = "blacklist.txt"
	cfg.Lists.Whitelist = "whitelist.txt"

	cfg.Bulk.Concurrency = 500
	cfg.Bulk.Timeout = 5 * time.Second
	cfg.Bulk.WhitelistBypass = true

	cfg.Deep.Workers = 2 * runtime.NumCPU()
	cfg.Deep.FFProbePath = "ffprobe"
	cfg.Deep.UserAgent = "iPhone"
	cfg.Deep.RequestTimeout = 10 * time.Second
	cfg.Deep.PeekSize = 2048
	cfg.Deep.TargetSize = 512 * 1024
	cfg.Deep.DownloadDeadline = 8 * time.Second
	cfg.Deep.AnalyzeTimeout = 10 * time.Second
	cfg.Deep.Budget = 15 * time.Second

	cfg.Sources.Timeout = 10 * time.Second
	cfg.Sources.Retries = 3
	cfg.Sources.RetryDelay = time.Second
	cfg.Sources.Concurrency = 4

	cfg.Output.Dir = "."
	cfg.Output.EPGURL = "http://epg.51zmt.top:8000/e.xml"

	cfg.Log.Level = "INFO"
	cfg.Log.Format = "json"
	cfg.Log.MaxSizeMB = 10
	cfg.Log.MaxBackups = 3

	cfg.Serve.Address = "0.0.0.0"
	cfg.Serve.Port = "8080"

	cfg.IPv6 = IPv6Auto

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if provided) and applies environment variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("LIST_DIR", &cfg.Lists.Dir)
	p.parseString("OUTPUT_DIR", &cfg.Output.Dir)
	p.parseString("EPG_URL", &cfg.Output.EPGURL)
	p.parseString("LOGO_BASE", &cfg.Output.LogoBase)
	p.parseString("CACHE_PATH", &cfg.Cache.Path)
	p.parseString("FFPROBE_PATH", &cfg.Deep.FFProbePath)
	p.parseString("METRICS_TEXTFILE", &cfg.Metrics.Textfile)
	p.parseString("LOG_FILE", &cfg.Log.File)
	p.parseString("HTTP_ADDRESS", &cfg.Serve.Address)
	p.parseString("HTTP_PORT", &cfg.Serve.Port)

	p.parseInt("BULK_CONCURRENCY", &cfg.Bulk.Concurrency)
	p.parseInt("DEEP_WORKERS", &cfg.Deep.Workers)
	p.parseDuration("BULK_TIMEOUT", &cfg.Bulk.Timeout)
	p.parseDuration("DEEP_BUDGET", &cfg.Deep.Budget)
	p.parseDuration("SERVE_INTERVAL", &cfg.Serve.Interval)
	p.parseBool("SKIP_VALIDATION", &cfg.Validation.Skip)

	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, []string{"DEBUG", "INFO", "WARN", "ERROR"}, strings.ToUpper)
	p.parseEnum("LOG_FORMAT", &cfg.Log.Format, []string{"json", "text"}, strings.ToLower)
	p.parseEnum("IPV6", &cfg.IPv6, []string{IPv6Auto, IPv6On, IPv6Off}, strings.ToLower)

	return p.err()
}
