// Package config loads rdfup.yaml and RDFUP_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfup/internal/iri"
	"github.com/roach88/rdfup/internal/loader"
)

// DefaultFile is read from the working directory when no --config flag is
// given. A missing default file is not an error.
const DefaultFile = "rdfup.yaml"

// Config holds the settings shared by every command.
type Config struct {
	// Journal is the SQLite journal path. Empty disables journaling.
	Journal string `yaml:"journal"`

	// BestEffortLoad turns LOAD fetch and decode failures into no-ops.
	BestEffortLoad bool `yaml:"best_effort_load"`

	// MaxSolutions caps WHERE solutions per operation. Zero is unlimited.
	MaxSolutions int `yaml:"max_solutions"`

	// PathFlavor selects the file URI path convention: posix or windows.
	PathFlavor string `yaml:"path_flavor"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	Loader LoaderConfig `yaml:"loader"`
}

// LoaderConfig configures document fetching.
type LoaderConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	RetryMax  int           `yaml:"retry_max"`
	CacheSize int           `yaml:"cache_size"`
	Workers   int           `yaml:"workers"`
	AllowHTTP bool          `yaml:"allow_http"`
	UserAgent string        `yaml:"user_agent"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PathFlavor: "posix",
		LogLevel:   "info",
		Loader: LoaderConfig{
			Timeout:   loader.DefaultTimeout,
			RetryMax:  loader.DefaultRetryMax,
			CacheSize: loader.DefaultCacheSize,
			Workers:   loader.DefaultWorkers,
			AllowHTTP: true,
			UserAgent: loader.DefaultUserAgent,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides and
// validates the result. An empty path tries DefaultFile and tolerates its
// absence.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxSolutions < 0 {
		errs = append(errs, fmt.Errorf("max_solutions must not be negative, got %d", c.MaxSolutions))
	}
	if _, err := iri.ParsePathFlavor(c.PathFlavor); err != nil {
		errs = append(errs, fmt.Errorf("path_flavor: %w", err))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Loader.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("loader.timeout must be positive, got %s", c.Loader.Timeout))
	}
	if c.Loader.RetryMax < 0 {
		errs = append(errs, fmt.Errorf("loader.retry_max must not be negative, got %d", c.Loader.RetryMax))
	}
	if c.Loader.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("loader.cache_size must be at least 1, got %d", c.Loader.CacheSize))
	}
	if c.Loader.Workers < 1 {
		errs = append(errs, fmt.Errorf("loader.workers must be at least 1, got %d", c.Loader.Workers))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Flavor returns the parsed path flavor. Call Validate first.
func (c Config) Flavor() iri.PathFlavor {
	f, err := iri.ParsePathFlavor(c.PathFlavor)
	if err != nil {
		return iri.Posix
	}
	return f
}

// Level returns the parsed log level. Call Validate first.
func (c Config) Level() slog.Level {
	l, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}
