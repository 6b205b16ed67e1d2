// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loader errors wrap ErrLoadConfig, validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"time"
	_ "time/tzdata" // zones resolve on hosts without a zoneinfo database

	"github.com/okian/labx/internal/domain/kpi"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SourcePath is an optional CSV, XLSX or JSON file loaded at startup.
	SourcePath string `koanf:"source_path"`

	// SourceSheet names the XLSX sheet to read. Empty means the first sheet.
	SourceSheet string `koanf:"source_sheet"`

	// Column names of the leads sheet.
	TimestampField string `koanf:"timestamp_field"`
	ScoreField     string `koanf:"score_field"`
	CategoryField  string `koanf:"category_field"`

	// Timezone is the IANA zone for timestamps without an offset and for "today".
	Timezone string `koanf:"timezone"`

	// SkipMalformed drops bad rows instead of rejecting the whole load.
	SkipMalformed bool `koanf:"skip_malformed"`

	// ScoreMin and ScoreMax bound the score domain requests are clamped to.
	ScoreMin float64 `koanf:"score_min"`
	ScoreMax float64 `koanf:"score_max"`

	// HighQualityThreshold is the score a lead must exceed to count as high quality.
	HighQualityThreshold float64 `koanf:"high_quality_threshold"`

	// SmoothingWindow is the width of the hourly moving average.
	SmoothingWindow int `koanf:"smoothing_window"`

	// SmoothingCyclic wraps hour 23 around to hour 0 when smoothing.
	SmoothingCyclic bool `koanf:"smoothing_cyclic"`

	// RecentLimit caps the recent leads table.
	RecentLimit int `koanf:"recent_limit"`

	// MaxUploadBytes caps POST /leads bodies.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		TimestampField:       "Timestamp",
		ScoreField:           "Score",
		CategoryField:        "Vehicle Type",
		Timezone:             "UTC",
		ScoreMin:             0,
		ScoreMax:             5,
		HighQualityThreshold: kpi.DefaultHighQualityThreshold,
		SmoothingWindow:      3,
		RecentLimit:          10,
		MaxUploadBytes:       32 << 20,
	}
}

// Location resolves Timezone. Validate has already rejected unknown zones
// for loaded configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format must be text or json, got %q", c.LogFormat)
	case c.TimestampField == "" || c.ScoreField == "" || c.CategoryField == "":
		return invalid("column names must not be empty")
	case math.IsNaN(c.ScoreMin) || math.IsNaN(c.ScoreMax) || c.ScoreMin > c.ScoreMax:
		return invalid("score_min must not exceed score_max")
	case c.SmoothingWindow < 1:
		return invalid("smoothing_window must be at least 1, got %d", c.SmoothingWindow)
	case c.RecentLimit < 0:
		return invalid("recent_limit must not be negative, got %d", c.RecentLimit)
	case c.MaxUploadBytes <= 0:
		return invalid("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
