// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

// Package config loads Fleetgraph configuration.
//
// Loading order (Koanf v2), later layers win:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config file: optional YAML (CONFIG_PATH, ./config.yaml, /etc/fleetgraph/config.yaml)
//  3. Environment variables: explicit names such as HTTP_PORT or STORE_DRIVER
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/fleetgraph/internal/category"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverDuckDB = "duckdb"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Store      StoreConfig      `koanf:"store"`
	Analytics  AnalyticsConfig  `koanf:"analytics"`
	Events     EventsConfig     `koanf:"events"`
	Security   SecurityConfig   `koanf:"security"`
	Categories []CategoryConfig `koanf:"categories"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json (production) or console (development).
	Format string `koanf:"format"`

	// Caller includes file:line in every entry.
	Caller bool `koanf:"caller"`
}

// StoreConfig selects and configures the rental data backend.
type StoreConfig struct {
	// Driver is memory, badger or duckdb.
	Driver string `koanf:"driver"`

	// SeedDir holds customers.csv, cars.csv and travel_history.csv.
	SeedDir string `koanf:"seed_dir"`

	// SeedOnStart imports SeedDir into the store before the first graph build.
	SeedOnStart bool `koanf:"seed_on_start"`

	// BadgerPath is the BadgerDB directory. Empty runs Badger in memory.
	BadgerPath string `koanf:"badger_path"`

	// DuckDBPath is the DuckDB database file. Empty runs DuckDB in memory.
	DuckDBPath string `koanf:"duckdb_path"`

	// BreakerEnabled wraps store lookups in a circuit breaker.
	BreakerEnabled bool `koanf:"breaker_enabled"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// AnalyticsConfig tunes the rental graph service.
type AnalyticsConfig struct {
	CarCacheCapacity      int           `koanf:"car_cache_capacity"`
	CustomerCacheCapacity int           `koanf:"customer_cache_capacity"`
	PopularLimit          int           `koanf:"popular_limit"`
	MaxLimit              int           `koanf:"max_limit"`
	BuildOnStartup        bool          `koanf:"build_on_startup"`
	RebuildInterval       time.Duration `koanf:"rebuild_interval"` // 0 disables periodic rebuilds
	WarmCaches            bool          `koanf:"warm_caches"`
}

// EventsConfig configures the in-process rental event pipeline.
type EventsConfig struct {
	Enabled              bool          `koanf:"enabled"`
	Topic                string        `koanf:"topic"`
	PoisonTopic          string        `koanf:"poison_topic"`
	BufferSize           int64         `koanf:"buffer_size"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// CategoryConfig seeds one car category.
type CategoryConfig struct {
	Name      string  `koanf:"name"`
	BasePrice float64 `koanf:"base_price"`
}

// CategoryEntries converts the configured categories for category.NewListFrom.
func (c *Config) CategoryEntries() []category.Entry {
	entries := make([]category.Entry, len(c.Categories))
	for i, cc := range c.Categories {
		entries[i] = category.Entry{Name: cc.Name, BasePrice: cc.BasePrice}
	}
	return entries
}

// Load reads configuration from defaults, an optional YAML file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
