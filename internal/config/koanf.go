// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/fleetgraph/internal/category"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fleetgraph/config.yaml",
	"/etc/fleetgraph/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied.
func defaultConfig() *Config {
	defaults := category.DefaultCategories()
	categories := make([]CategoryConfig, len(defaults))
	for i, e := range defaults {
		categories[i] = CategoryConfig{Name: e.Name, BasePrice: e.BasePrice}
	}

	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Driver:         DriverMemory,
			SeedDir:        "data",
			SeedOnStart:    true,
			BadgerPath:     "/data/fleetgraph/badger",
			DuckDBPath:     "/data/fleetgraph/fleetgraph.duckdb",
			BreakerEnabled: true,
			BreakerTimeout: 30 * time.Second,
		},
		Analytics: AnalyticsConfig{
			CarCacheCapacity:      100,
			CustomerCacheCapacity: 50,
			PopularLimit:          5,
			MaxLimit:              1000,
			BuildOnStartup:        true,
			RebuildInterval:       time.Hour,
			WarmCaches:            true,
		},
		Events: EventsConfig{
			Enabled:              true,
			Topic:                "rentals.completed",
			PoisonTopic:          "rentals.poison",
			BufferSize:           256,
			RetryMaxRetries:      3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         10 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Categories: categories,
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Store
	"store_driver":          "store.driver",
	"data_dir":              "store.seed_dir",
	"store_seed_on_start":   "store.seed_on_start",
	"badger_path":           "store.badger_path",
	"duckdb_path":           "store.duckdb_path",
	"store_breaker_enabled": "store.breaker_enabled",
	"store_breaker_timeout": "store.breaker_timeout",

	// Analytics
	"car_cache_capacity":      "analytics.car_cache_capacity",
	"customer_cache_capacity": "analytics.customer_cache_capacity",
	"popular_limit":           "analytics.popular_limit",
	"max_limit":               "analytics.max_limit",
	"build_on_startup":        "analytics.build_on_startup",
	"rebuild_interval":        "analytics.rebuild_interval",
	"warm_caches":             "analytics.warm_caches",

	// Events
	"events_enabled":      "events.enabled",
	"events_topic":        "events.topic",
	"events_poison_topic": "events.poison_topic",
	"events_buffer_size":  "events.buffer_size",
	"events_retry_max":    "events.retry_max_retries",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc maps known environment variables to koanf paths and
// drops everything else.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - STORE_DRIVER -> store.driver
//   - CAR_CACHE_CAPACITY -> analytics.car_cache_capacity
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
