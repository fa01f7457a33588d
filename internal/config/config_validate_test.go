// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package config

import (
	"math"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "STORE_DRIVER"},
		{"seed without dir", func(c *Config) { c.Store.SeedDir = "" }, "DATA_DIR"},
		{"seed disabled without dir", func(c *Config) { c.Store.SeedDir = ""; c.Store.SeedOnStart = false }, ""},
		{"zero car cache", func(c *Config) { c.Analytics.CarCacheCapacity = 0 }, "CAR_CACHE_CAPACITY"},
		{"negative customer cache", func(c *Config) { c.Analytics.CustomerCacheCapacity = -1 }, "CUSTOMER_CACHE_CAPACITY"},
		{"popular over max", func(c *Config) { c.Analytics.PopularLimit = 5000 }, "POPULAR_LIMIT"},
		{"negative rebuild", func(c *Config) { c.Analytics.RebuildInterval = -1 }, "REBUILD_INTERVAL"},
		{"same topics", func(c *Config) { c.Events.PoisonTopic = c.Events.Topic }, "EVENTS_POISON_TOPIC"},
		{"events disabled skips topic check", func(c *Config) { c.Events.Enabled = false; c.Events.Topic = "" }, ""},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled", func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.RateLimitReqs = 0 }, ""},
		{"duplicate category", func(c *Config) {
			c.Categories = append(c.Categories, CategoryConfig{Name: "Economy", BasePrice: 1})
		}, "more than once"},
		{"negative category price", func(c *Config) { c.Categories[0].BasePrice = -2 }, "invalid base price"},
		{"nan category price", func(c *Config) { c.Categories[0].BasePrice = math.NaN() }, "invalid base price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
