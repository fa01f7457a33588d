// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package config

import (
	"fmt"
	"math"
	"strings"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateAnalytics(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateCategories()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverMemory, DriverBadger, DriverDuckDB:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s; got %q",
			DriverMemory, DriverBadger, DriverDuckDB, c.Store.Driver)
	}

	if c.Store.SeedOnStart && c.Store.SeedDir == "" {
		return fmt.Errorf("DATA_DIR is required when STORE_SEED_ON_START=true")
	}
	if c.Store.BreakerEnabled && c.Store.BreakerTimeout <= 0 {
		return fmt.Errorf("STORE_BREAKER_TIMEOUT must be positive, got %v", c.Store.BreakerTimeout)
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	a := c.Analytics
	if a.CarCacheCapacity < 1 {
		return fmt.Errorf("CAR_CACHE_CAPACITY must be at least 1, got %d", a.CarCacheCapacity)
	}
	if a.CustomerCacheCapacity < 1 {
		return fmt.Errorf("CUSTOMER_CACHE_CAPACITY must be at least 1, got %d", a.CustomerCacheCapacity)
	}
	if a.MaxLimit < 1 {
		return fmt.Errorf("MAX_LIMIT must be at least 1, got %d", a.MaxLimit)
	}
	if a.PopularLimit < 1 || a.PopularLimit > a.MaxLimit {
		return fmt.Errorf("POPULAR_LIMIT must be between 1 and %d, got %d", a.MaxLimit, a.PopularLimit)
	}
	if a.RebuildInterval < 0 {
		return fmt.Errorf("REBUILD_INTERVAL must not be negative, got %v", a.RebuildInterval)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	if c.Events.Topic == c.Events.PoisonTopic {
		return fmt.Errorf("EVENTS_POISON_TOPIC must differ from EVENTS_TOPIC")
	}
	if c.Events.RetryMaxRetries < 0 {
		return fmt.Errorf("EVENTS_RETRY_MAX must not be negative, got %d", c.Events.RetryMaxRetries)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateCategories() error {
	seen := make(map[string]bool, len(c.Categories))
	for _, cc := range c.Categories {
		if cc.Name == "" {
			return fmt.Errorf("category name must not be empty")
		}
		if seen[cc.Name] {
			return fmt.Errorf("category %q is defined more than once", cc.Name)
		}
		seen[cc.Name] = true
		if cc.BasePrice < 0 || math.IsNaN(cc.BasePrice) || math.IsInf(cc.BasePrice, 0) {
			return fmt.Errorf("category %q has invalid base price %v", cc.Name, cc.BasePrice)
		}
	}
	return nil
}
