// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/analytics"
)

// GraphBuilder rebuilds the rental graph from history.
// Satisfied by *analytics.Service.
type GraphBuilder interface {
	Build(ctx context.Context) (analytics.BuildResult, error)
}

// GraphRebuildConfig holds configuration for the rebuild service.
type GraphRebuildConfig struct {
	// BuildOnStart builds the graph as soon as the service starts.
	BuildOnStart bool

	// Interval between rebuilds. Zero disables periodic rebuilds; the
	// service then only waits for shutdown.
	Interval time.Duration

	// Timeout bounds a single build. Default: 5m
	Timeout time.Duration
}

// GraphRebuildService keeps the graph fresh: one build on start, then one
// per Interval. A failed build is logged and retried on the next tick; the
// previous graph stays live, so failures never stop the service.
type GraphRebuildService struct {
	builder GraphBuilder
	config  GraphRebuildConfig
	logger  zerolog.Logger
	name    string
}

// NewGraphRebuildService creates a new rebuild service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGraphRebuildService(builder GraphBuilder, cfg GraphRebuildConfig, logger zerolog.Logger) *GraphRebuildService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &GraphRebuildService{
		builder: builder,
		config:  cfg,
		logger:  logger.With().Str("service", "graph-rebuild").Logger(),
		name:    "graph-rebuild-service",
	}
}

// Serve implements suture.Service.
func (s *GraphRebuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("build_on_start", s.config.BuildOnStart).
		Dur("interval", s.config.Interval).
		Msg("graph rebuild service starting")

	if s.config.BuildOnStart {
		s.build(ctx, "startup")
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("graph rebuild service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.build(ctx, "scheduled")
		}
	}
}

func (s *GraphRebuildService) build(ctx context.Context, trigger string) {
	buildCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	res, err := s.builder.Build(buildCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("graph build failed, keeping previous graph")
		return
	}
	s.logger.Debug().
		Str("trigger", trigger).
		Int("added", res.Added).
		Dur("duration", res.Duration).
		Msg("graph build complete")
}

// String returns the service name for logging.
func (s *GraphRebuildService) String() string {
	return s.name
}
