// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/analytics"
)

type fakeBuilder struct {
	calls atomic.Int32
	err   error
	built chan struct{}
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{built: make(chan struct{}, 64)}
}

func (f *fakeBuilder) Build(ctx context.Context) (analytics.BuildResult, error) {
	f.calls.Add(1)
	select {
	case f.built <- struct{}{}:
	default:
	}
	if f.err != nil {
		return analytics.BuildResult{}, f.err
	}
	return analytics.BuildResult{Loaded: 3, Added: 2}, nil
}

func (f *fakeBuilder) waitBuilds(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.built:
		case <-time.After(2 * time.Second):
			t.Fatalf("saw %d builds, want %d", i, n)
		}
	}
}

func TestGraphRebuildService_BuildOnStart(t *testing.T) {
	t.Parallel()

	builder := newFakeBuilder()
	svc := NewGraphRebuildService(builder, GraphRebuildConfig{BuildOnStart: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	builder.waitBuilds(t, 1)

	// No interval: the service idles until shutdown.
	time.Sleep(30 * time.Millisecond)
	cancel()

	if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if got := builder.calls.Load(); got != 1 {
		t.Errorf("Build called %d times, want 1", got)
	}
}

func TestGraphRebuildService_Periodic(t *testing.T) {
	t.Parallel()

	builder := newFakeBuilder()
	svc := NewGraphRebuildService(builder, GraphRebuildConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	builder.waitBuilds(t, 3)
	cancel()

	if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

func TestGraphRebuildService_FailuresDoNotStopService(t *testing.T) {
	t.Parallel()

	builder := newFakeBuilder()
	builder.err = errors.New("store unavailable")
	svc := NewGraphRebuildService(builder, GraphRebuildConfig{
		BuildOnStart: true,
		Interval:     10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(ctx, svc)
	builder.waitBuilds(t, 3)

	select {
	case err := <-errCh:
		t.Fatalf("service stopped early: %v", err)
	default:
	}

	cancel()
	if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

func TestNewGraphRebuildService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewGraphRebuildService(newFakeBuilder(), GraphRebuildConfig{}, zerolog.Nop())
	if svc.config.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", svc.config.Timeout)
	}
	if svc.String() != "graph-rebuild-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
