// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/fleetgraph/internal/metrics"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// BreakerSettings tunes the breakers created by NewResilient.
type BreakerSettings struct {
	// Name prefixes the breaker names reported in metrics.
	Name string

	// Timeout is how long a breaker stays open before probing again.
	Timeout time.Duration

	// MinRequests is the number of requests in the current window before the
	// failure ratio is considered.
	MinRequests uint32

	// FailureRatio trips the breaker once reached.
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 10 calls and
// probes again after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "store",
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Resilient puts reads from an underlying Store behind circuit breakers. When
// a backend keeps failing, lookups fail fast with gobreaker.ErrOpenState and
// callers skip the item instead of waiting on a dead backend.
//
// ErrNotFound is a normal answer and never counts as a failure. Writes are
// passed through unguarded.
type Resilient struct {
	Store
	cars      *gobreaker.CircuitBreaker[*models.Car]
	customers *gobreaker.CircuitBreaker[*models.Customer]
	history   *gobreaker.CircuitBreaker[[]models.Rental]
}

// NewResilient wraps s.
func NewResilient(s Store, settings BreakerSettings, logger zerolog.Logger) *Resilient {
	return &Resilient{
		Store:     s,
		cars:      newBreaker[*models.Car](settings.Name+"-cars", settings, logger),
		customers: newBreaker[*models.Customer](settings.Name+"-customers", settings, logger),
		history:   newBreaker[[]models.Rental](settings.Name+"-history", settings, logger),
	}
}

func newBreaker[T any](name string, s BreakerSettings, logger zerolog.Logger) *gobreaker.CircuitBreaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.BreakerClosed)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}

// CompletedRentals implements HistorySource.
func (r *Resilient) CompletedRentals(ctx context.Context) ([]models.Rental, error) {
	return r.history.Execute(func() ([]models.Rental, error) {
		return r.Store.CompletedRentals(ctx)
	})
}

// Car implements CarResolver.
func (r *Resilient) Car(ctx context.Context, id string) (*models.Car, error) {
	return r.cars.Execute(func() (*models.Car, error) {
		return r.Store.Car(ctx, id)
	})
}

// Customer implements CustomerResolver.
func (r *Resilient) Customer(ctx context.Context, id string) (*models.Customer, error) {
	return r.customers.Execute(func() (*models.Customer, error) {
		return r.Store.Customer(ctx, id)
	})
}

// BreakerStates reports the state of each breaker by name.
func (r *Resilient) BreakerStates() map[string]string {
	return map[string]string{
		r.cars.Name():      r.cars.State().String(),
		r.customers.Name(): r.customers.State().String(),
		r.history.Name():   r.history.State().String(),
	}
}
