// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package analytics

import (
	"context"
	"errors"

	"github.com/tomtom215/fleetgraph/internal/metrics"
	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/store"
)

// resolveCar returns the car for id from the cache or the store. A failed
// lookup is logged and reported as not found; it is not cached, so the next
// query tries again.
func (s *Service) resolveCar(ctx context.Context, id string) (models.Car, bool) {
	if car, ok := s.carCache.Get(id); ok {
		metrics.RecordCacheLookup(carCacheName, true)
		return car, true
	}
	metrics.RecordCacheLookup(carCacheName, false)

	v, err, _ := s.carGroup.Do(id, func() (any, error) {
		// A flight that just finished may have filled the cache.
		if car, ok := s.carCache.Peek(id); ok {
			return car, nil
		}

		// Other callers share this flight, so one caller's cancellation
		// must not fail their lookup.
		car, err := s.cars.Car(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		s.carCache.Put(id, *car)
		metrics.CacheEntries.WithLabelValues(carCacheName).Set(float64(s.carCache.Len()))
		return *car, nil
	})
	if err != nil {
		s.logResolveFailure("car", id, err)
		return models.Car{}, false
	}
	return v.(models.Car), true
}

// resolveCustomer is resolveCar for customers. Unlike cars, the error is
// returned so Customer can tell not-found from a failing store.
func (s *Service) resolveCustomer(ctx context.Context, id string) (models.Customer, error) {
	if c, ok := s.customerCache.Get(id); ok {
		metrics.RecordCacheLookup(customerCacheName, true)
		return c, nil
	}
	metrics.RecordCacheLookup(customerCacheName, false)

	v, err, _ := s.customerGroup.Do(id, func() (any, error) {
		if c, ok := s.customerCache.Peek(id); ok {
			return c, nil
		}

		c, err := s.customers.Customer(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		s.customerCache.Put(id, *c)
		metrics.CacheEntries.WithLabelValues(customerCacheName).Set(float64(s.customerCache.Len()))
		return *c, nil
	})
	if err != nil {
		s.logResolveFailure("customer", id, err)
		return models.Customer{}, err
	}
	return v.(models.Customer), nil
}

func (s *Service) logResolveFailure(entity, id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		metrics.ResolveFailures.WithLabelValues(entity, "not_found").Inc()
		s.logger.Debug().Str("entity", entity).Str("id", id).Msg("Entity not found, skipping")
		return
	}
	metrics.ResolveFailures.WithLabelValues(entity, "error").Inc()
	s.logger.Warn().Err(err).Str("entity", entity).Str("id", id).Msg("Entity lookup failed, skipping")
}

// resolveCars maps ids to cars in order, dropping the ones that cannot be
// resolved.
func (s *Service) resolveCars(ctx context.Context, ids []string) []models.Car {
	cars := make([]models.Car, 0, len(ids))
	for _, id := range ids {
		if car, ok := s.resolveCar(ctx, id); ok {
			cars = append(cars, car)
		}
	}
	return cars
}

// Customer returns the customer with the given phone number. It returns
// store.ErrNotFound for unknown customers.
func (s *Service) Customer(ctx context.Context, id string) (*models.Customer, error) {
	c, err := s.resolveCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
