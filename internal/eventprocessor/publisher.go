// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/tomtom215/fleetgraph/internal/logging"
	"github.com/tomtom215/fleetgraph/internal/metrics"
	"github.com/tomtom215/fleetgraph/internal/models"
)

// Metadata keys set on published messages.
const (
	MetadataCorrelationID = "correlation_id"
	MetadataEventType     = "event_type"

	EventTypeRentalCompleted = "rental.completed"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher publishes RentalCompletedEvents on a Watermill publisher.
type Publisher struct {
	publisher  message.Publisher
	topic      string
	serializer *Serializer

	mu     sync.RWMutex
	closed bool
}

// NewPublisher returns a Publisher that writes to topic.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{
		publisher:  pub,
		topic:      topic,
		serializer: NewSerializer(),
	}
}

// PublishRental wraps a completed rental in an event and publishes it. It
// returns the event ID. Active or invalid rentals are rejected before
// anything is published.
func (p *Publisher) PublishRental(ctx context.Context, rental models.Rental) (string, error) {
	event := &models.RentalCompletedEvent{
		EventID:     uuid.New().String(),
		CustomerID:  rental.CustomerID,
		CarID:       rental.CarID,
		RentTime:    rental.RentTime,
		ReturnTime:  rental.ReturnTime,
		PublishedAt: time.Now().UTC(),
	}
	if err := p.Publish(ctx, event); err != nil {
		return "", err
	}
	return event.EventID, nil
}

// Publish serializes and publishes event. The message UUID is the event ID.
func (p *Publisher) Publish(ctx context.Context, event *models.RentalCompletedEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	payload, err := p.serializer.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.Metadata.Set(MetadataEventType, EventTypeRentalCompleted)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set(MetadataCorrelationID, cid)
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	metrics.EventsPublished.Inc()
	logging.Ctx(ctx).Debug().
		Str("event_id", event.EventID).
		Str("customer_id", event.CustomerID).
		Str("car_id", event.CarID).
		Msg("Rental event published")
	return nil
}

// Close marks the publisher closed. The underlying publisher is owned by
// the caller and is not closed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
