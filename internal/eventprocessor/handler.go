// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/logging"
	"github.com/tomtom215/fleetgraph/internal/metrics"
	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/store"
)

// RentalRecorder persists a completed rental through w, when w is non-nil,
// and appends it to the live graph as one step.
type RentalRecorder interface {
	ApplyRental(ctx context.Context, w store.Writer, rental models.Rental) error
}

// RentalHandler applies rentals.completed messages.
//
// Malformed or invalid events are acked and counted as rejected: retrying
// them cannot help. Store and graph failures are returned so the router
// retries them and finally moves them to the poison queue.
type RentalHandler struct {
	recorder   RentalRecorder
	writer     store.Writer
	serializer *Serializer
	logger     zerolog.Logger

	applied  atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// HandlerStats counts handled messages by outcome.
type HandlerStats struct {
	Applied  int64 `json:"applied"`
	Rejected int64 `json:"rejected"`
	Failed   int64 `json:"failed"`
}

// NewRentalHandler returns a handler. writer may be nil when rentals should
// only reach the graph.
func NewRentalHandler(recorder RentalRecorder, writer store.Writer, logger zerolog.Logger) (*RentalHandler, error) {
	if recorder == nil {
		return nil, errors.New("rental recorder is required")
	}
	return &RentalHandler{
		recorder:   recorder,
		writer:     writer,
		serializer: NewSerializer(),
		logger:     logger,
	}, nil
}

// Handle implements message.NoPublishHandlerFunc.
func (h *RentalHandler) Handle(msg *message.Message) error {
	ctx := msg.Context()
	if cid := msg.Metadata.Get(MetadataCorrelationID); cid != "" {
		ctx = logging.ContextWithCorrelationID(ctx, cid)
	}
	log := h.logger.With().Str("message_uuid", msg.UUID).Logger()

	event, err := h.serializer.Unmarshal(msg.Payload)
	if err != nil {
		h.reject(log, err, "Dropping undecodable rental event")
		return nil
	}
	if err := event.Validate(); err != nil {
		h.reject(log, err, "Dropping invalid rental event")
		return nil
	}

	if err := h.recorder.ApplyRental(ctx, h.writer, event.Rental()); err != nil {
		if errors.Is(err, models.ErrInvalidRental) {
			h.reject(log, err, "Dropping invalid rental event")
			return nil
		}
		h.fail(log, err)
		return fmt.Errorf("apply rental %s: %w", event.EventID, err)
	}

	h.applied.Add(1)
	metrics.EventsProcessed.WithLabelValues("applied").Inc()
	log.Debug().
		Str("event_id", event.EventID).
		Str("customer_id", event.CustomerID).
		Str("car_id", event.CarID).
		Msg("Rental event applied")
	return nil
}

func (h *RentalHandler) reject(log zerolog.Logger, err error, msg string) {
	h.rejected.Add(1)
	metrics.EventsProcessed.WithLabelValues("rejected").Inc()
	log.Warn().Err(err).Msg(msg)
}

func (h *RentalHandler) fail(log zerolog.Logger, err error) {
	h.failed.Add(1)
	metrics.EventsProcessed.WithLabelValues("failed").Inc()
	log.Error().Err(err).Msg("Rental event processing failed")
}

// Stats returns outcome counters.
func (h *RentalHandler) Stats() HandlerStats {
	return HandlerStats{
		Applied:  h.applied.Load(),
		Rejected: h.rejected.Load(),
		Failed:   h.failed.Load(),
	}
}
