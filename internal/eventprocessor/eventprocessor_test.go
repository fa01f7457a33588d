// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/analytics"
	"github.com/tomtom215/fleetgraph/internal/cache"
	"github.com/tomtom215/fleetgraph/internal/config"
	"github.com/tomtom215/fleetgraph/internal/models"
	"github.com/tomtom215/fleetgraph/internal/store"
)

const (
	testTopic  = "rentals.completed"
	testPoison = "rentals.poison"
)

var t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

// fakeRecorder collects applied rentals, saving them through the writer it
// is given, and can be told to fail.
type fakeRecorder struct {
	mu      sync.Mutex
	rentals []models.Rental
	err     error
	calls   int
	done    chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{done: make(chan struct{}, 16)}
}

func (f *fakeRecorder) ApplyRental(ctx context.Context, w store.Writer, r models.Rental) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	if w != nil {
		if err := w.SaveRental(ctx, &r); err != nil {
			return err
		}
	}
	f.rentals = append(f.rentals, r)
	f.done <- struct{}{}
	return nil
}

func testEventsConfig() config.EventsConfig {
	return config.EventsConfig{
		Enabled:              true,
		Topic:                testTopic,
		PoisonTopic:          testPoison,
		BufferSize:           16,
		RetryMaxRetries:      2,
		RetryInitialInterval: time.Millisecond,
		CloseTimeout:         time.Second,
	}
}

// startPipeline wires a GoChannel, a Router and the handler, and runs the
// router until the test ends.
func startPipeline(t *testing.T, recorder RentalRecorder, writer store.Writer) (*Publisher, message.Subscriber, *RentalHandler) {
	t.Helper()
	cfg := testEventsConfig()
	logger := watermill.NopLogger{}

	pubSub := NewPubSub(cfg, logger)
	router, err := NewRouter(RouterConfigFrom(cfg), pubSub, logger)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	handler, err := NewRentalHandler(recorder, writer, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRentalHandler() error = %v", err)
	}
	router.AddConsumerHandler("rental-completed", cfg.Topic, pubSub, handler.Handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = router.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = router.Close()
		<-done
		_ = pubSub.Close()
	})

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	if !router.IsRunning() || router.Handlers() != 1 {
		t.Errorf("IsRunning() = %v, Handlers() = %d", router.IsRunning(), router.Handlers())
	}

	return NewPublisher(pubSub, cfg.Topic), pubSub, handler
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPipeline_AppliesRental(t *testing.T) {
	recorder := newFakeRecorder()
	mem := store.NewMemory()
	pub, _, handler := startPipeline(t, recorder, mem)

	rental := models.Rental{CustomerID: "5551234", CarID: "C1", RentTime: t0, ReturnTime: t0.Add(3 * time.Hour)}
	id, err := pub.PublishRental(context.Background(), rental)
	if err != nil {
		t.Fatalf("PublishRental() error = %v", err)
	}
	if id == "" {
		t.Error("PublishRental() returned empty event ID")
	}

	waitFor(t, recorder.done)

	recorder.mu.Lock()
	got := recorder.rentals[0]
	recorder.mu.Unlock()
	if got.CustomerID != "5551234" || got.CarID != "C1" || got.DurationHours() != 3 {
		t.Errorf("recorded rental = %+v", got)
	}

	history, err := mem.CompletedRentals(context.Background())
	if err != nil || len(history) != 1 {
		t.Errorf("persisted history = %+v, %v", history, err)
	}
	if s := handler.Stats(); s.Applied != 1 {
		t.Errorf("Stats() = %+v, want 1 applied", s)
	}
}

func TestPipeline_FailuresGoToPoisonQueue(t *testing.T) {
	recorder := newFakeRecorder()
	recorder.err = errors.New("graph unavailable")
	pub, sub, handler := startPipeline(t, recorder, nil)

	poisoned, err := sub.Subscribe(context.Background(), testPoison)
	if err != nil {
		t.Fatalf("Subscribe(poison) error = %v", err)
	}

	rental := models.Rental{CustomerID: "5551234", CarID: "C1", RentTime: t0, ReturnTime: t0.Add(time.Hour)}
	id, err := pub.PublishRental(context.Background(), rental)
	if err != nil {
		t.Fatalf("PublishRental() error = %v", err)
	}

	select {
	case msg := <-poisoned:
		msg.Ack()
		if msg.UUID != id {
			t.Errorf("poisoned message UUID = %s, want %s", msg.UUID, id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("message never reached the poison queue")
	}

	recorder.mu.Lock()
	calls := recorder.calls
	recorder.mu.Unlock()
	if calls != 3 {
		t.Errorf("ApplyRental calls = %d, want 3 (1 + 2 retries)", calls)
	}
	if s := handler.Stats(); s.Failed != 3 {
		t.Errorf("Stats().Failed = %d, want 3", s.Failed)
	}
}

func TestPublisher_RejectsInvalidRentals(t *testing.T) {
	t.Parallel()
	pub := NewPublisher(nil, testTopic) // never reached

	tests := []struct {
		name   string
		rental models.Rental
	}{
		{"active", models.Rental{CustomerID: "1", CarID: "C1", RentTime: t0}},
		{"return before rent", models.Rental{CustomerID: "1", CarID: "C1", RentTime: t0, ReturnTime: t0.Add(-time.Hour)}},
		{"missing customer", models.Rental{CarID: "C1", RentTime: t0, ReturnTime: t0.Add(time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := pub.PublishRental(context.Background(), tt.rental); !errors.Is(err, models.ErrInvalidRental) {
				t.Errorf("PublishRental() error = %v, want ErrInvalidRental", err)
			}
		})
	}
}

func TestPublisher_Closed(t *testing.T) {
	t.Parallel()
	pub := NewPublisher(nil, testTopic)
	_ = pub.Close()

	rental := models.Rental{CustomerID: "1", CarID: "C1", RentTime: t0, ReturnTime: t0.Add(time.Hour)}
	if _, err := pub.PublishRental(context.Background(), rental); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("PublishRental() error = %v, want ErrPublisherClosed", err)
	}
}

func TestRentalHandler_DropsBadPayloads(t *testing.T) {
	t.Parallel()
	recorder := newFakeRecorder()
	h, err := NewRentalHandler(recorder, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRentalHandler() error = %v", err)
	}

	payloads := [][]byte{
		[]byte("not json"),
		[]byte(`{"event_id":"e1","customer_id":"1","car_id":"C1","rent_time":"2025-05-01T08:00:00Z"}`),
		[]byte(`{"event_id":"e2","customer_id":"1","car_id":"C1","rent_time":"2025-05-01T08:00:00Z","return_time":"2025-05-01T07:00:00Z"}`),
	}
	for i, p := range payloads {
		if err := h.Handle(message.NewMessage(watermill.NewUUID(), p)); err != nil {
			t.Errorf("Handle(payload %d) error = %v, want nil (acked)", i, err)
		}
	}

	if recorder.calls != 0 {
		t.Errorf("ApplyRental called %d times for bad payloads", recorder.calls)
	}
	if s := h.Stats(); s.Rejected != 3 {
		t.Errorf("Stats().Rejected = %d, want 3", s.Rejected)
	}
}

func TestRentalHandler_InvalidFromRecorderIsRejected(t *testing.T) {
	t.Parallel()
	recorder := newFakeRecorder()
	recorder.err = models.ErrInvalidRental
	h, _ := NewRentalHandler(recorder, nil, zerolog.Nop())

	payload, err := NewSerializer().Marshal(&models.RentalCompletedEvent{
		EventID: "e3", CustomerID: "1", CarID: "C1", RentTime: t0, ReturnTime: t0.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := h.Handle(message.NewMessage("e3", payload)); err != nil {
		t.Errorf("Handle() error = %v, want nil", err)
	}
}

// rebuildingWriter starts a graph rebuild right after each save and gives
// it a moment to finish before returning.
type rebuildingWriter struct {
	*store.Memory
	svc     *analytics.Service
	builds  sync.WaitGroup
	settled chan bool
}

func (w *rebuildingWriter) SaveRental(ctx context.Context, r *models.Rental) error {
	if err := w.Memory.SaveRental(ctx, r); err != nil {
		return err
	}
	done := make(chan struct{})
	w.builds.Add(1)
	go func() {
		defer w.builds.Done()
		defer close(done)
		_, _ = w.svc.Build(context.Background())
	}()
	select {
	case <-done:
		w.settled <- true
	case <-time.After(50 * time.Millisecond):
		w.settled <- false
	}
	return nil
}

func TestRentalHandler_RebuildDuringSaveCountsRentalOnce(t *testing.T) {
	t.Parallel()
	mem := store.NewMemory()
	carCache, err := cache.NewLRU[string, models.Car](10)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}
	custCache, err := cache.NewLRU[string, models.Customer](10)
	if err != nil {
		t.Fatalf("NewLRU() error = %v", err)
	}
	svc, err := analytics.New(analytics.Deps{
		History:       mem,
		Cars:          mem,
		Customers:     mem,
		CarCache:      carCache,
		CustomerCache: custCache,
		Logger:        zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("analytics.New() error = %v", err)
	}

	w := &rebuildingWriter{Memory: mem, svc: svc, settled: make(chan bool, 1)}
	h, err := NewRentalHandler(svc, w, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRentalHandler() error = %v", err)
	}

	payload, err := NewSerializer().Marshal(&models.RentalCompletedEvent{
		EventID: "e4", CustomerID: "C1", CarID: "X", RentTime: t0, ReturnTime: t0.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if err := h.Handle(message.NewMessage("e4", payload)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	w.builds.Wait()

	if <-w.settled {
		t.Error("rebuild finished while the rental was being applied")
	}
	if edges := svc.Graph().Edges("C1"); len(edges) != 1 {
		t.Errorf("Edges(C1) = %+v, want exactly one rental", edges)
	}
	if got := svc.Graph().CarsRentedBy("C1"); len(got) != 1 || got[0] != "X" {
		t.Errorf("CarsRentedBy(C1) = %v, want [X]", got)
	}
}

func TestNewRentalHandler_RequiresRecorder(t *testing.T) {
	t.Parallel()
	if _, err := NewRentalHandler(nil, nil, zerolog.Nop()); err == nil {
		t.Error("NewRentalHandler(nil) succeeded")
	}
}

func TestSharedSubscriber_SurvivesRouterRestart(t *testing.T) {
	t.Parallel()

	cfg := testEventsConfig()
	logger := watermill.NopLogger{}
	pubSub := NewPubSub(cfg, logger)
	t.Cleanup(func() { _ = pubSub.Close() })

	recorder := newFakeRecorder()
	handler, err := NewRentalHandler(recorder, store.NewMemory(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRentalHandler() error = %v", err)
	}
	pub := NewPublisher(pubSub, cfg.Topic)

	runOnce := func(rental models.Rental) {
		router, err := NewRouter(RouterConfigFrom(cfg), pubSub, logger)
		if err != nil {
			t.Fatalf("NewRouter() error = %v", err)
		}
		router.AddConsumerHandler("rentals", cfg.Topic, SharedSubscriber(pubSub), handler.Handle)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = router.Run(ctx)
		}()
		<-router.Running()

		if _, err := pub.PublishRental(context.Background(), rental); err != nil {
			t.Fatalf("PublishRental() error = %v", err)
		}
		select {
		case <-recorder.done:
		case <-time.After(2 * time.Second):
			t.Fatal("rental was not recorded")
		}

		cancel()
		_ = router.Close()
		<-done
	}

	runOnce(models.Rental{CustomerID: "5551234", CarID: "C1", RentTime: t0, ReturnTime: t0.Add(time.Hour)})
	runOnce(models.Rental{CustomerID: "5551234", CarID: "C2", RentTime: t0, ReturnTime: t0.Add(2 * time.Hour)})

	if got := handler.Stats().Applied; got != 2 {
		t.Errorf("Applied = %d, want 2", got)
	}
}
