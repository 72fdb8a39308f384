package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned by Enqueue when the forwarder buffer is exhausted.
var ErrQueueFull = errors.New("forwarder queue is full")

// MessagePublisher delivers a serialized event to a broker queue.
type MessagePublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// Forwarder relays domain events from the in-process bus to a message broker.
// Delivery is asynchronous so request handling never waits on the broker.
type Forwarder struct {
	publisher   MessagePublisher
	retryPolicy RetryPolicy
	queuePrefix string
	queue       chan *events.Event
	logger      *zerolog.Logger
	sleep       func(ctx context.Context, d time.Duration) error

	delivered atomic.Int64
	dropped   atomic.Int64
}

func NewForwarder(publisher MessagePublisher, retry RetryPolicy, queuePrefix string, logger *zerolog.Logger) *Forwarder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Forwarder{
		publisher:   publisher,
		retryPolicy: retry.withDefaults(),
		queuePrefix: queuePrefix,
		queue:       make(chan *events.Event, models.ForwarderQueueSize),
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Attach subscribes the forwarder to every event type of the bus.
func (f *Forwarder) Attach(bus *events.EventBus) {
	bus.SubscribeAll(f.Enqueue)
}

// Enqueue buffers an event for delivery without blocking.
func (f *Forwarder) Enqueue(event *events.Event) error {
	select {
	case f.queue <- event:
		return nil
	default:
		f.dropped.Add(1)
		return ErrQueueFull
	}
}

// QueueName maps an event type to its broker queue.
func (f *Forwarder) QueueName(eventType string) string {
	if f.queuePrefix == "" {
		return eventType
	}
	return f.queuePrefix + "." + eventType
}

// Start delivers buffered events until ctx is done.
func (f *Forwarder) Start(ctx context.Context) {
	f.logger.Info().Msg("event forwarder started")
	defer f.logger.Info().
		Int64("delivered", f.delivered.Load()).
		Int64("dropped", f.dropped.Load()).
		Msg("event forwarder stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-f.queue:
			if err := f.deliver(ctx, event); err != nil {
				f.dropped.Add(1)
				f.logger.Error().Err(err).Str("event", event.Type).Msg("event dropped")
				continue
			}
			f.delivered.Add(1)
		}
	}
}

func (f *Forwarder) deliver(ctx context.Context, event *events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	queue := f.QueueName(event.Type)
	for attempt := 1; ; attempt++ {
		err = f.publisher.Publish(ctx, queue, body)
		if err == nil {
			return nil
		}
		if attempt >= f.retryPolicy.MaxRetries {
			return fmt.Errorf("publish %s after %d attempts: %w", queue, attempt, err)
		}

		delay := f.retryPolicy.NextDelay(attempt)
		f.logger.Warn().Err(err).Str("queue", queue).Int("attempt", attempt).Dur("retry_in", delay).Msg("publish failed")
		if err := f.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Stats returns the delivered and dropped counters.
func (f *Forwarder) Stats() (delivered, dropped int64) {
	return f.delivered.Load(), f.dropped.Load()
}
