package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/pkg/kafka"
)

// Publisher delivers one event. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector buffers events from request paths and publishes them from a
// single background loop, so tracking never blocks a caller.
type Collector struct {
	publisher Publisher
	eventCh   chan Event
	logger    *slog.Logger
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan Event, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
	}
}

// Serve publishes buffered events until ctx is cancelled, then drains what
// is left with a short deadline.
func (c *Collector) Serve(ctx context.Context) error {
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
	for {
		select {
		case event := <-c.eventCh:
			c.publish(ctx, event)
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.drainRemaining(drainCtx)
			cancel()
			return ctx.Err()
		}
	}
}

func (c *Collector) String() string {
	return "analytics-collector"
}

// Track enqueues event, dropping it when the buffer is full.
func (c *Collector) Track(event Event) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "type", event.EventType())
	}
}

func (c *Collector) publish(ctx context.Context, event Event) {
	if err := c.publisher.Publish(ctx, kafka.Event{
		Key:   string(event.EventType()),
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish analytics event", "type", event.EventType(), "error", err)
	}
}

func (c *Collector) drainRemaining(ctx context.Context) {
	for {
		select {
		case event := <-c.eventCh:
			c.publish(ctx, event)
		default:
			return
		}
	}
}

// LocalPublisher feeds events straight into a message handler in-process.
// It stands in for Kafka when no broker is configured, using the same
// encoding so the aggregator sees identical payloads.
type LocalPublisher struct {
	handler kafka.MessageHandler
}

func NewLocalPublisher(handler kafka.MessageHandler) *LocalPublisher {
	return &LocalPublisher{handler: handler}
}

func (p *LocalPublisher) Publish(ctx context.Context, event kafka.Event) error {
	value, err := json.Marshal(event.Value)
	if err != nil {
		return err
	}
	return p.handler(ctx, []byte(event.Key), value)
}
