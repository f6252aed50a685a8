package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
)

// Publisher sends completion events to a durable queue.
type Publisher struct {
	ch     Channel
	queue  string
	logger *slog.Logger

	mu       sync.Mutex
	declared bool
}

var _ pipeline.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher for queue on client's channel.
func NewPublisher(client *Client, queue string, logger *slog.Logger) *Publisher {
	return &Publisher{
		ch:     client.Channel(),
		queue:  queue,
		logger: logging.NewComponentLogger(logger, "broker-publisher"),
	}
}

// Publish encodes event as JSON and sends it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, event pipeline.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.declared {
		if err := declareQueue(p.ch, p.queue); err != nil {
			return services.Wrap(services.ErrTransient, "broker", "publish", "queue unavailable", err)
		}
		p.declared = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         p.queue,
		Body:         body,
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		msg.CorrelationId = rid
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return services.Wrap(services.ErrTransient, "broker", "publish", "publish event", err)
	}
	logging.WithContext(ctx, p.logger).Debug("event published",
		logging.String("queue", p.queue),
		logging.Int("transcripts", len(event.Transcripts)),
	)
	return nil
}
