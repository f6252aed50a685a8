package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
)

// Submitter accepts processing requests.
type Submitter interface {
	Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error)
}

// Consumer feeds processing commands from a queue to a Submitter.
type Consumer struct {
	ch        Channel
	queue     string
	submitter Submitter
	logger    *slog.Logger
}

// NewConsumer creates a consumer for queue on client's channel.
func NewConsumer(client *Client, queue string, submitter Submitter, logger *slog.Logger) *Consumer {
	return &Consumer{
		ch:        client.Channel(),
		queue:     queue,
		submitter: submitter,
		logger:    logging.NewComponentLogger(logger, "broker-consumer"),
	}
}

// Run consumes until ctx ends or the channel closes. Each command is
// acknowledged once the orchestrator accepted or permanently rejected it.
func (c *Consumer) Run(ctx context.Context) error {
	if err := declareQueue(c.ch, c.queue); err != nil {
		return err
	}
	if err := c.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("consuming commands", logging.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("broker: delivery channel closed")
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery. Malformed or rejected commands are dropped;
// transient failures are requeued.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	requestID := d.CorrelationId
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = services.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, c.logger)

	var cmd pipeline.Command
	if err := json.Unmarshal(d.Body, &cmd); err != nil {
		logging.WarnWithContext(logger, "malformed command dropped", "command_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "video not processed"),
		)
		c.settle(logger, d, false)
		return
	}

	task, err := c.submitter.Submit(ctx, cmd.Request())
	switch {
	case err == nil:
		logger.Info("command accepted",
			logging.String(logging.FieldVideoID, task.VideoID),
			logging.String(logging.FieldEventType, "command_accepted"),
		)
		c.ack(logger, d)
	case errors.Is(err, services.ErrTransient) || ctx.Err() != nil:
		logging.WarnWithContext(logger, "command requeued", "command_requeued",
			logging.String(logging.FieldVideoID, cmd.VideoID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "command retried later"),
		)
		c.settle(logger, d, true)
	default:
		logging.WarnWithContext(logger, "command rejected", "command_rejected",
			logging.String(logging.FieldVideoID, cmd.VideoID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "video not processed"),
		)
		c.settle(logger, d, false)
	}
}

func (c *Consumer) ack(logger *slog.Logger, d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		logger.Warn("ack failed", logging.Error(err))
	}
}

func (c *Consumer) settle(logger *slog.Logger, d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		logger.Warn("nack failed", logging.Error(err))
	}
}
