// Package queue consumes enqueued webhook events and drives the event
// use case for each message.
package queue

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/drover/pkg/domain/interfaces"
	"github.com/m-mizutani/drover/pkg/domain/model"
)

// Consumer reads queue messages from a subscriber and processes them
type Consumer struct {
	subscriber  message.Subscriber
	eventUC     interfaces.EventUseCase
	topic       string
	failOnError bool
}

// Option is a functional option for Consumer configuration
type Option func(*Consumer)

// WithFailOnError makes processing failures nack the message so the
// queue redelivers it. By default failures are logged and acknowledged.
func WithFailOnError() Option {
	return func(c *Consumer) {
		c.failOnError = true
	}
}

// NewConsumer creates a queue consumer for the given topic
func NewConsumer(subscriber message.Subscriber, eventUC interfaces.EventUseCase, topic string, opts ...Option) *Consumer {
	c := &Consumer{
		subscriber: subscriber,
		eventUC:    eventUC,
		topic:      topic,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run subscribes to the topic and processes messages until the context
// is canceled or the subscriber channel closes
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return goerr.Wrap(err, "failed to subscribe", goerr.V("topic", c.topic))
	}

	logger := ctxlog.From(ctx)
	logger.Info("Queue consumer started", "topic", c.topic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg *message.Message) {
	logger := ctxlog.From(ctx)

	var queueMsg model.QueueMessage
	if err := json.Unmarshal(msg.Payload, &queueMsg); err != nil {
		// Malformed messages can never succeed, do not redeliver
		logger.Error("Failed to decode queue message",
			"error", err,
			"message_id", msg.UUID,
		)
		c.capture(err)
		msg.Ack()
		return
	}

	if err := c.eventUC.ProcessMessage(ctx, &queueMsg); err != nil {
		logger.Error("Failed to process queue message",
			"error", err,
			"message_id", msg.UUID,
			"delivery_id", queueMsg.DeliveryID,
			"event_type", queueMsg.EventType,
		)
		c.capture(err)
		if c.failOnError {
			msg.Nack()
			return
		}
		msg.Ack()
		return
	}

	msg.Ack()
}

func (c *Consumer) capture(err error) {
	if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}
