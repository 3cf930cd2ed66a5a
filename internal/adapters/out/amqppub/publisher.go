// Package amqppub publishes committed order lifecycle events to a RabbitMQ
// topic exchange. Routing keys are the event names, e.g. order.delivered.
package amqppub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

const contentType = "application/json"

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher implements ports.EventPublisher.
type Publisher struct {
	ch       Channel
	exchange string
}

var _ ports.EventPublisher = (*Publisher)(nil)

func NewPublisher(ch Channel, exchange string) (*Publisher, error) {
	if ch == nil {
		return nil, errs.NewValueIsRequiredError("channel")
	}
	if exchange == "" {
		return nil, errs.NewValueIsRequiredError("exchange")
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

// Publish sends every event as a persistent JSON message. It keeps going
// after a failed event and returns all failures joined.
func (p *Publisher) Publish(ctx context.Context, events []order.StatusChanged) error {
	var errList []error
	for _, e := range events {
		body, err := json.Marshal(messageOf(e))
		if err != nil {
			errList = append(errList, err)
			continue
		}

		err = p.ch.PublishWithContext(ctx, p.exchange, e.EventName(), false, false, amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  contentType,
			Type:         e.EventName(),
			Timestamp:    e.At,
			Body:         body,
		})
		if err != nil {
			errList = append(errList, fmt.Errorf("publish %s for order %s: %w", e.EventName(), e.OrderID, err))
		}
	}
	return errors.Join(errList...)
}

// LoggingPublisher stands in for the broker when none is configured.
type LoggingPublisher struct {
	logger *slog.Logger
}

var _ ports.EventPublisher = (*LoggingPublisher)(nil)

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger.With("component", "event_log")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, events []order.StatusChanged) error {
	for _, e := range events {
		m := messageOf(e)
		p.logger.InfoContext(ctx, e.EventName(),
			"order_id", m.OrderID,
			"from", m.From,
			"to", m.To,
			"action", m.Action,
			"actor_role", m.ActorRole,
			"driver_id", m.DriverID,
		)
	}
	return nil
}
