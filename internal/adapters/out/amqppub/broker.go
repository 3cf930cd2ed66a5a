package amqppub

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker owns the connection and the channel events are published on.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Broker{conn: conn, ch: ch}, nil
}

func (b *Broker) Channel() *amqp.Channel {
	return b.ch
}

func (b *Broker) Close() error {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
