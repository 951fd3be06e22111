package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp.Channel used to publish.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQSender publishes events to a durable topic exchange, routed by
// event type.
type RabbitMQSender struct {
	conn     *amqp.Connection
	ch       Publisher
	exchange string
	timeout  time.Duration
}

const defaultPublishTimeout = 5 * time.Second

// DialRabbitMQ connects and declares the exchange.
func DialRabbitMQ(url, exchange string) (*RabbitMQSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	s := NewRabbitMQSender(ch, exchange)
	s.conn = conn
	return s, nil
}

func NewRabbitMQSender(ch Publisher, exchange string) *RabbitMQSender {
	return &RabbitMQSender{ch: ch, exchange: exchange, timeout: defaultPublishTimeout}
}

func (s *RabbitMQSender) PurchaseCreated(ctx context.Context, evt Event) error {
	body, err := encode(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.ch.PublishWithContext(ctx, s.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.PurchaseID,
		Timestamp:    evt.OccurredAt,
		Type:         evt.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

func (s *RabbitMQSender) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
