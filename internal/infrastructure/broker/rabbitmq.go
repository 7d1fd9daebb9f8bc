package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"reservation-backend/pkg/logger"
)

// Publisher emits domain events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// RabbitMQPublisher publishes persistent JSON messages to a durable topic exchange.
// A connection is opened per publish; event volume is a handful per settlement.
type RabbitMQPublisher struct {
	url      string
	exchange string
	dial     func(url string) (*amqp.Connection, error)
}

func NewRabbitMQPublisher(url, exchange string) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		url:      url,
		exchange: exchange,
		dial:     amqp.Dial,
	}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,
	); err != nil {
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         routingKey,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", routingKey, err)
	}

	logger.Debug("published " + routingKey)
	return nil
}

// NoopPublisher is used when RABBITMQ_ENABLED=false.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	return nil
}
