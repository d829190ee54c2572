package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/parrainage/matching-service/internal/config"
)

// Channel is the part of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQBroker implements ports.NotificationPublisher using RabbitMQ.
type RabbitMQBroker struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	publisher Channel
	queueName string
	cb        *gobreaker.CircuitBreaker
}

// NewRabbitMQBroker dials amqpURL and declares the durable notification queue.
func NewRabbitMQBroker(amqpURL, queueName string) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	broker := NewBroker(ch, queueName)
	broker.conn = conn
	broker.ch = ch
	return broker, nil
}

// NewBroker publishes on an already open channel.
func NewBroker(ch Channel, queueName string) *RabbitMQBroker {
	return &RabbitMQBroker{
		publisher: ch,
		queueName: queueName,
		cb:        config.NewCircuitBreaker("RabbitMQ-Publisher"),
	}
}

// IsReady reports whether the publisher breaker lets calls through.
func (rmq *RabbitMQBroker) IsReady() bool {
	if rmq.conn != nil && rmq.conn.IsClosed() {
		return false
	}
	return rmq.cb.State() != gobreaker.StateOpen
}

func (rmq *RabbitMQBroker) Close() error {
	if rmq.ch != nil {
		if err := rmq.ch.Close(); err != nil {
			return err
		}
	}
	if rmq.conn != nil {
		return rmq.conn.Close()
	}
	return nil
}
