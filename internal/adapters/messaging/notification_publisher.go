package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

var _ ports.NotificationPublisher = (*RabbitMQBroker)(nil)

// PublishNotification sends n as a persistent JSON message to the
// notification queue through the default exchange.
func (rmq *RabbitMQBroker) PublishNotification(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		return nil, rmq.publisher.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         n.Data["type"],
				Body:         body,
			},
		)
	})
	return err
}
