package config

import "os"

// RelayConfig holds configuration for the notification outbox relay.
type RelayConfig struct {
	DatabaseURL           string
	RabbitMQURL           string
	NotificationQueueName string
	HealthAddr            string
	LogLevel              string
}

func LoadRelayConfig() *RelayConfig {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	queueName := os.Getenv("NOTIFICATION_QUEUE_NAME")
	if queueName == "" {
		queueName = "push_notifications"
	}

	healthAddr := os.Getenv("RELAY_HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = ":8090"
	}

	return &RelayConfig{
		DatabaseURL:           dbURL,
		RabbitMQURL:           rabbitURL,
		NotificationQueueName: queueName,
		HealthAddr:            healthAddr,
		LogLevel:              os.Getenv("LOG_LEVEL"),
	}
}
