package config

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// The name parameter uniquely identifies the circuit breaker instance.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	switch name {
	case "Redis-Auth":
		timeout = 5 * time.Second // matches the readiness probe timeout
	case "PostgreSQL", "Relay-PostgreSQL":
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second // RabbitMQ and anything else
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Error("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}
