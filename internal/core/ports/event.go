package ports

import (
	"context"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

// Notifier hands a push notification over for delivery. Callers treat it as
// best-effort: an error is logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotificationPublisher puts a notification on the message broker.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n domain.Notification) error
}
