package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

const (
	// EventPushNotification is the outbox event_type of a domain.Notification payload.
	EventPushNotification = "push_notification"

	aggregateUser = "user"
)

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Notifier appends notifications to the outbox table. An insert trigger
// signals outbox_channel so the relay picks the row up immediately.
type Notifier struct {
	db Execer
}

var _ ports.Notifier = (*Notifier)(nil)

func NewNotifier(db Execer) *Notifier {
	return &Notifier{db: db}
}

func (n *Notifier) Notify(ctx context.Context, notification domain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = n.db.ExecContext(ctx, `
		INSERT INTO outbox_events (id, aggregate_type, aggregate_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		aggregateUser,
		notification.TargetUserID,
		EventPushNotification,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}
