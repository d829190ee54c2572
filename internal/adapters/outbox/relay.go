package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/parrainage/matching-service/internal/config"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

const (
	notifyChannel = "outbox_channel"

	reconnectMin = 10 * time.Second
	reconnectMax = time.Minute

	singleEventTimeout = 30 * time.Second
	sweepTimeout       = time.Minute
	sweepInterval      = 90 * time.Second
	sweepBatchSize     = 100

	// no successful sweep or event for this long means not ready
	staleAfter = 5 * time.Minute
)

// Relay listens for PostgreSQL NOTIFY signals on outbox_channel and
// publishes pending push notifications to the broker.
type Relay struct {
	db        *sql.DB
	dsn       string
	publisher ports.NotificationPublisher
	breaker   *gobreaker.CircuitBreaker
	logger    *slog.Logger
	lastMoved atomic.Int64
	healthy   atomic.Bool
}

func NewRelay(db *sql.DB, dsn string, publisher ports.NotificationPublisher, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		db:        db,
		dsn:       dsn,
		publisher: publisher,
		breaker:   config.NewCircuitBreaker("Relay-PostgreSQL"),
		logger:    logger,
	}
	r.markMoved()
	r.healthy.Store(true)
	return r
}

// IsHealthy is the liveness signal: the process is responsive. An open
// breaker is degraded but recoverable and does not count against it.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady reports whether the relay can currently move events.
func (r *Relay) IsReady() bool {
	if r.breaker.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastMoved.Load())) > staleAfter {
		return false
	}
	return r.healthy.Load()
}

func (r *Relay) markMoved() {
	r.lastMoved.Store(time.Now().UnixNano())
}

// Start blocks, relaying events until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Error("outbox listener error", "event", ev, "error", err)
		}
	}

	listener := pq.NewListener(r.dsn, reconnectMin, reconnectMax, reportProblem)
	defer listener.Close()

	if err := listener.Listen(notifyChannel); err != nil {
		return fmt.Errorf("listen on %s: %w", notifyChannel, err)
	}
	r.logger.Info("outbox relay listening", "channel", notifyChannel)

	// catch up on anything written while the relay was down
	if err := r.sweep(ctx); err != nil {
		r.logger.Error("outbox startup backlog failed", "error", err)
	}

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				// the listener reconnected; events may have been missed
				r.healthy.Store(false)
				if err := r.sweep(ctx); err != nil {
					r.logger.Error("outbox catch-up after reconnect failed", "error", err)
					continue
				}
				r.healthy.Store(true)
				continue
			}

			if err := r.relayOne(ctx, notification.Extra); err != nil {
				r.logger.Error("outbox event failed", "event_id", notification.Extra, "error", err)
				continue
			}
			r.markMoved()
			r.healthy.Store(true)

		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					r.logger.Warn("outbox listener ping failed", "error", err)
				}
			}()

			if err := r.sweep(ctx); err != nil {
				r.logger.Error("outbox periodic sweep failed", "error", err)
				continue
			}
			r.markMoved()
		}
	}
}

// relayOne relays one event, locking its row so that concurrent
// relays skip it.
func (r *Relay) relayOne(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, singleEventTimeout)
	defer cancel()

	_, err := r.breaker.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var rec record
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&rec.ID, &rec.Kind, &rec.Payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.dispatch(ctx, rec); err != nil {
			return nil, err
		}
		if err := markDone(ctx, tx, rec.ID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

// sweep relays up to sweepBatchSize pending events in
// creation order. Events that fail to publish stay pending for the next sweep.
func (r *Relay) sweep(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	_, err := r.breaker.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, sweepBatchSize)
		if err != nil {
			return nil, err
		}

		var pending []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			pending = append(pending, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range pending {
			if err := r.dispatch(ctx, rec); err != nil {
				r.logger.Warn("outbox publish failed", "event_id", rec.ID, "error", err)
				continue
			}
			if err := markDone(ctx, tx, rec.ID); err != nil {
				return nil, err
			}
			r.logger.Debug("outbox event processed", "event_id", rec.ID)
		}

		return nil, tx.Commit()
	})
	return err
}

type record struct {
	ID      string
	Kind    string
	Payload []byte
}

// dispatch publishes rec. A nil error means the event is finished with,
// including payloads that can never be delivered.
func (r *Relay) dispatch(ctx context.Context, rec record) error {
	if rec.Kind != EventPushNotification {
		r.logger.Warn("outbox event of unknown type dropped", "event_id", rec.ID, "event_type", rec.Kind)
		return nil
	}

	var n domain.Notification
	if err := json.Unmarshal(rec.Payload, &n); err != nil {
		r.logger.Error("outbox payload is not a notification", "event_id", rec.ID, "error", err)
		return nil
	}
	if n.PushToken == "" {
		r.logger.Debug("notification without push token dropped", "event_id", rec.ID, "target_user_id", n.TargetUserID)
		return nil
	}

	return r.publisher.PublishNotification(ctx, n)
}

func markDone(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}
