//go:build integration

package outbox_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/outbox"
	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/repository"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/testutil/containers"
	"github.com/AchilleasB/parrainage/matching-service/internal/testutil/mocks"
)

func TestRelay_DeliversNotifiedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg := containers.NewPostgresContainer(t)
	require.NoError(t, repository.RunMigrations(ctx, pg.DB))

	notifier := outbox.NewNotifier(pg.DB)
	publisher := mocks.NewMockNotificationPublisher()
	relay := outbox.NewRelay(pg.DB, pg.URL, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// written before the relay starts: picked up by the startup sweep
	backlog := domain.Notification{TargetUserID: "user-1", PushToken: "token-1", Title: "backlog"}
	require.NoError(t, notifier.Notify(ctx, backlog))

	done := make(chan error, 1)
	go func() { done <- relay.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(publisher.GetPublished()) == 1
	}, 10*time.Second, 50*time.Millisecond)

	// written while listening: delivered through NOTIFY
	live := domain.Notification{TargetUserID: "user-2", PushToken: "token-2", Title: "live"}
	require.NoError(t, notifier.Notify(ctx, live))

	require.Eventually(t, func() bool {
		return len(publisher.GetPublished()) == 2
	}, 10*time.Second, 50*time.Millisecond)

	published := publisher.GetPublished()
	assert.Equal(t, backlog, published[0])
	assert.Equal(t, live, published[1])

	var pending int
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outbox_events WHERE processed_at IS NULL`).Scan(&pending))
	assert.Zero(t, pending)
	assert.True(t, relay.IsReady())

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
}
