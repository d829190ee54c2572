package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/messaging"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func notification() domain.Notification {
	return domain.Notification{
		TargetUserID: "user-1",
		PushToken:    "ExponentPushToken[abc]",
		Title:        "New sponsorship request",
		Body:         "Jean would like to be your godfather",
		Data:         map[string]string{"type": domain.NotificationSponsorshipRequested, "sponsorship_id": "sp-1"},
	}
}

func TestPublishNotification(t *testing.T) {
	ch := &fakeChannel{}
	broker := messaging.NewBroker(ch, "push_notifications")

	require.NoError(t, broker.PublishNotification(context.Background(), notification()))

	require.Len(t, ch.messages, 1)
	got := ch.messages[0]
	assert.Equal(t, "", got.exchange)
	assert.Equal(t, "push_notifications", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, domain.NotificationSponsorshipRequested, got.msg.Type)

	var decoded domain.Notification
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, notification(), decoded)
}

func TestPublishNotification_CancelledContext(t *testing.T) {
	ch := &fakeChannel{}
	broker := messaging.NewBroker(ch, "push_notifications")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, broker.PublishNotification(ctx, notification()), context.Canceled)
	assert.Empty(t, ch.messages)
}

func TestPublishNotification_BreakerOpensAfterFailures(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	broker := messaging.NewBroker(ch, "push_notifications")

	for i := 0; i < 3; i++ {
		assert.Error(t, broker.PublishNotification(context.Background(), notification()))
	}
	assert.False(t, broker.IsReady())

	ch.err = nil
	err := broker.PublishNotification(context.Background(), notification())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Empty(t, ch.messages)
}
