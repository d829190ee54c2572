package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

type execCall struct {
	query string
	args  []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func TestNotifier_Notify(t *testing.T) {
	db := &fakeExecer{}
	n := domain.Notification{
		TargetUserID: "user-1",
		PushToken:    "ExponentPushToken[abc]",
		Title:        "New sponsorship request",
		Body:         "Alice would like to be your godfather",
		Data:         map[string]string{"type": domain.NotificationSponsorshipRequested},
	}

	require.NoError(t, NewNotifier(db).Notify(context.Background(), n))
	require.Len(t, db.calls, 1)

	call := db.calls[0]
	assert.Contains(t, call.query, "INSERT INTO outbox_events")
	require.Len(t, call.args, 5)

	_, err := uuid.Parse(call.args[0].(string))
	assert.NoError(t, err, "event id should be a uuid")
	assert.Equal(t, aggregateUser, call.args[1])
	assert.Equal(t, "user-1", call.args[2])
	assert.Equal(t, EventPushNotification, call.args[3])

	var decoded domain.Notification
	require.NoError(t, json.Unmarshal(call.args[4].([]byte), &decoded))
	assert.Equal(t, n, decoded)
}

func TestNotifier_NotifyError(t *testing.T) {
	boom := errors.New("connection reset")
	db := &fakeExecer{err: boom}

	err := NewNotifier(db).Notify(context.Background(), domain.Notification{TargetUserID: "user-1"})
	assert.ErrorIs(t, err, boom)
}
