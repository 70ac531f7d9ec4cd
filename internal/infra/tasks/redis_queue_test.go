package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"projectbasis/config"
	deliverycontext "projectbasis/internal/delivery/context"
	domainerrors "projectbasis/internal/domain/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

const testApp = "projectbasis"

func newTestQueue(t *testing.T) (*redisQueue, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, client, testApp, slog.New(slog.DiscardHandler)).(*redisQueue)
	q.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	return q, mr
}

func TestRedisQueue_EnqueuePushesEnvelope(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := deliverycontext.WithRequestID(context.Background(), "req-1")

	id, err := q.Enqueue(ctx, "user.registered", "42", "a@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	items, err := mr.List(testApp)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var msg envelope
	require.NoError(t, json.Unmarshal([]byte(items[0]), &msg))
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, "user.registered", msg.Task)
	assert.Equal(t, []any{"42", "a@example.com"}, msg.Args)
	assert.Equal(t, testApp, msg.App)
	assert.Equal(t, "req-1", msg.RequestID)
	assert.True(t, msg.QueuedAt.Equal(q.now()))
}

func TestRedisQueue_EnqueueWithoutArgs(t *testing.T) {
	q, mr := newTestQueue(t)

	_, err := q.Enqueue(context.Background(), "cleanup")
	require.NoError(t, err)

	items, err := mr.List(testApp)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], `"args":[]`)
}

func TestRedisQueue_Result(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Result(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTaskResultNotReady))

	require.NoError(t, mr.Set(testApp+"-task-meta-abc",
		`{"status":"SUCCESS","result":{"sent":true},"date_done":"2026-01-02T03:04:05.000000"}`))

	result, err := q.Result(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", result.TaskID)
	assert.Equal(t, "SUCCESS", result.Status)
	assert.JSONEq(t, `{"sent":true}`, string(result.Result))
	assert.Equal(t, "2026-01-02T03:04:05.000000", result.DoneAt)

	require.NoError(t, mr.Set(testApp+"-task-meta-bad", `not json`))
	_, err = q.Result(ctx, "bad")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domainerrors.ErrTaskResultNotReady))
}

func TestNewTaskQueue_FromConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{Celery: &config.CeleryConfig{
		AppName:    testApp,
		BrokerURL:  "redis://" + mr.Addr() + "/0",
		BackendURL: "redis://" + mr.Addr() + "/0",
	}}

	lc := fxtest.NewLifecycle(t)
	queue, err := NewTaskQueue(Params{Lifecycle: lc, Config: cfg, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	lc.RequireStart()

	id, err := queue.Enqueue(context.Background(), "user.registered")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	items, err := mr.List(testApp)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	lc.RequireStop()
}

func TestNewTaskQueue_NoBrokerIsNoop(t *testing.T) {
	queue, err := NewTaskQueue(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    &config.Config{},
		Logger:    slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	id, err := queue.Enqueue(context.Background(), "user.registered", "1")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = queue.Result(context.Background(), "any")
	assert.True(t, errors.Is(err, domainerrors.ErrTaskResultNotReady))
}

func TestNewTaskQueue_BadURL(t *testing.T) {
	_, err := NewTaskQueue(Params{
		Lifecycle: fxtest.NewLifecycle(t),
		Config:    &config.Config{Celery: &config.CeleryConfig{BrokerURL: "http://not-redis"}},
		Logger:    slog.New(slog.DiscardHandler),
	})
	assert.Error(t, err)
}
