// Package tasks publishes background work to a redis broker and reads the
// results workers leave in the result backend.
package tasks

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	deliverycontext "projectbasis/internal/delivery/context"
	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// envelope is the message pushed onto the broker list.
type envelope struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Args      []any     `json:"args"`
	App       string    `json:"app"`
	RequestID string    `json:"request_id,omitempty"` // For distributed tracing
	QueuedAt  time.Time `json:"queued_at"`
}

type redisQueue struct {
	broker  *redis.Client
	backend *redis.Client
	appName string
	logger  *slog.Logger
	now     func() time.Time
}

// NewRedisQueue builds a TaskQueue that pushes onto the list named appName on
// broker and reads results from backend. broker and backend may be the same client.
func NewRedisQueue(broker, backend *redis.Client, appName string, logger *slog.Logger) service.TaskQueue {
	return &redisQueue{
		broker:  broker,
		backend: backend,
		appName: appName,
		logger:  logger,
		now:     time.Now,
	}
}

// Enqueue pushes a task envelope and returns the generated task id.
func (q *redisQueue) Enqueue(ctx context.Context, task string, args ...any) (string, error) {
	if args == nil {
		args = []any{}
	}

	msg := envelope{
		ID:        uuid.NewString(),
		Task:      task,
		Args:      args,
		App:       q.appName,
		RequestID: deliverycontext.RequestID(ctx),
		QueuedAt:  q.now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", errors.Wrapf(err, "encode task %s", task)
	}

	if err := q.broker.LPush(ctx, q.appName, body).Err(); err != nil {
		return "", errors.Wrapf(err, "enqueue task %s", task)
	}

	q.logger.InfoContext(ctx, "Task enqueued",
		slog.String("task", task),
		slog.String("task_id", msg.ID),
		slog.String("queue", q.appName),
	)

	return msg.ID, nil
}

// Result reads the stored outcome of taskID from the result backend.
func (q *redisQueue) Result(ctx context.Context, taskID string) (*service.TaskResult, error) {
	raw, err := q.backend.Get(ctx, q.resultKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domainerrors.ErrTaskResultNotReady.WrapMessage(taskID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read result of task %s", taskID)
	}

	var result service.TaskResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Wrapf(err, "decode result of task %s", taskID)
	}
	if result.TaskID == "" {
		result.TaskID = taskID
	}

	return &result, nil
}

func (q *redisQueue) resultKey(taskID string) string {
	return q.appName + "-task-meta-" + taskID
}

// noopQueue is used when no broker is configured. Nothing is published.
type noopQueue struct {
	logger *slog.Logger
}

func (q *noopQueue) Enqueue(ctx context.Context, task string, _ ...any) (string, error) {
	q.logger.DebugContext(ctx, "Task broker disabled, skipping", slog.String("task", task))

	return "", nil
}

func (q *noopQueue) Result(_ context.Context, taskID string) (*service.TaskResult, error) {
	return nil, domainerrors.ErrTaskResultNotReady.WrapMessage(taskID)
}
