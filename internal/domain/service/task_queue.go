package service

import (
	"context"
	"encoding/json"
)

// TaskResult is what a worker stored for a finished task.
type TaskResult struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	DoneAt string          `json:"date_done"` // ISO-8601 as written by the worker
	Error  string          `json:"traceback,omitempty"`
}

// TaskQueue hands work to background workers through a message broker.
type TaskQueue interface {
	// Enqueue publishes a task and returns its id.
	Enqueue(ctx context.Context, task string, args ...any) (string, error)

	// Result returns the stored outcome of a task, or an error matching
	// ErrTaskResultNotReady when none has been written yet.
	Result(ctx context.Context, taskID string) (*TaskResult, error)
}
