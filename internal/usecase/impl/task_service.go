package impl

import (
	"context"

	"projectbasis/internal/domain/service"
	"projectbasis/internal/usecase"

	"github.com/pkg/errors"
)

type taskService struct {
	taskQueue service.TaskQueue
}

// NewTaskService is the constructor for taskService.
func NewTaskService(taskQueue service.TaskQueue) usecase.TaskUsecase {
	return &taskService{taskQueue: taskQueue}
}

// TaskStatus returns what the worker stored for taskID.
func (srv *taskService) TaskStatus(ctx context.Context, taskID string) (*service.TaskResult, error) {
	result, err := srv.taskQueue.Result(ctx, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read task result")
	}

	return result, nil
}
