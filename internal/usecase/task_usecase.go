package usecase

import (
	"context"

	"projectbasis/internal/domain/service"
)

// TaskUsecase exposes the outcome of background tasks.
type TaskUsecase interface {
	TaskStatus(ctx context.Context, taskID string) (*service.TaskResult, error)
}
