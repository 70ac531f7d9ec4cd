package handler

import (
	"projectbasis/internal/delivery/http/response"
	"projectbasis/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TaskHandler reports on background tasks.
type TaskHandler struct {
	uc usecase.TaskUsecase
}

// NewTaskHandler is the constructor for TaskHandler.
func NewTaskHandler(uc usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// GetTask returns the stored result of task :id, or 404 while it is pending.
func (h *TaskHandler) GetTask(c echo.Context) error {
	result, err := h.uc.TaskStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, result)
}
