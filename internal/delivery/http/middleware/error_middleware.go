package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	deliverycontext "projectbasis/internal/delivery/context"
	domainerrors "projectbasis/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler. Every failure is
// written as {"detail": ..., "code": ...}.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		m.logger.LogAttrs(c.Request().Context(), slog.LevelError, "Unhandled error",
			slog.String("request_id", deliverycontext.RequestID(c.Request().Context())),
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.String("error", fmt.Sprintf("%+v", err)),
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		m.logger.Error("Failed to write error response", slog.Any("error", writeErr))
	}
}

// errorResponse maps err onto a status and body. AppErrors carry their own
// status, echo errors keep theirs, anything else is a 500.
func errorResponse(err error) (int, domainerrors.ErrorBody) {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode(), domainerrors.BodyOf(appErr)
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		detail := http.StatusText(httpErr.Code)
		if httpErr.Message != nil {
			detail = fmt.Sprint(httpErr.Message)
		}

		return httpErr.Code, domainerrors.ErrorBody{Detail: detail}
	}

	return http.StatusInternalServerError, domainerrors.BodyOf(domainerrors.ErrInternalError)
}

// statusOf is the status errorResponse would write for err.
func statusOf(err error) int {
	status, _ := errorResponse(err)

	return status
}
