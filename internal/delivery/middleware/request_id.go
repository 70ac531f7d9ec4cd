// Package middleware holds transport-neutral echo middleware.
package middleware

import (
	"log/slog"

	deliverycontext "projectbasis/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// NewRequestID takes X-Request-Id from the request or generates one, echoes it
// on the response and puts it, with a logger tagged by it, into the request
// context. The access log reads the id back from the response header.
func NewRequestID(logger *slog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, requestID string) {
			ctx := deliverycontext.WithRequestID(c.Request().Context(), requestID)
			ctx = deliverycontext.WithLogger(ctx, logger.With(slog.String("request_id", requestID)))
			c.SetRequest(c.Request().WithContext(ctx))
		},
	})
}
