package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "projectbasis/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve runs one GET through the middleware and returns the response and the
// request id the handler saw in its context.
func serve(t *testing.T, incoming string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	e.Use(NewRequestID(slog.New(slog.DiscardHandler)))

	var seen string
	e.GET("/", func(c echo.Context) error {
		ctx := c.Request().Context()
		seen = deliverycontext.RequestID(ctx)
		require.NotNil(t, deliverycontext.LoggerOr(ctx, nil))

		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(echo.HeaderXRequestID, incoming)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec, seen
}

func TestNewRequestID_KeepsClientID(t *testing.T) {
	rec, seen := serve(t, "client-id")

	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestNewRequestID_GeneratesID(t *testing.T) {
	rec, seen := serve(t, "")

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(echo.HeaderXRequestID))
}
