// Package response writes successful HTTP responses. Failures are returned as
// errors and rendered by the error middleware.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Success writes data as the JSON body.
func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, data)
}

// OK writes data with status 200.
func OK(c echo.Context, data any) error {
	return Success(c, http.StatusOK, data)
}

// Created writes data with status 201.
func Created(c echo.Context, data any) error {
	return Success(c, http.StatusCreated, data)
}

// NoContent writes an empty 204 response.
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
