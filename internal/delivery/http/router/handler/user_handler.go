// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"unicode/utf8"

	"projectbasis/internal/delivery/http/middleware"
	"projectbasis/internal/delivery/http/response"
	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/repository"
	"projectbasis/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// HeaderTaskID carries the id of the task published by a request, if any.
const HeaderTaskID = "X-Task-Id"

const (
	maxNameLength = 100
	// bcrypt only accepts passwords of up to 72 bytes.
	maxPasswordBytes = 72
)

// UserHandler holds dependencies for user-related handlers.
type UserHandler struct {
	uc     usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(uc usecase.UserUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: logger,
	}
}

// RegisterUser handles the user registration request.
func (h *UserHandler) RegisterUser(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if len(req.Password) > maxPasswordBytes {
		return domainerrors.ErrValidationFailed.WithDetails("password failed max_bytes")
	}

	output, err := h.uc.RegisterUser(c.Request().Context(), &usecase.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if output.TaskID != "" {
		c.Response().Header().Set(HeaderTaskID, output.TaskID)
	}

	return response.Created(c, toUserResponse(output.User))
}

// Login handles the user login request.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, tokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresIn:   output.ExpiresIn,
	})
}

// GetProfile returns the authenticated user.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.uc.Profile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, toUserResponse(user))
}

// UpdateProfile patches the authenticated user. A null name clears it.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("invalid profile input")
	}
	if name, ok := req.Name.Value(); ok && (name == "" || utf8.RuneCountInString(name) > maxNameLength) {
		return domainerrors.ErrValidationFailed.WithDetails("name failed length")
	}

	user, err := h.uc.UpdateProfile(c.Request().Context(), userID, &usecase.UpdateProfileInput{Name: req.Name})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, toUserResponse(user))
}

// DeleteProfile removes the authenticated user's account.
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return err
	}

	if err := h.uc.DeleteAccount(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.NoContent(c)
}

// ListUsers pages through users with ?offset=&limit=.
func (h *UserHandler) ListUsers(c echo.Context) error {
	req := listUsersRequest{Limit: repository.DefaultLimit}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	users, err := h.uc.ListUsers(c.Request().Context(), &usecase.ListUsersInput{
		Offset: req.Offset,
		Limit:  req.Limit,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.OK(c, toUserResponses(users))
}

// bindAndValidate binds the request into req and runs the echo validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request")
	}

	return c.Validate(req)
}
