// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"projectbasis/internal/domain/entity"
	"projectbasis/internal/domain/patch"

	"github.com/google/uuid"
)

// TaskUserRegistered is published after a user account is committed.
const TaskUserRegistered = "user.registered"

// MaxPageSize caps list requests.
const MaxPageSize = 100

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new user.
type RegisterUserInput struct {
	Name     *string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput carries the profile fields to change. Unset fields are kept.
type UpdateProfileInput struct {
	Name patch.Field[string]
}

// ListUsersInput pages through users.
type ListUsersInput struct {
	Offset int
	Limit  int
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
	// TaskID identifies the follow-up task, empty when none was published.
	TaskID string
}

// LoginOutput returns the generated token after a successful login.
type LoginOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64 // seconds
	User        *entity.User
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context, input *ListUsersInput) ([]*entity.User, error)
}
