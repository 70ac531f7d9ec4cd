package repository

import (
	"context"

	"projectbasis/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	Repository[entity.User, uuid.UUID, entity.UserPatch]

	// FindByEmail retrieves a single user by their email address.
	// It returns nil without error when no user has that email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
