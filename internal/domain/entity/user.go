// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"projectbasis/internal/domain/patch"

	"github.com/google/uuid"
)

// User is an account that can authenticate against the service.
type User struct {
	ID           uuid.UUID // Assigned by the store on create.
	Email        string    // Unique login identifier.
	Name         *string   // Optional display name.
	PasswordHash string    // bcrypt modular crypt string, never exposed.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch is the partial update accepted by the user repository.
// Email and password are not patchable here.
type UserPatch struct {
	Name patch.Field[string]
}
