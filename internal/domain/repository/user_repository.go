// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"usermgmt/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindAll returns every stored user ordered by ID.
	FindAll(ctx context.Context) ([]*entity.User, error)

	// FindByID retrieves a single user by their store-assigned ID.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user and fills in the generated ID and timestamps.
	// A duplicate email is reported as domain errors.ErrUserAlreadyExists.
	Create(ctx context.Context, user *entity.User) error

	// Update overwrites an existing user identified by ID.
	Update(ctx context.Context, user *entity.User) error

	// DeleteByEmail removes the user with the given email. Deleting an absent email is not an error.
	DeleteByEmail(ctx context.Context, email string) error
}
