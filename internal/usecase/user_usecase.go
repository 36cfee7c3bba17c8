// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"usermgmt/internal/domain/entity"
)

// --- Input DTOs ---

// AddUserInput defines the data required to create a user.
// Password is plaintext here and is hashed before it reaches the store.
type AddUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// UpdateUserInput identifies a user by Email and replaces its mutable fields.
type UpdateUserInput struct {
	Email     string
	NewEmail  *string // nil keeps the current email
	FirstName string
	LastName  string
	Password  *string // nil or empty keeps the stored hash
	Role      string
}

// UserUsecase defines the interface for user-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Add(ctx context.Context, input *AddUserInput) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	DeleteByEmail(ctx context.Context, email string) error
	Update(ctx context.Context, input *UpdateUserInput) (*entity.User, error)
}
