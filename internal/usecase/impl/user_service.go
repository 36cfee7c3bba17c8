// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "usermgmt/internal/delivery/context"
	"usermgmt/internal/domain/entity"
	domainerrors "usermgmt/internal/domain/errors"
	"usermgmt/internal/domain/repository"
	"usermgmt/internal/domain/service"
	"usermgmt/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Add hashes the password and inserts the user. A concurrent or repeated
// insert of the same email is rejected by the store's unique index.
func (srv *userService) Add(ctx context.Context, input *usecase.AddUserInput) (*entity.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email is required")
	}

	role, ok := entity.ParseRole(input.Role)
	if !ok {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be USER or ADMIN")
	}

	hashedPassword, err := srv.hashPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("Email already registered", slog.String("email", email))
		} else {
			srv.log(ctx).Error("Failed to create user", slog.String("email", email), slog.Any("error", err))
		}

		return nil, errors.Wrap(err, "failed to create user")
	}

	srv.log(ctx).Info("User created", slog.Int64("userID", user.ID), slog.String("role", role.String()))

	return user, nil
}

// FindAll returns every user; an empty store yields an empty, non-nil slice.
func (srv *userService) FindAll(ctx context.Context) ([]*entity.User, error) {
	users, err := srv.userRepo.FindAll(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to list users", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list users")
	}
	if users == nil {
		users = []*entity.User{}
	}

	return users, nil
}

func (srv *userService) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, mapNotFound(err, "failed to find user by email")
	}

	return user, nil
}

func (srv *userService) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if id <= 0 {
		return nil, domainerrors.ErrValidationFailed.WithDetails("id must be a positive integer")
	}

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "failed to find user by id")
	}

	return user, nil
}

// DeleteByEmail removes the user. An unknown email is not an error.
func (srv *userService) DeleteByEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := srv.userRepo.DeleteByEmail(ctx, email); err != nil {
		srv.log(ctx).Error("Failed to delete user", slog.String("email", email), slog.Any("error", err))

		return errors.Wrap(err, "failed to delete user")
	}

	srv.log(ctx).Info("User deleted", slog.String("email", email))

	return nil
}

// Update looks the user up by Email and overwrites names and role. The email
// changes only when NewEmail is set and the password only when Password is non-empty.
// The lookup and the save share one transaction.
func (srv *userService) Update(ctx context.Context, input *usecase.UpdateUserInput) (*entity.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email is required")
	}

	role, ok := entity.ParseRole(input.Role)
	if !ok {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be USER or ADMIN")
	}

	newEmail := email
	if input.NewEmail != nil {
		newEmail = strings.TrimSpace(*input.NewEmail)
		if newEmail == "" {
			return nil, domainerrors.ErrValidationFailed.WithDetails("newEmail must not be empty")
		}
	}

	// Hashing is slow; keep it outside the transaction.
	var hashedPassword string
	if input.Password != nil && *input.Password != "" {
		hashed, err := srv.hashPassword(ctx, *input.Password)
		if err != nil {
			return nil, err
		}
		hashedPassword = hashed
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			return mapNotFound(err, "failed to load user for update")
		}

		user.FirstName = input.FirstName
		user.LastName = input.LastName
		user.Email = newEmail
		user.Role = role
		if hashedPassword != "" {
			user.Password = hashedPassword
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return mapNotFound(err, "failed to save user")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to update user", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user update transaction")
	}

	srv.log(ctx).Info("User updated", slog.Int64("userID", updated.ID), slog.Bool("emailChanged", newEmail != email))

	return updated, nil
}

func (srv *userService) hashPassword(ctx context.Context, password string) (string, error) {
	if err := srv.hasher.ValidatePasswordStrength(password); err != nil {
		srv.log(ctx).Warn("Password does not meet security requirements", slog.Any("error", err))

		return "", errors.Wrap(err, "password does not meet security requirements")
	}

	hashed, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password", slog.Any("error", err))

		return "", errors.Wrap(err, "failed to hash password")
	}

	return hashed, nil
}

// mapNotFound turns the repository's not-found sentinel into the 404 domain error.
func mapNotFound(err error, message string) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserNotFound.WrapMessage(message)
	}

	return errors.Wrap(err, message)
}
