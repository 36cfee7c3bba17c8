// Package postgres contains the concrete implementation of the persistence layer using GORM.
// The same repository serves the sqlite driver; only the connection differs.
package postgres

import (
	"context"

	"usermgmt/internal/domain/entity"
	domainerrors "usermgmt/internal/domain/errors"
	"usermgmt/internal/domain/repository"
	"usermgmt/internal/infra/metrics"
	"usermgmt/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the domain UserRepository interface using GORM.
type userRepository struct {
	db   *gorm.DB
	prom *metrics.Prom
}

// NewUserRepository is the constructor for userRepository.
// prom may be nil, in which case no DB metrics are recorded.
func NewUserRepository(db *gorm.DB, prom *metrics.Prom) repository.UserRepository {
	return &userRepository{
		db:   db,
		prom: prom,
	}
}

// FindAll returns every user ordered by id.
func (repo *userRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	var rows []*model.UserModel

	err := repo.prom.ObserveDB("user.find_all", func() error {
		return repo.db.WithContext(ctx).Order("id").Find(&rows).Error
	})
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toUserDomain(row))
	}

	return users, nil
}

// FindByID retrieves a single user by id.
func (repo *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return repo.first(ctx, "user.find_by_id", "id = ?", id)
}

// FindByEmail retrieves a single user by their email address.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.first(ctx, "user.find_by_email", "email = ?", email)
}

func (repo *userRepository) first(ctx context.Context, op, cond string, arg any) (*entity.User, error) {
	var row model.UserModel

	err := repo.prom.ObserveDB(op, func() error {
		err := repo.db.WithContext(ctx).Where(cond, arg).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrUserNotFound
		}

		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return toUserDomain(&row), nil
}

// Create persists a new user. Email uniqueness is left to the unique index so
// concurrent inserts of the same address cannot both succeed.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	userM.ID = 0

	err := repo.prom.ObserveDB("user.create", func() error {
		return repo.db.WithContext(ctx).Create(userM).Error
	})
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update overwrites every column of an existing user.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	var affected int64
	err := repo.prom.ObserveDB("user.update", func() error {
		result := repo.db.WithContext(ctx).
			Model(userM).
			Select("first_name", "last_name", "email", "password", "role", "updated_at").
			Updates(userM)
		affected = result.RowsAffected

		return result.Error
	})
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update user")
	}
	if affected == 0 {
		return repository.ErrUserNotFound
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// DeleteByEmail hard-deletes the user. An unknown email affects no rows and is not an error.
func (repo *userRepository) DeleteByEmail(ctx context.Context, email string) error {
	err := repo.prom.ObserveDB("user.delete_by_email", func() error {
		return repo.db.WithContext(ctx).Where("email = ?", email).Delete(&model.UserModel{}).Error
	})
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete user")
	}

	return nil
}

// --- Mapper Functions ---

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:        data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
		Role:      entity.Role(data.Role),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:        data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
		Role:      data.Role.String(),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
