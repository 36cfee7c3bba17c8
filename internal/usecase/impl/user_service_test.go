package impl

import (
	"context"
	"testing"

	"usermgmt/internal/domain/entity"
	domainerrors "usermgmt/internal/domain/errors"
	"usermgmt/internal/domain/repository"
	"usermgmt/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testHash = "$2a$10$abcdefghijklmnopqrstuv"

func existingUser() *entity.User {
	return &entity.User{
		ID:        1,
		FirstName: "Test",
		LastName:  "User 0",
		Email:     "user0@gmail.com",
		Password:  testHash,
		Role:      entity.RoleUser,
	}
}

func TestUserService_Add_Success(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.hasher.EXPECT().ValidatePasswordStrength("123456").Return(nil).Once()
	f.hasher.EXPECT().Hash("123456").Return(testHash, nil).Once()
	f.userRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Email == "user0@gmail.com" && u.Password == testHash && u.Role == entity.RoleUser
		})).
		Run(func(_ context.Context, u *entity.User) { u.ID = 1 }).
		Return(nil).
		Once()

	user, err := f.service.Add(ctx, &usecase.AddUserInput{
		FirstName: "Test",
		LastName:  "User 0",
		Email:     "user0@gmail.com",
		Password:  "123456",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Test", user.FirstName)
	assert.Equal(t, "User 0", user.LastName)
	assert.NotEqual(t, "123456", user.Password)
}

func TestUserService_Add_AdminRoleIsNormalized(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.hasher.EXPECT().ValidatePasswordStrength(mock.Anything).Return(nil).Once()
	f.hasher.EXPECT().Hash(mock.Anything).Return(testHash, nil).Once()
	f.userRepo.EXPECT().
		Create(ctx, mock.MatchedBy(func(u *entity.User) bool { return u.Role == entity.RoleAdmin })).
		Return(nil).
		Once()

	user, err := f.service.Add(ctx, &usecase.AddUserInput{Email: "admin@gmail.com", Password: "123456", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)
}

func TestUserService_Add_InvalidRole(t *testing.T) {
	f := createTestUserService(t)

	_, err := f.service.Add(context.Background(), &usecase.AddUserInput{Email: "a@gmail.com", Password: "123456", Role: "ROOT"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserService_Add_WeakPassword(t *testing.T) {
	f := createTestUserService(t)

	f.hasher.EXPECT().ValidatePasswordStrength("123").
		Return(domainerrors.ErrPasswordStrength.WithDetails("too short")).
		Once()

	_, err := f.service.Add(context.Background(), &usecase.AddUserInput{Email: "a@gmail.com", Password: "123"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Add_DuplicateEmail(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.hasher.EXPECT().ValidatePasswordStrength(mock.Anything).Return(nil).Once()
	f.hasher.EXPECT().Hash(mock.Anything).Return(testHash, nil).Once()
	f.userRepo.EXPECT().Create(ctx, mock.Anything).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")).
		Once()

	_, err := f.service.Add(ctx, &usecase.AddUserInput{Email: "user0@gmail.com", Password: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.HTTPCode())
}

func TestUserService_FindAll(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.userRepo.EXPECT().FindAll(ctx).Return(nil, nil).Once()

	users, err := f.service.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserService_FindAll_Error(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "failed to list users")
	f.userRepo.EXPECT().FindAll(ctx).Return(nil, dbErr).Once()

	_, err := f.service.FindAll(ctx)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())
}

func TestUserService_FindByEmail(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.userRepo.EXPECT().FindByEmail(ctx, "user0@gmail.com").Return(existingUser(), nil).Once()

	user, err := f.service.FindByEmail(ctx, " user0@gmail.com ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestUserService_FindByEmail_NotFound(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.userRepo.EXPECT().FindByEmail(ctx, "nobody@gmail.com").Return(nil, repository.ErrUserNotFound).Once()

	_, err := f.service.FindByEmail(ctx, "nobody@gmail.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserService_FindByID(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.userRepo.EXPECT().FindByID(ctx, int64(1)).Return(existingUser(), nil).Once()
	f.userRepo.EXPECT().FindByID(ctx, int64(2)).Return(nil, repository.ErrUserNotFound).Once()

	user, err := f.service.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "user0@gmail.com", user.Email)

	_, err = f.service.FindByID(ctx, 2)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))

	_, err = f.service.FindByID(ctx, 0)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestUserService_DeleteByEmail(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.userRepo.EXPECT().DeleteByEmail(ctx, "user0@gmail.com").Return(nil).Once()

	assert.NoError(t, f.service.DeleteByEmail(ctx, "user0@gmail.com"))
}

func TestUserService_Update_ChangesEveryField(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.hasher.EXPECT().ValidatePasswordStrength("nuevo123").Return(nil).Once()
	f.hasher.EXPECT().Hash("nuevo123").Return("$2a$10$newhash", nil).Once()
	f.expectTransaction()
	f.txUserRepo.EXPECT().FindByEmail(ctx, "user0@gmail.com").Return(existingUser(), nil).Once()
	f.txUserRepo.EXPECT().
		Update(ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.ID == 1 &&
				u.Email == "actualizar@gmail.com" &&
				u.FirstName == "Actualizado" &&
				u.LastName == "Apellido" &&
				u.Role == entity.RoleAdmin &&
				u.Password == "$2a$10$newhash"
		})).
		Return(nil).
		Once()

	user, err := f.service.Update(ctx, &usecase.UpdateUserInput{
		Email:     "user0@gmail.com",
		NewEmail:  ptr("actualizar@gmail.com"),
		FirstName: "Actualizado",
		LastName:  "Apellido",
		Password:  ptr("nuevo123"),
		Role:      "ADMIN",
	})

	require.NoError(t, err)
	assert.Equal(t, "actualizar@gmail.com", user.Email)
	assert.Equal(t, entity.RoleAdmin, user.Role)
}

func TestUserService_Update_WithoutPasswordKeepsHash(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.expectTransaction()
	f.txUserRepo.EXPECT().FindByEmail(ctx, "user0@gmail.com").Return(existingUser(), nil).Once()
	f.txUserRepo.EXPECT().
		Update(ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Password == testHash && u.Email == "user0@gmail.com"
		})).
		Return(nil).
		Once()

	user, err := f.service.Update(ctx, &usecase.UpdateUserInput{
		Email:     "user0@gmail.com",
		FirstName: "Renamed",
		Password:  ptr(""),
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.FirstName)
	assert.Equal(t, entity.RoleUser, user.Role)
	f.hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestUserService_Update_NotFound(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.expectTransaction()
	f.txUserRepo.EXPECT().FindByEmail(ctx, "nobody@gmail.com").Return(nil, repository.ErrUserNotFound).Once()

	_, err := f.service.Update(ctx, &usecase.UpdateUserInput{Email: "nobody@gmail.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserService_Update_EmailTaken(t *testing.T) {
	f := createTestUserService(t)
	ctx := context.Background()

	f.expectTransaction()
	f.txUserRepo.EXPECT().FindByEmail(ctx, "user0@gmail.com").Return(existingUser(), nil).Once()
	f.txUserRepo.EXPECT().Update(ctx, mock.Anything).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")).
		Once()

	_, err := f.service.Update(ctx, &usecase.UpdateUserInput{
		Email:    "user0@gmail.com",
		NewEmail: ptr("user1@gmail.com"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestUserService_Update_WeakPasswordSkipsTransaction(t *testing.T) {
	f := createTestUserService(t)

	f.hasher.EXPECT().ValidatePasswordStrength("1").
		Return(domainerrors.ErrPasswordStrength.WithDetails("too short")).
		Once()

	_, err := f.service.Update(context.Background(), &usecase.UpdateUserInput{
		Email:    "user0@gmail.com",
		Password: ptr("1"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
	f.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestUserService_Update_EmptyNewEmail(t *testing.T) {
	f := createTestUserService(t)

	_, err := f.service.Update(context.Background(), &usecase.UpdateUserInput{
		Email:    "user0@gmail.com",
		NewEmail: ptr("  "),
	})

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}
