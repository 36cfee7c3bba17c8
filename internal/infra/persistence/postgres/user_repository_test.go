package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"usermgmt/internal/domain/entity"
	domainerrors "usermgmt/internal/domain/errors"
	"usermgmt/internal/domain/repository"
	"usermgmt/internal/errors"
	"usermgmt/internal/infra/metrics"
	"usermgmt/internal/infra/persistence/model"
	"usermgmt/internal/infra/persistence/sqlite"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory database with the users table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newUser(i int) *entity.User {
	return &entity.User{
		FirstName: "Test",
		LastName:  fmt.Sprintf("User %d", i),
		Email:     fmt.Sprintf("user%d@gmail.com", i),
		Password:  "$2a$10$hashedpasswordplaceholder",
		Role:      entity.RoleUser,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), nil)

	user := newUser(0)
	require.NoError(t, repo.Create(ctx, user))
	assert.Positive(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "user0@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Test", byEmail.FirstName)
	assert.Equal(t, "User 0", byEmail.LastName)
	assert.Equal(t, entity.RoleUser, byEmail.Role)
	assert.Equal(t, user.Password, byEmail.Password)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "user0@gmail.com", byID.Email)
}

func TestUserRepository_FindMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), nil)

	_, err := repo.FindByEmail(ctx, "nobody@gmail.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)

	require.NoError(t, repo.Create(ctx, newUser(1)))

	err := repo.Create(ctx, newUser(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))

	var count int64
	require.NoError(t, db.Model(&model.UserModel{}).Where("email = ?", "user1@gmail.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_ConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := repo.Create(ctx, newUser(7))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domainerrors.ErrUserAlreadyExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
}

func TestUserRepository_FindAllOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), nil)

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for i := range 3 {
		require.NoError(t, repo.Create(ctx, newUser(i)))
	}

	users, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, u := range users {
		assert.Equal(t, fmt.Sprintf("user%d@gmail.com", i), u.Email)
		if i > 0 {
			assert.Greater(t, u.ID, users[i-1].ID)
		}
	}
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), nil)

	user := newUser(0)
	require.NoError(t, repo.Create(ctx, user))

	user.FirstName = "Actualizado"
	user.LastName = "Apellido"
	user.Email = "actualizar@gmail.com"
	user.Role = entity.RoleAdmin
	require.NoError(t, repo.Update(ctx, user))

	_, err := repo.FindByEmail(ctx, "user0@gmail.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	got, err := repo.FindByEmail(ctx, "actualizar@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Actualizado", got.FirstName)
	assert.Equal(t, "Apellido", got.LastName)
	assert.Equal(t, entity.RoleAdmin, got.Role)
}

func TestUserRepository_UpdateToTakenEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), nil)

	first, second := newUser(1), newUser(2)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	second.Email = first.Email
	err := repo.Update(ctx, second)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	repo := NewUserRepository(newTestDB(t), nil)

	user := newUser(3)
	user.ID = 999
	assert.ErrorIs(t, repo.Update(context.Background(), user), repository.ErrUserNotFound)
}

func TestUserRepository_DeleteByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t), nil)

	require.NoError(t, repo.Create(ctx, newUser(0)))
	require.NoError(t, repo.DeleteByEmail(ctx, "user0@gmail.com"))

	_, err := repo.FindByEmail(ctx, "user0@gmail.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	// Unknown email is a no-op.
	assert.NoError(t, repo.DeleteByEmail(ctx, "user0@gmail.com"))
}

func TestUserRepository_RecordsMetrics(t *testing.T) {
	ctx := context.Background()
	prom := metrics.NewProm(prometheus.NewRegistry())
	repo := NewUserRepository(newTestDB(t), prom)

	require.NoError(t, repo.Create(ctx, newUser(0)))
	require.Error(t, repo.Create(ctx, newUser(0)))
	_, _ = repo.FindByEmail(ctx, "missing@gmail.com")

	assert.Equal(t, 1.0, testutil.ToFloat64(prom.DBErrorsTotal.WithLabelValues("user.create", "unique_violation")))
	assert.Equal(t, 3, testutil.CollectAndCount(prom.DBQueryDuration))
}

func TestTransactionManager_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tm := NewTransactionManager(db, nil)
	repo := NewUserRepository(db, nil)

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.UserRepo().Create(ctx, newUser(1))
	})
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "user1@gmail.com")
	require.NoError(t, err)

	sentinel := errors.New("abort")
	err = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		if err := f.UserRepo().Create(ctx, newUser(2)); err != nil {
			return err
		}

		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, err = repo.FindByEmail(ctx, "user2@gmail.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestTransactionManager_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tm := NewTransactionManager(db, nil)

	assert.Panics(t, func() {
		_ = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
			if err := f.UserRepo().Create(ctx, newUser(3)); err != nil {
				return err
			}
			panic("boom")
		})
	})

	_, err := NewUserRepository(db, nil).FindByEmail(ctx, "user3@gmail.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestTransactionManager_BeginFailure(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	called := false
	err = NewTransactionManager(db, nil).Execute(context.Background(), func(repository.RepositoryFactory) error {
		called = true

		return nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrTransactionFailed))
	assert.False(t, called)
}
