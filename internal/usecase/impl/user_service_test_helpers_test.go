package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"usermgmt/internal/domain/repository"
	mockRepo "usermgmt/internal/mocks/repository"
	mockSvc "usermgmt/internal/mocks/service"
	"usermgmt/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service     usecase.UserUsecase
	txManager   *mockRepo.MockTransactionManager
	repoFactory *mockRepo.MockRepositoryFactory
	userRepo    *mockRepo.MockUserRepository
	txUserRepo  *mockRepo.MockUserRepository
	hasher      *mockSvc.MockPasswordHasher
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestUserService(t *testing.T) userServiceFixtures {
	f := userServiceFixtures{
		txManager:   mockRepo.NewMockTransactionManager(t),
		repoFactory: mockRepo.NewMockRepositoryFactory(t),
		userRepo:    mockRepo.NewMockUserRepository(t),
		txUserRepo:  mockRepo.NewMockUserRepository(t),
		hasher:      mockSvc.NewMockPasswordHasher(t),
	}

	f.service = NewUserService(UserServiceParams{
		TxManager: f.txManager,
		UserRepo:  f.userRepo,
		Hasher:    f.hasher,
		Logger:    newDiscardLogger(),
	})

	return f
}

// expectTransaction makes the transaction manager run the callback against the tx-bound repository.
func (f userServiceFixtures) expectTransaction() {
	f.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(_ context.Context, fn func(repository.RepositoryFactory) error) error {
			return fn(f.repoFactory)
		}).
		Once()
	f.repoFactory.EXPECT().UserRepo().Return(f.txUserRepo).Once()
}

func ptr[T any](v T) *T {
	return &v
}
