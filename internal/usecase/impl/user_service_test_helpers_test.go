package impl

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"projectbasis/internal/domain/repository"
	"projectbasis/internal/domain/service"
	"projectbasis/internal/infra/auth"
	"projectbasis/internal/infra/persistence/postgres"
	"projectbasis/internal/usecase"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// mockTaskQueue records published tasks.
type mockTaskQueue struct {
	mock.Mock
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, task string, args ...any) (string, error) {
	called := m.Called(ctx, task, args)

	return called.String(0), called.Error(1)
}

func (m *mockTaskQueue) Result(ctx context.Context, taskID string) (*service.TaskResult, error) {
	called := m.Called(ctx, taskID)
	result, _ := called.Get(0).(*service.TaskResult)

	return result, called.Error(1)
}

// mockPasswordHasher lets tests force hashing failures.
type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	called := m.Called(password)

	return called.String(0), called.Error(1)
}

func (m *mockPasswordHasher) Check(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service      usecase.UserUsecase
	userRepo     repository.UserRepository
	tokenService service.TokenService
	taskQueue    *mockTaskQueue
}

type fixtureOption func(*UserServiceParams)

func withHasher(hasher service.PasswordHasher) fixtureOption {
	return func(p *UserServiceParams) { p.Hasher = hasher }
}

func withoutTaskQueue() fixtureOption {
	return func(p *UserServiceParams) { p.TaskQueue = nil }
}

func createTestUserService(t *testing.T, opts ...fixtureOption) userServiceFixtures {
	t.Helper()

	db := newTestDB(t)
	logger := newDiscardLogger()

	tokenService, err := auth.NewJWTServiceWithSecret("usecase-test-secret", "HS256")
	require.NoError(t, err)

	userRepo := postgres.NewUserRepository(db, logger)
	taskQueue := &mockTaskQueue{}
	t.Cleanup(func() { taskQueue.AssertExpectations(t) })

	params := UserServiceParams{
		TxManager:    postgres.NewTransactionManager(db, logger),
		UserRepo:     userRepo,
		Hasher:       auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		TokenService: tokenService,
		TaskQueue:    taskQueue,
		Logger:       logger,
	}
	for _, opt := range opts {
		opt(&params)
	}

	return userServiceFixtures{
		service:      NewUserService(params),
		userRepo:     userRepo,
		tokenService: tokenService,
		taskQueue:    taskQueue,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.SyncSchema(db))

	return db
}
