// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "projectbasis/internal/delivery/context"
	"projectbasis/internal/domain/entity"
	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/repository"
	"projectbasis/internal/domain/service"
	"projectbasis/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	taskQueue    service.TaskQueue
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	TaskQueue    service.TaskQueue `optional:"true"`
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		taskQueue:    params.TaskQueue,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerOr(ctx, srv.logger)
}

// RegisterUser creates an account with a unique email and announces it to
// background workers once the row is committed.
func (srv *userService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	hash, err := srv.hasher.Hash(input.Password)
	if errors.Is(err, domainerrors.ErrValidationFailed) {
		return nil, errors.WithStack(err)
	}
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	var registered *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		exists, err := userRepo.Exists(ctx, repository.Eq("email", email))
		if err != nil {
			return storeError(err, "failed to check email")
		}
		if exists {
			return domainerrors.ErrUserAlreadyExists.WrapMessage(email)
		}

		registered, err = userRepo.Create(ctx, &entity.User{
			Email:        email,
			Name:         input.Name,
			PasswordHash: hash,
		})

		return storeError(err, "failed to create user")
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registered.ID))

	return &usecase.RegisterOutput{
		User:   registered,
		TaskID: srv.announce(ctx, registered),
	}, nil
}

// announce publishes the registration task. Broker failures are logged and
// never undo a committed registration.
func (srv *userService) announce(ctx context.Context, user *entity.User) string {
	if srv.taskQueue == nil {
		return ""
	}

	taskID, err := srv.taskQueue.Enqueue(ctx, usecase.TaskUserRegistered, user.ID.String(), user.Email)
	if err != nil {
		srv.log(ctx).Warn("Failed to enqueue registration task",
			slog.Any("userID", user.ID),
			slog.Any("error", err),
		)

		return ""
	}

	return taskID
}

// Login verifies credentials and issues an access token whose subject is the user ID.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "failed to find user")
	}
	if user == nil || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("email", email))

		return nil, domainerrors.ErrInvalidCredentials
	}

	lifetime := srv.tokenService.Lifetime()
	token, err := srv.tokenService.Encode(service.Claims{
		service.ClaimSubject: user.ID.String(),
	}, int(lifetime/time.Hour))
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken: token,
		TokenType:   srv.tokenService.TokenType(),
		ExpiresIn:   int64(lifetime / time.Second),
		User:        user,
	}, nil
}

// Profile returns the user identified by userID.
func (srv *userService) Profile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "failed to load profile")
	}

	return user, nil
}

// UpdateProfile applies the set fields of input to the user's profile.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.userRepo.Update(ctx, userID, entity.UserPatch{Name: input.Name})
	if err != nil {
		return nil, storeError(err, "failed to update profile")
	}

	return user, nil
}

// DeleteAccount removes the user permanently.
func (srv *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := srv.userRepo.Delete(ctx, userID); err != nil {
		return storeError(err, "failed to delete account")
	}

	srv.log(ctx).Info("Account deleted", slog.Any("userID", userID))

	return nil
}

// ListUsers returns one page of users. The limit is capped at MaxPageSize.
func (srv *userService) ListUsers(ctx context.Context, input *usecase.ListUsersInput) ([]*entity.User, error) {
	if input.Offset < 0 || input.Limit < 0 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("offset and limit must not be negative")
	}

	users, err := srv.userRepo.GetAll(ctx, input.Offset, min(input.Limit, usecase.MaxPageSize))
	if err != nil {
		return nil, storeError(err, "failed to list users")
	}

	return users, nil
}

// storeError keeps domain errors intact and reports anything else the
// repository returned as a database failure.
func storeError(err error, details string) error {
	if err == nil {
		return nil
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return errors.Wrap(err, details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
