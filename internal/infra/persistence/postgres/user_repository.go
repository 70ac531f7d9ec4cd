package postgres

import (
	"context"
	"log/slog"

	"projectbasis/internal/domain/entity"
	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/repository"
	"projectbasis/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var userMapper = modelMapper[entity.User, model.UserModel, entity.UserPatch, uuid.UUID]{
	toDomain:   toUserDomain,
	fromDomain: fromUserDomain,
	changes:    userChanges,
	id:         func(m *model.UserModel) uuid.UUID { return m.ID },
}

// userRepository is the GORM user store.
type userRepository struct {
	*gormRepository[entity.User, model.UserModel, uuid.UUID, entity.UserPatch]
}

// NewUserRepository is the constructor for userRepository.
func NewUserRepository(db *gorm.DB, logger *slog.Logger) repository.UserRepository {
	return &userRepository{
		gormRepository: newGormRepository[entity.User, model.UserModel, uuid.UUID, entity.UserPatch](db, logger, userMapper),
	}
}

// Create inserts a user. A clash on the email index is reported as ErrUserAlreadyExists.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	created, err := repo.gormRepository.Create(ctx, user)
	if err != nil && isUniqueConstraintViolation(err) {
		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage(user.Email)
	}

	return created, err
}

// FindByEmail retrieves a user by email, or nil when none exists.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.GetOneByConditions(ctx, repository.Eq("email", email))
}

func toUserDomain(m *model.UserModel) *entity.User {
	return &entity.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromUserDomain(user *entity.User) *model.UserModel {
	return &model.UserModel{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func userChanges(p entity.UserPatch) map[string]any {
	changes := make(map[string]any)
	if v, ok := p.Name.Any(); ok {
		changes["name"] = v
	}

	return changes
}
