package postgres

import (
	"context"
	"testing"

	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/patch"
	"projectbasis/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := newPersonRepository(newTestDB(t))

	created, err := repo.Create(ctx, &person{Name: "test", Age: intPtr(10)})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "test", got.Name)
	require.NotNil(t, got.Age)
	assert.Equal(t, 10, *got.Age)

	updated, err := repo.Update(ctx, created.ID, personPatch{Name: patch.Set("updated_test")})
	require.NoError(t, err)
	assert.Equal(t, "updated_test", updated.Name)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 10, *updated.Age)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := newPersonRepository(newTestDB(t))

	_, err := repo.GetByID(ctx, 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.HTTPCode())
	assert.Equal(t, "Not found record in model person", appErr.Message())
	assert.Equal(t, "id=42", appErr.Details())

	_, err = repo.Update(ctx, 42, personPatch{Name: patch.Set("x")})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	err = repo.Delete(ctx, 42)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestRepository_UpdatePatchStates(t *testing.T) {
	ctx := context.Background()
	repo := newPersonRepository(newTestDB(t))

	created, err := repo.Create(ctx, &person{Name: "ada", Age: intPtr(36)})
	require.NoError(t, err)

	unchanged, err := repo.Update(ctx, created.ID, personPatch{})
	require.NoError(t, err)
	assert.Equal(t, "ada", unchanged.Name)
	require.NotNil(t, unchanged.Age)
	assert.Equal(t, 36, *unchanged.Age)

	cleared, err := repo.Update(ctx, created.ID, personPatch{Age: patch.Null[int]()})
	require.NoError(t, err)
	assert.Equal(t, "ada", cleared.Name)
	assert.Nil(t, cleared.Age)

	reloaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Age)
}

func TestRepository_QueriesOnEmptyMatch(t *testing.T) {
	ctx := context.Background()
	repo := newPersonRepository(newTestDB(t))

	_, err := repo.Create(ctx, &person{Name: "someone", Age: intPtr(20)})
	require.NoError(t, err)

	nobody := repository.Eq("name", "nobody")

	count, err := repo.Count(ctx, nobody)
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := repo.Exists(ctx, nobody)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.Exists(ctx, repository.Eq("name", "someone"))
	require.NoError(t, err)
	assert.True(t, exists)

	none, err := repo.GetByConditions(ctx, repository.Page{Limit: 0})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	one, err := repo.GetOneByConditions(ctx, nobody)
	require.NoError(t, err)
	assert.Nil(t, one)
}

func TestRepository_ListingAndConditions(t *testing.T) {
	ctx := context.Background()
	repo := newPersonRepository(newTestDB(t))

	for i := range 12 {
		_, err := repo.Create(ctx, &person{Name: "p", Age: intPtr(i * 10)})
		require.NoError(t, err)
	}

	firstPage, err := repo.GetAll(ctx, 0, repository.DefaultLimit)
	require.NoError(t, err)
	assert.Len(t, firstPage, repository.DefaultLimit)

	rest, err := repo.GetAll(ctx, 10, repository.DefaultLimit)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	all, err := repo.GetByConditions(ctx, repository.NoLimit)
	require.NoError(t, err)
	assert.Len(t, all, 12)

	adults, err := repo.GetByConditions(ctx, repository.FirstPage,
		repository.Where("age >= ?", 18),
		repository.Where("age < ?", 60),
	)
	require.NoError(t, err)
	assert.Len(t, adults, 4)

	count, err := repo.Count(ctx, repository.Where("age >= ?", 100))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	oldest, err := repo.GetOneByConditions(ctx, repository.Eq("age", 110))
	require.NoError(t, err)
	require.NotNil(t, oldest)
	assert.Equal(t, 110, *oldest.Age)
}

func TestRepository_StoreErrorsAreNotTranslated(t *testing.T) {
	ctx := context.Background()
	repo := newPersonRepository(newTestDB(t))

	_, err := repo.Create(ctx, &person{Name: "too old", Age: intPtr(130)})
	require.Error(t, err)
	assert.True(t, isCheckConstraintViolation(err))
	assert.Equal(t, "check", constraintKind(err))

	var appErr domainerrors.AppError
	assert.False(t, errors.As(err, &appErr))

	created, err := repo.Create(ctx, &person{Name: "fine", Age: intPtr(30)})
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, personPatch{Age: patch.Set(-1)})
	require.Error(t, err)
	assert.True(t, isCheckConstraintViolation(err))
}
