package postgres

import (
	"context"
	"log/slog"
	"reflect"

	domainerrors "projectbasis/internal/domain/errors"
	"projectbasis/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// modelMapper converts between a domain entity E, its persistence model M and
// the column changes described by a patch P.
type modelMapper[E, M, P any, ID comparable] struct {
	toDomain   func(*M) *E
	fromDomain func(*E) *M
	changes    func(P) map[string]any
	id         func(*M) ID
}

// gormRepository is the generic GORM implementation of repository.Repository.
// It is bound to whatever *gorm.DB it was built with, either the pool or a
// transaction handed out by the transaction manager, and never commits itself.
type gormRepository[E, M any, ID comparable, P any] struct {
	db     *gorm.DB
	logger *slog.Logger
	name   string
	mapper modelMapper[E, M, P, ID]
}

func newGormRepository[E, M any, ID comparable, P any](db *gorm.DB, logger *slog.Logger, mapper modelMapper[E, M, P, ID]) *gormRepository[E, M, ID, P] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	name := reflect.TypeFor[E]().Name()

	return &gormRepository[E, M, ID, P]{
		db:     db,
		logger: logger.With(slog.String("model", name)),
		name:   name,
		mapper: mapper,
	}
}

// GetByID retrieves a single entity by primary key.
func (r *gormRepository[E, M, ID, P]) GetByID(ctx context.Context, id ID) (*E, error) {
	r.logger.DebugContext(ctx, "Fetching by ID", slog.Any("id", id))

	m, err := r.findModel(ctx, id)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "Found by ID", slog.Any("id", id))

	return r.mapper.toDomain(m), nil
}

// GetAll lists entities page by page.
func (r *gormRepository[E, M, ID, P]) GetAll(ctx context.Context, offset, limit int) ([]*E, error) {
	r.logger.DebugContext(ctx, "Fetching all", slog.Int("offset", offset), slog.Int("limit", limit))

	return r.list(ctx, repository.Page{Offset: offset, Limit: limit}, nil)
}

// Create inserts the entity and re-reads it so store defaults are returned.
func (r *gormRepository[E, M, ID, P]) Create(ctx context.Context, entity *E) (*E, error) {
	r.logger.InfoContext(ctx, "Creating record")

	m := r.mapper.fromDomain(entity)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		r.logWriteFailure(ctx, "create", err)

		return nil, errors.Wrapf(err, "failed to create %s", r.name)
	}

	if err := r.refresh(ctx, m); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Created record", slog.Any("id", r.mapper.id(m)))

	return r.mapper.toDomain(m), nil
}

// Update applies the set fields of patch to an existing row. Unset fields are
// skipped; fields set to null clear the column.
func (r *gormRepository[E, M, ID, P]) Update(ctx context.Context, id ID, patch P) (*E, error) {
	r.logger.InfoContext(ctx, "Updating record", slog.Any("id", id))

	m, err := r.findModel(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := r.mapper.changes(patch)
	if len(changes) > 0 {
		if err := r.db.WithContext(ctx).Model(m).Updates(changes).Error; err != nil {
			r.logWriteFailure(ctx, "update", err)

			return nil, errors.Wrapf(err, "failed to update %s", r.name)
		}
	}

	if err := r.refresh(ctx, m); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Updated record", slog.Any("id", id), slog.Int("fields", len(changes)))

	return r.mapper.toDomain(m), nil
}

// Delete removes the row with the given primary key.
func (r *gormRepository[E, M, ID, P]) Delete(ctx context.Context, id ID) error {
	r.logger.InfoContext(ctx, "Deleting record", slog.Any("id", id))

	m, err := r.findModel(ctx, id)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Delete(m).Error; err != nil {
		r.logWriteFailure(ctx, "delete", err)

		return errors.Wrapf(err, "failed to delete %s", r.name)
	}

	r.logger.InfoContext(ctx, "Deleted record", slog.Any("id", id))

	return nil
}

// Exists reports whether any row matches all conditions.
func (r *gormRepository[E, M, ID, P]) Exists(ctx context.Context, conditions ...repository.Condition) (bool, error) {
	var found []M
	if err := r.query(ctx, conditions).Limit(1).Find(&found).Error; err != nil {
		return false, errors.Wrapf(err, "failed to check %s existence", r.name)
	}

	exists := len(found) != 0
	r.logger.DebugContext(ctx, "Existence check", slog.Int("conditions", len(conditions)), slog.Bool("exists", exists))

	return exists, nil
}

// Count returns how many rows match all conditions.
func (r *gormRepository[E, M, ID, P]) Count(ctx context.Context, conditions ...repository.Condition) (int64, error) {
	var count int64
	if err := r.query(ctx, conditions).Count(&count).Error; err != nil {
		return 0, errors.Wrapf(err, "failed to count %s", r.name)
	}

	r.logger.DebugContext(ctx, "Count", slog.Int("conditions", len(conditions)), slog.Int64("count", count))

	return count, nil
}

// GetByConditions lists rows matching all conditions within page.
func (r *gormRepository[E, M, ID, P]) GetByConditions(ctx context.Context, page repository.Page, conditions ...repository.Condition) ([]*E, error) {
	r.logger.DebugContext(ctx, "Fetching by conditions",
		slog.Int("conditions", len(conditions)),
		slog.Int("offset", page.Offset),
		slog.Int("limit", page.Limit),
	)

	return r.list(ctx, page, conditions)
}

// GetOneByConditions returns the first matching row or nil.
func (r *gormRepository[E, M, ID, P]) GetOneByConditions(ctx context.Context, conditions ...repository.Condition) (*E, error) {
	m := new(M)

	err := r.query(ctx, conditions).Order(clause.OrderByColumn{Column: clause.PrimaryColumn}).Take(m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find %s by conditions", r.name)
	}

	return r.mapper.toDomain(m), nil
}

func (r *gormRepository[E, M, ID, P]) findModel(ctx context.Context, id ID) (*M, error) {
	m := new(M)

	err := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).Take(m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.WarnContext(ctx, "Record not found", slog.Any("id", id))

		return nil, domainerrors.NewNotFoundError(r.name, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find %s by id", r.name)
	}

	return m, nil
}

// refresh re-reads m by primary key within the same unit of work.
func (r *gormRepository[E, M, ID, P]) refresh(ctx context.Context, m *M) error {
	err := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.PrimaryColumn, Value: r.mapper.id(m)}).Take(m).Error

	return errors.Wrapf(err, "failed to refresh %s", r.name)
}

func (r *gormRepository[E, M, ID, P]) list(ctx context.Context, page repository.Page, conditions []repository.Condition) ([]*E, error) {
	if page.Limit == 0 {
		return []*E{}, nil
	}

	db := r.query(ctx, conditions).Order(clause.OrderByColumn{Column: clause.PrimaryColumn})
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	if page.Limit > 0 {
		db = db.Limit(page.Limit)
	}

	var models []*M
	if err := db.Find(&models).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", r.name)
	}

	entities := make([]*E, 0, len(models))
	for _, m := range models {
		entities = append(entities, r.mapper.toDomain(m))
	}

	return entities, nil
}

func (r *gormRepository[E, M, ID, P]) query(ctx context.Context, conditions []repository.Condition) *gorm.DB {
	db := r.db.WithContext(ctx).Model(new(M))
	for _, condition := range conditions {
		if condition.Query == "" {
			continue
		}
		db = db.Where(condition.Query, condition.Args...)
	}

	return db
}

func (r *gormRepository[E, M, ID, P]) logWriteFailure(ctx context.Context, op string, err error) {
	r.logger.WarnContext(ctx, "Write rejected by store",
		slog.String("op", op),
		slog.String("constraint", constraintKind(err)),
		slog.String("error", err.Error()),
	)
}
