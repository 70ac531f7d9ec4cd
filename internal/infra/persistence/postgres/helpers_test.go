package postgres

import (
	"testing"
	"time"

	"projectbasis/internal/domain/patch"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// person is a throwaway entity exercising the generic repository with an
// integer key and a nullable column guarded by a check constraint.
type person struct {
	ID        int64
	Name      string
	Age       *int
	CreatedAt time.Time
}

type personModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:50;not null"`
	Age       *int   `gorm:"check:age_range,age >= 0 AND age <= 120"`
	CreatedAt time.Time
}

func (personModel) TableName() string {
	return "people"
}

type personPatch struct {
	Name patch.Field[string]
	Age  patch.Field[int]
}

var personMapper = modelMapper[person, personModel, personPatch, int64]{
	toDomain: func(m *personModel) *person {
		return &person{ID: m.ID, Name: m.Name, Age: m.Age, CreatedAt: m.CreatedAt}
	},
	fromDomain: func(p *person) *personModel {
		return &personModel{ID: p.ID, Name: p.Name, Age: p.Age, CreatedAt: p.CreatedAt}
	},
	changes: func(p personPatch) map[string]any {
		changes := make(map[string]any)
		if v, ok := p.Name.Any(); ok {
			changes["name"] = v
		}
		if v, ok := p.Age.Any(); ok {
			changes["age"] = v
		}

		return changes
	},
	id: func(m *personModel) int64 { return m.ID },
}

func newPersonRepository(db *gorm.DB) *gormRepository[person, personModel, int64, personPatch] {
	return newGormRepository[person, personModel, int64, personPatch](db, nil, personMapper)
}

// newTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, SyncSchema(db))
	require.NoError(t, db.AutoMigrate(&personModel{}))

	return db
}

func intPtr(v int) *int {
	return &v
}
