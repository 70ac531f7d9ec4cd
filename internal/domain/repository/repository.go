// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import "context"

// DefaultLimit is the page size used when a caller has no preference.
const DefaultLimit = 10

// Condition is a single SQL predicate with positional arguments,
// e.g. Where("age >= ?", 18). Conditions passed together are ANDed.
type Condition struct {
	Query string
	Args  []any
}

// Where builds a Condition from a SQL fragment and its arguments.
func Where(query string, args ...any) Condition {
	return Condition{Query: query, Args: args}
}

// Eq builds a column equality Condition. column must be a trusted identifier.
func Eq(column string, value any) Condition {
	return Condition{Query: column + " = ?", Args: []any{value}}
}

// Page bounds a listing. Limit 0 yields no rows, a negative Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// NoLimit selects every matching row.
var NoLimit = Page{Limit: -1}

// FirstPage is the default page: offset 0, DefaultLimit rows.
var FirstPage = Page{Limit: DefaultLimit}

// Repository is the generic data access contract for one entity type E with
// identifier ID and partial update type P. Implementations operate inside the
// unit of work they were built from and never commit or close it themselves.
type Repository[E any, ID comparable, P any] interface {
	// GetByID returns the entity or an error matching domain ErrNotFound.
	GetByID(ctx context.Context, id ID) (*E, error)

	// GetAll returns at most limit entities starting at offset, in no particular order.
	GetAll(ctx context.Context, offset, limit int) ([]*E, error)

	// Create persists entity and returns it re-read from the store.
	Create(ctx context.Context, entity *E) (*E, error)

	// Update applies the set fields of patch and returns the re-read entity.
	Update(ctx context.Context, id ID, patch P) (*E, error)

	// Delete removes the entity or returns an error matching ErrNotFound.
	Delete(ctx context.Context, id ID) error

	// Exists reports whether at least one row matches all conditions.
	Exists(ctx context.Context, conditions ...Condition) (bool, error)

	// Count returns the number of rows matching all conditions.
	Count(ctx context.Context, conditions ...Condition) (int64, error)

	// GetByConditions returns the rows matching all conditions within page.
	GetByConditions(ctx context.Context, page Page, conditions ...Condition) ([]*E, error)

	// GetOneByConditions returns the first matching row, or nil without error when none match.
	GetOneByConditions(ctx context.Context, conditions ...Condition) (*E, error)
}
