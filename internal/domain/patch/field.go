// Package patch provides the building block for typed partial updates.
//
// A Field has three states. The zero value is unset and is skipped by
// repositories. Set carries a value to write. Null asks the store to clear the
// column.
package patch

import "encoding/json"

// Field is one optional attribute of a partial update.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a field that writes v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// FromPtr maps nil to an unset field and a non-nil pointer to Set(*v).
func FromPtr[T any](v *T) Field[T] {
	if v == nil {
		return Field[T]{}
	}

	return Set(*v)
}

// IsSet reports whether the field takes part in the update.
func (f Field[T]) IsSet() bool {
	return f.set
}

// IsNull reports whether the field clears the column.
func (f Field[T]) IsNull() bool {
	return f.set && f.null
}

// Value returns the value to write and whether there is one.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set && !f.null
}

// Any returns the value for the store: nil for Null, the value otherwise.
// The second result is false for an unset field.
func (f Field[T]) Any() (any, bool) {
	switch {
	case !f.set:
		return nil, false
	case f.null:
		return nil, true
	default:
		return f.value, true
	}
}

// UnmarshalJSON sets the field from a JSON value. A literal null yields Null.
// A key absent from the document never reaches here and stays unset.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Null[T]()

		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)

	return nil
}
