package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
)

// ErrNullValue is returned when null is supplied for a column that cannot hold it.
var ErrNullValue = errors.New("null is not allowed for this column")

// Field is an optional patch value that remembers whether it was supplied,
// so an explicit null can be told apart from an absent key.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a supplied field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field as supplied. Null is only accepted when T is
// a pointer, i.e. when the column is nullable.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) && !nullable[T]() {
		return ErrNullValue
	}
	f.Set = true
	return json.Unmarshal(b, &f.Value)
}

func nullable[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Pointer
}

// MarshalJSON encodes the wrapped value.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// IsZero lets `omitzero` drop unsupplied fields.
func (f Field[T]) IsZero() bool {
	return !f.Set
}
