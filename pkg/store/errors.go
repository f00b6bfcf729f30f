// pkg/store/errors.go
package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend is returned when saving a row that was built without a model.
	ErrNoBackend = errors.New("record has no backing store")
	// ErrNotSaved is returned when deleting a row that was never saved.
	ErrNotSaved = errors.New("record is not saved")
)

// NoResultError is returned by writes that matched no row.
type NoResultError struct {
	ModelName string
	ID        int64
}

func (e NoResultError) Error() string {
	return fmt.Sprintf("%s with id %d doesn't exist", e.ModelName, e.ID)
}

// LoadError wraps a failure while reading from the backing store.
type LoadError struct {
	ModelName string
	Err       error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("failed loading %s: %s", e.ModelName, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// FieldError reports a criterion or value naming a field the model lacks.
type FieldError struct {
	ModelName string
	Field     string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.ModelName, e.Field)
}
