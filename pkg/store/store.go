// pkg/store/store.go
package store

import (
	"context"
	"fmt"
	"reflect"
)

// Criteria maps field names to the values they must equal.
type Criteria map[string]any

// Status is the outcome of a single-record lookup.
type Status uint8

const (
	NotFound Status = iota
	Found
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Lookup is the result of Model.Get. Record is set only when Status is Found.
type Lookup struct {
	Status Status
	Record Record
	// Count is the number of matching records seen (capped at 2).
	Count int
}

// Record is one persisted (or not yet persisted) row of a model.
type Record interface {
	Get(field string) any
	Set(field string, v any)
	Fields() map[string]any
	Saved() bool
	Save(ctx context.Context) error
	Delete(ctx context.Context) error
}

// Model is the record-store contract consumed by the loader modules.
type Model interface {
	Name() string
	// New returns a fresh, unsaved record.
	New() Record
	// Get looks for exactly one record matching where.
	Get(ctx context.Context, where Criteria) (Lookup, error)
	// Filter returns records matching every include criterion and not
	// matching all exclude criteria together.
	Filter(ctx context.Context, include, exclude Criteria) ([]Record, error)
}

// Matches reports whether fields satisfy every criterion. Values are compared
// loosely so URL strings ("42") match stored numbers (42).
func Matches(fields map[string]any, where Criteria) bool {
	for k, want := range where {
		if !looseEqual(fields[k], want) {
			return false
		}
	}
	return true
}

func looseEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
