// pkg/store/row.go
package store

import (
	"context"
	"encoding/json"
	"maps"
)

// Backend persists rows; the memory and SQL models implement it.
type Backend interface {
	SaveRow(ctx context.Context, r *Row) error
	DeleteRow(ctx context.Context, r *Row) error
}

// Row is the Record implementation shared by the bundled models. ID 0 means
// the row has never been saved.
type Row struct {
	ID      int64
	fields  map[string]any
	backend Backend
}

var _ Record = (*Row)(nil)

func NewRow(b Backend, id int64, fields map[string]any) *Row {
	f := maps.Clone(fields)
	if f == nil {
		f = map[string]any{}
	}
	return &Row{ID: id, fields: f, backend: b}
}

func (r *Row) Get(field string) any {
	if field == "id" {
		return r.ID
	}
	return r.fields[field]
}

func (r *Row) Set(field string, v any) {
	if field == "id" {
		return
	}
	r.fields[field] = v
}

// Fields returns a copy of the row data including "id".
func (r *Row) Fields() map[string]any {
	out := maps.Clone(r.fields)
	if out == nil {
		out = map[string]any{}
	}
	out["id"] = r.ID
	return out
}

func (r *Row) Saved() bool { return r.ID != 0 }

func (r *Row) Save(ctx context.Context) error {
	if r.backend == nil {
		return ErrNoBackend
	}
	return r.backend.SaveRow(ctx, r)
}

func (r *Row) Delete(ctx context.Context) error {
	if r.backend == nil {
		return ErrNoBackend
	}
	if !r.Saved() {
		return ErrNotSaved
	}
	return r.backend.DeleteRow(ctx, r)
}

func (r *Row) MarshalJSON() ([]byte, error) { return json.Marshal(r.Fields()) }

// Records converts rows to the Record interface.
func Records(rows []*Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}
