// pkg/store/sqlstore/table.go
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joeydtaylor/modview/pkg/store"
)

// Table is a store.Model over one SQLite table.
type Table struct {
	db       *DB
	name     string
	columns  []string
	colSet   map[string]struct{}
	defaults map[string]any
}

var (
	_ store.Model   = (*Table)(nil)
	_ store.Backend = (*Table)(nil)
)

func (t *Table) Name() string { return t.name }

func (t *Table) New() store.Record { return store.NewRow(t, 0, t.defaults) }

// WithDefaults seeds every record built by New with defaults. Unknown
// columns are rejected.
func (t *Table) WithDefaults(defaults map[string]any) (*Table, error) {
	for k := range defaults {
		if _, ok := t.colSet[k]; !ok {
			return nil, store.FieldError{ModelName: t.name, Field: k}
		}
	}
	t.defaults = defaults
	return t, nil
}

func (t *Table) Get(ctx context.Context, where store.Criteria) (store.Lookup, error) {
	f, err := t.match(where)
	if err != nil {
		return store.Lookup{}, err
	}
	rows, err := t.query(ctx, f, 2)
	if err != nil {
		return store.Lookup{}, err
	}
	switch len(rows) {
	case 0:
		return store.Lookup{Status: store.NotFound}, nil
	case 1:
		return store.Lookup{Status: store.Found, Record: rows[0], Count: 1}, nil
	default:
		return store.Lookup{Status: store.Ambiguous, Count: len(rows)}, nil
	}
}

func (t *Table) Filter(ctx context.Context, include, exclude store.Criteria) ([]store.Record, error) {
	f, err := t.match(include)
	if err != nil {
		return nil, err
	}
	if len(exclude) > 0 {
		ex, err := t.match(exclude)
		if err != nil {
			return nil, err
		}
		f = f.and(filter{Where: "NOT (" + ex.Where + ")", Args: ex.Args})
	}
	rows, err := t.query(ctx, f, 0)
	if err != nil {
		return nil, err
	}
	return store.Records(rows), nil
}

func (t *Table) SaveRow(ctx context.Context, r *store.Row) error {
	fields := r.Fields()
	delete(fields, "id")
	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, c := range t.columns {
		if v, ok := fields[c]; ok {
			cols = append(cols, c)
			args = append(args, v)
			delete(fields, c)
		}
	}
	if len(fields) > 0 {
		extra := make([]string, 0, len(fields))
		for k := range fields {
			extra = append(extra, k)
		}
		sort.Strings(extra)
		return store.FieldError{ModelName: t.name, Field: extra[0]}
	}

	if r.Saved() {
		if len(cols) == 0 {
			return nil
		}
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = ?"
		}
		stmt := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, t.name, strings.Join(sets, ", "))
		res, err := t.db.ExecContext(ctx, stmt, append(args, r.ID)...)
		if err != nil {
			return fmt.Errorf("failed updating %s: %w", t.name, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return store.NoResultError{ModelName: t.name, ID: r.ID}
		}
		return nil
	}

	var stmt string
	if len(cols) == 0 {
		stmt = fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES`, t.name)
	} else {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		stmt = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, t.name, strings.Join(cols, ", "), marks)
	}
	res, err := t.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed inserting into %s: %w", t.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed getting last insert ID: %w", err)
	}
	r.ID = id
	return nil
}

func (t *Table) DeleteRow(ctx context.Context, r *store.Row) error {
	res, err := t.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name), r.ID)
	if err != nil {
		return fmt.Errorf("failed deleting from %s: %w", t.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NoResultError{ModelName: t.name, ID: r.ID}
	}
	r.ID = 0
	return nil
}

// match builds the WHERE fragment for criteria, rejecting unknown fields.
func (t *Table) match(where store.Criteria) (filter, error) {
	keys := make([]string, 0, len(where))
	for k := range where {
		if _, ok := t.colSet[k]; !ok && k != "id" {
			return filter{}, store.FieldError{ModelName: t.name, Field: k}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var f filter
	for _, k := range keys {
		if where[k] == nil {
			f = f.and(filter{Where: k + " IS NULL"})
			continue
		}
		f = f.and(filter{Where: k + " = ?", Args: []any{where[k]}})
	}
	return f, nil
}

func (t *Table) query(ctx context.Context, f filter, limit int) ([]*store.Row, error) {
	cols := append([]string{"id"}, t.columns...)
	stmt := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(cols, ", "), t.name)
	if f.Where != "" {
		stmt += " WHERE " + f.Where
	}
	stmt += " ORDER BY id"
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := t.db.QueryContext(ctx, stmt, f.Args...)
	if err != nil {
		return nil, store.LoadError{ModelName: t.name, Err: err}
	}
	defer rows.Close()

	var out []*store.Row
	for rows.Next() {
		var id int64
		vals := make([]any, len(t.columns))
		dest := make([]any, 0, len(cols))
		dest = append(dest, &id)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, store.LoadError{ModelName: t.name, Err: err}
		}
		fields := make(map[string]any, len(t.columns))
		for i, c := range t.columns {
			fields[c] = normalize(vals[i])
		}
		out = append(out, store.NewRow(t, id, fields))
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, store.LoadError{ModelName: t.name, Err: err}
	}
	return out, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
