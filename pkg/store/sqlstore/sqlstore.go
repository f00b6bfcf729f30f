// pkg/store/sqlstore/sqlstore.go
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"
)

var identRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB wraps sql.DB opened with the pure-Go SQLite driver.
type DB struct {
	*sql.DB
	path string
}

// Open opens (and creates, if needed) the SQLite database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}
	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		// keep the in-memory database alive between queries
		sqliteDB.SetMaxIdleConns(10)
		sqliteDB.SetConnMaxLifetime(time.Duration(math.Inf(1)))
	}
	d := &DB{DB: sqliteDB, path: path}
	if _, err := d.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = sqliteDB.Close()
		return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
	}
	return d, nil
}

func (d *DB) Path() string { return d.path }

// Table declares a model backed by table name with the given columns,
// creating the table when it doesn't exist. An "id" primary key is implicit.
func (d *DB) Table(ctx context.Context, name string, columns ...string) (*Table, error) {
	if !identRx.MatchString(name) {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	defs := make([]string, 0, len(columns)+1)
	defs = append(defs, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if !identRx.MatchString(c) || c == "id" {
			return nil, fmt.Errorf("invalid column name %q", c)
		}
		set[c] = struct{}{}
		defs = append(defs, c)
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, name, strings.Join(defs, ", "))
	if _, err := d.ExecContext(ctx, stmt); err != nil {
		return nil, fmt.Errorf("failed creating table %s: %w", name, err)
	}
	return &Table{db: d, name: name, columns: append([]string(nil), columns...), colSet: set}, nil
}

// filter is a WHERE fragment with its arguments.
type filter struct {
	Where string
	Args  []any
}

func (f filter) and(g filter) filter {
	switch {
	case f.Where == "":
		return g
	case g.Where == "":
		return f
	}
	return filter{Where: f.Where + " AND " + g.Where, Args: append(append([]any{}, f.Args...), g.Args...)}
}
