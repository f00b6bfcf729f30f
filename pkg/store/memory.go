// pkg/store/memory.go
package store

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-process Model, used for tests and small demos.
type Memory struct {
	name     string
	defaults map[string]any

	mu    sync.RWMutex
	next  int64
	order []int64
	rows  map[int64]map[string]any
}

var (
	_ Model   = (*Memory)(nil)
	_ Backend = (*Memory)(nil)
)

// NewMemory creates an empty model. defaults seed every New record.
func NewMemory(name string, defaults map[string]any) *Memory {
	return &Memory{name: name, defaults: defaults, rows: map[int64]map[string]any{}}
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) New() Record { return NewRow(m, 0, m.defaults) }

// Insert saves fields as a new row and returns it.
func (m *Memory) Insert(fields map[string]any) *Row {
	r := NewRow(m, 0, fields)
	_ = m.SaveRow(context.Background(), r)
	return r
}

// Len returns the number of stored rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

func (m *Memory) Get(_ context.Context, where Criteria) (Lookup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var l Lookup
	for _, id := range m.order {
		if !Matches(m.withID(id), where) {
			continue
		}
		l.Count++
		if l.Count > 1 {
			return Lookup{Status: Ambiguous, Count: l.Count}, nil
		}
		l.Record = NewRow(m, id, m.rows[id])
	}
	if l.Count == 1 {
		l.Status = Found
	}
	return l, nil
}

func (m *Memory) Filter(_ context.Context, include, exclude Criteria) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for _, id := range m.order {
		f := m.withID(id)
		if !Matches(f, include) {
			continue
		}
		if len(exclude) > 0 && Matches(f, exclude) {
			continue
		}
		out = append(out, NewRow(m, id, m.rows[id]))
	}
	return out, nil
}

func (m *Memory) SaveRow(_ context.Context, r *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		m.next++
		r.ID = m.next
		m.order = append(m.order, r.ID)
	} else if _, ok := m.rows[r.ID]; !ok {
		return NoResultError{ModelName: m.name, ID: r.ID}
	}
	m.rows[r.ID] = maps.Clone(r.fields)
	return nil
}

func (m *Memory) DeleteRow(_ context.Context, r *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return NoResultError{ModelName: m.name, ID: r.ID}
	}
	delete(m.rows, r.ID)
	for i, id := range m.order {
		if id == r.ID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	r.ID = 0
	return nil
}

func (m *Memory) withID(id int64) map[string]any {
	f := maps.Clone(m.rows[id])
	if f == nil {
		f = map[string]any{}
	}
	f["id"] = id
	return f
}
