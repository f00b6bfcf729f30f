// pkg/view/scope.go
package view

// Table maps callback names to entries. A Func entry is invoked on lookup,
// anything else is returned as-is.
type Table map[string]any

// Define registers a callback and returns the table for chaining.
func (t Table) Define(name string, fn Func) Table {
	t[name] = fn
	return t
}

// Set registers a plain value.
func (t Table) Set(name string, v any) Table {
	t[name] = v
	return t
}

// Scoped is implemented by modules that contribute their own table to
// name lookups (searched right after the controller's table).
type Scoped interface {
	Callbacks() Table
}

// scopesFor returns the search order for a named lookup issued by m.
func scopesFor(c *Context, m Module) []Table {
	out := make([]Table, 0, 4)
	if c != nil && c.callbacks != nil {
		out = append(out, c.callbacks)
	}
	if s, ok := m.(Scoped); ok {
		if t := s.Callbacks(); t != nil {
			out = append(out, t)
		}
	}
	if c != nil && m != nil {
		out = append(out, c.Locations(m)...)
	}
	return out
}
