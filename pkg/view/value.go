// pkg/view/value.go
package view

import "fmt"

// Func is the callable form of a Value. args carries call-site extras such as
// a freshly loaded record or the collection being filtered.
type Func func(r *Request, c *Context, args ...any) (any, error)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindLiteral
	KindNamed
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindNamed:
		return "named"
	case KindCallback:
		return "callback"
	default:
		return "none"
	}
}

// Value is a module parameter: a literal, a name looked up in scope tables at
// request time, or a callback. The zero Value resolves to nil.
type Value struct {
	kind Kind
	lit  any
	name string
	fn   Func
}

// Literal wraps v so it is returned unchanged, even when it is a string that
// happens to match a callback name.
func Literal(v any) Value { return Value{kind: KindLiteral, lit: v} }

// Named defers to the first scope table defining name. An empty name is the
// zero Value.
func Named(name string) Value {
	if name == "" {
		return Value{}
	}
	return Value{kind: KindNamed, name: name}
}

// Callback wraps fn; a nil fn is the zero Value.
func Callback(fn Func) Value {
	if fn == nil {
		return Value{}
	}
	return Value{kind: KindCallback, fn: fn}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsZero() bool   { return v.kind == KindNone }
func (v Value) Name() string   { return v.name }
func (v Value) Literal() any   { return v.lit }
func (v Value) Callback() Func { return v.fn }

func (v Value) String() string {
	switch v.kind {
	case KindLiteral:
		return fmt.Sprintf("literal(%v)", v.lit)
	case KindNamed:
		return "named(" + v.name + ")"
	case KindCallback:
		return "callback"
	default:
		return "none"
	}
}
