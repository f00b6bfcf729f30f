// pkg/view/resolve.go
package view

import "go.uber.org/zap"

// Resolve turns v into a concrete value for module m.
//
// Order: a callback is always invoked first; a literal is returned unchanged;
// a name is searched in the controller table, then m's own table, then any
// tables injected for m. A name nobody defines resolves to nil.
func Resolve(r *Request, c *Context, m Module, v Value, args ...any) (any, error) {
	switch v.kind {
	case KindCallback:
		return v.fn(r, c, args...)
	case KindLiteral:
		return v.lit, nil
	case KindNamed:
		for _, t := range scopesFor(c, m) {
			entry, ok := t[v.name]
			if !ok {
				continue
			}
			if fn := asFunc(entry); fn != nil {
				return fn(r, c, args...)
			}
			return entry, nil
		}
		if c != nil {
			c.Log().Debug("callback name not defined in any scope", zap.String("name", v.name))
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// ResolveString resolves v and formats the result as a string; nil becomes "".
func ResolveString(r *Request, c *Context, m Module, v Value, args ...any) (string, error) {
	out, err := Resolve(r, c, m, v, args...)
	if err != nil || out == nil {
		return "", err
	}
	return toString(out), nil
}

func asFunc(entry any) Func {
	switch fn := entry.(type) {
	case Func:
		return fn
	case func(*Request, *Context, ...any) (any, error):
		return fn
	default:
		return nil
	}
}
