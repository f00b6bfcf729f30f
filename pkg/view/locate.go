// pkg/view/locate.go
package view

// Locate finds a request parameter. A Named value is looked up, first match
// wins, in kwargs, then the query string, then the body. A Callback is invoked
// with no extra args instead of a lookup, and a Literal is returned as-is.
// Nothing found is nil, never an error.
func Locate(r *Request, c *Context, v Value) (any, error) {
	switch v.kind {
	case KindCallback:
		return v.fn(r, c)
	case KindLiteral:
		return v.lit, nil
	case KindNamed:
		if s := LocateName(r, v.name); s != "" {
			return s, nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// LocateName is the plain string form of Locate for a Named value.
func LocateName(r *Request, name string) string {
	if r == nil || name == "" {
		return ""
	}
	if s := r.Kwargs[name]; s != "" {
		return s
	}
	if r.Request != nil && r.URL != nil {
		if s := r.URL.Query().Get(name); s != "" {
			return s
		}
	}
	return r.Fields().Get(name)
}

// LocateAll resolves every parameter in params into a criteria map. Keys whose
// parameter could not be found map to nil.
func LocateAll(r *Request, c *Context, params map[string]Value) (map[string]any, error) {
	out := make(map[string]any, len(params))
	for k, v := range params {
		got, err := Locate(r, c, v)
		if err != nil {
			return nil, err
		}
		out[k] = got
	}
	return out, nil
}
