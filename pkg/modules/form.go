// pkg/modules/form.go
package modules

import (
	"fmt"
	"maps"
	"net/http"

	"github.com/joeydtaylor/modview/pkg/form"
	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
)

// Form binds a form (or form set) to the request on dispatch and saves it on
// a valid POST.
type Form struct {
	view.Base

	Class    view.Value     // resolves to a form.Class
	Name     string         // defaults to "form"
	Instance view.Value     // callback, or the name of a loaded record
	Extra    map[string]any // copied into form.Args.Extra on every request
	NoSave   bool
	Success  view.Value // response after a valid POST
}

func (m *Form) Kind() string { return "form" }

func (m *Form) name() string {
	if m.Name != "" {
		return m.Name
	}
	return "form"
}

func (m *Form) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	out, err := view.Resolve(r, c, m, m.Class)
	if err != nil {
		return nil, err
	}
	cls, ok := out.(form.Class)
	if !ok {
		return nil, fmt.Errorf("form class %s resolved to %T", m.Class, out)
	}

	args := form.Args{Extra: maps.Clone(m.Extra)}
	if !m.Instance.IsZero() {
		inst, err := m.instance(r, c)
		if err != nil {
			return nil, err
		}
		if form.IsSet(cls) {
			if args.Collection, err = asCollection(inst); err != nil {
				return nil, err
			}
		} else if inst != nil {
			rec, ok := inst.(store.Record)
			if !ok {
				return nil, fmt.Errorf("form instance is a %T", inst)
			}
			args.Instance = rec
		}
	}
	if r.HasBody() {
		args.Data = r.Fields()
		args.Files = r.Files()
	}

	f, err := cls.New(args)
	if err != nil {
		return nil, err
	}
	c.SetForm(m.name(), f)
	c.SetVar(m.name(), f)
	return nil, nil
}

func (m *Form) Post(r *view.Request, c *view.Context) (http.Handler, error) {
	f, ok := c.Form(m.name())
	if !ok || !f.IsValid() {
		return nil, nil
	}
	if !m.NoSave {
		if err := f.Save(r.Context()); err != nil {
			return nil, err
		}
	}
	out, err := view.Resolve(r, c, m, m.Success)
	if err != nil {
		return nil, err
	}
	return view.Respond(out), nil
}

func (m *Form) instance(r *view.Request, c *view.Context) (any, error) {
	switch m.Instance.Kind() {
	case view.KindCallback:
		return view.Resolve(r, c, m, m.Instance)
	case view.KindNamed:
		v, _ := c.Record(m.Instance.Name())
		return v, nil
	default:
		v, _ := c.Record(fmt.Sprint(m.Instance.Literal()))
		return v, nil
	}
}

func asCollection(v any) ([]store.Record, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []store.Record:
		return x, nil
	default:
		return nil, fmt.Errorf("form set collection is a %T", v)
	}
}
