// pkg/core/build.go
package core

import (
	"fmt"
	"regexp"
	"strings"

	manifest "github.com/joeydtaylor/modview/pkg/manifest"
	"github.com/joeydtaylor/modview/pkg/modules"
	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
)

// BuildModules turns the manifest modules of one view into a pipeline.
func BuildModules(mods []manifest.Module, reg *Registry) ([]view.Module, error) {
	return builder{reg: reg}.modules(mods)
}

// ViewTable is the controller table of v: the registry callbacks overlaid by
// the view's own entries.
func ViewTable(v manifest.View, reg *Registry) (view.Table, error) {
	t := reg.Table()
	own, err := builder{reg: reg}.table(v.Table)
	if err != nil {
		return nil, err
	}
	for k, e := range own {
		t[k] = e
	}
	return t, nil
}

type builder struct{ reg *Registry }

func (b builder) modules(ms []manifest.Module) ([]view.Module, error) {
	out := make([]view.Module, 0, len(ms))
	for i, m := range ms {
		mod, err := b.module(m)
		if err != nil {
			return nil, fmt.Errorf("module %d (%s): %w", i, m.Kind, err)
		}
		out = append(out, mod)
	}
	return out, nil
}

func (b builder) module(m manifest.Module) (view.Module, error) {
	switch m.Kind {
	case manifest.KindLoad:
		model, err := b.model(m.Model)
		if err != nil {
			return nil, err
		}
		lookup, err := b.params(m.Lookup)
		if err != nil {
			return nil, err
		}
		return &modules.Load{
			Base:      view.NewBase(),
			Model:     model,
			Name:      m.Name,
			Lookup:    lookup,
			AfterLoad: hook(m.AfterLoad),
			OnDelete:  hook(m.OnDelete),
		}, nil

	case manifest.KindList:
		model, err := b.model(m.Model)
		if err != nil {
			return nil, err
		}
		include, err := b.params(m.Filter)
		if err != nil {
			return nil, err
		}
		exclude, err := b.params(m.Exclude)
		if err != nil {
			return nil, err
		}
		return &modules.LoadList{
			Base:       view.NewBase(),
			Model:      model,
			Name:       m.Name,
			Filter:     include,
			FilterRaw:  store.Criteria(m.FilterRaw),
			Exclude:    exclude,
			ExcludeRaw: store.Criteria(m.ExcludeRaw),
		}, nil

	case manifest.KindFilter:
		return &modules.FilterList{Base: view.NewBase(), Name: m.Name, Filter: hook(m.Call)}, nil

	case manifest.KindBreadcrumb:
		return &modules.Breadcrumb{Base: view.NewBase(), Label: str(m.Label), URL: str(m.URL)}, nil

	case manifest.KindTemplate:
		return &modules.Template{
			Base:         view.NewBase(),
			GetTemplate:  str(m.Template),
			PostTemplate: str(m.PostTemplate),
		}, nil

	case manifest.KindPartial:
		tpl, err := b.markup(m.Template)
		if err != nil {
			return nil, err
		}
		return &modules.Partial{Base: view.NewBase(), Section: m.Section, Template: tpl}, nil

	case manifest.KindLayout:
		return &modules.Layout{
			Base:         view.NewBase(),
			Layout:       str(m.Layout),
			BaseTemplate: m.Base,
			Settings:     m.Settings,
		}, nil

	case manifest.KindCallback:
		return &modules.Callback{
			Base:       view.NewBase(),
			OnDispatch: hook(m.OnDispatch),
			OnGet:      hook(m.OnGet),
			OnPost:     hook(m.OnPost),
			OnPut:      hook(m.OnPut),
			OnDelete:   hook(m.OnDelete),
		}, nil

	case manifest.KindForm:
		cls, err := b.form(m.Form)
		if err != nil {
			return nil, err
		}
		inst, err := b.instance(m.Instance)
		if err != nil {
			return nil, err
		}
		name := m.Name
		if name == "" {
			name = strings.TrimPrefix(m.Form, "@")
		}
		return &modules.Form{
			Base:     view.NewBase(),
			Class:    cls,
			Name:     name,
			Instance: inst,
			Extra:    m.Extra,
			NoSave:   m.NoSave,
			Success:  hook(m.Success),
		}, nil

	case manifest.KindAjax:
		eps := make([]modules.Endpoint, 0, len(m.Endpoints))
		for j, e := range m.Endpoints {
			re, err := regexp.Compile(e.Pattern)
			if err != nil {
				return nil, fmt.Errorf("endpoint %d: %w", j, err)
			}
			mods, err := b.modules(e.Modules)
			if err != nil {
				return nil, fmt.Errorf("endpoint %d: %w", j, err)
			}
			eps = append(eps, modules.Endpoint{Pattern: re, Modules: mods})
		}
		return &modules.Ajax{Base: view.NewBase(), Endpoints: eps}, nil

	case manifest.KindContainer:
		mods, err := b.modules(m.Modules)
		if err != nil {
			return nil, err
		}
		t, err := b.table(m.Table)
		if err != nil {
			return nil, err
		}
		return &modules.Container{Base: view.NewBase(), Modules: mods, Table: t}, nil

	case manifest.KindConditional:
		mods, err := b.modules(m.Modules)
		if err != nil {
			return nil, err
		}
		c := &modules.Conditional{Base: view.NewBase(), Condition: value(m.Condition), Modules: mods}
		if len(m.Table) > 0 {
			t, err := b.table(m.Table)
			if err != nil {
				return nil, err
			}
			c.Locations = []view.Table{t}
		}
		return c, nil

	case manifest.KindProperty:
		return &modules.Property{Base: view.NewBase(), Name: m.Name, Value: value(m.Value)}, nil

	default:
		return nil, fmt.Errorf("unknown kind %q", m.Kind)
	}
}

// ---------- values ----------

// ref splits an "@name" reference.
func ref(s string) (string, bool) {
	if strings.HasPrefix(s, "@") && len(s) > 1 {
		return s[1:], true
	}
	return "", false
}

// value maps "@name" to a named lookup and anything else to a literal.
func value(v any) view.Value {
	if v == nil {
		return view.Value{}
	}
	if s, ok := v.(string); ok {
		if name, ok := ref(s); ok {
			return view.Named(name)
		}
	}
	return view.Literal(v)
}

func str(s string) view.Value {
	if s == "" {
		return view.Value{}
	}
	return value(s)
}

// hook names a table entry with or without the "@" prefix; hook fields never
// hold literal responses.
func hook(s string) view.Value {
	if s == "" {
		return view.Value{}
	}
	return view.Named(strings.TrimPrefix(s, "@"))
}

// markup builds a partial template: "@name" is a registered callback that
// produces the markup, anything else names a template.
func (b builder) markup(s string) (view.Value, error) {
	if _, ok := ref(s); ok {
		return b.param(s)
	}
	return view.Literal(s), nil
}

// param builds a request-parameter reference: "@name" is a registered
// callback computing the value, anything else is a parameter name.
func (b builder) param(s string) (view.Value, error) {
	if name, ok := ref(s); ok {
		fn, ok := b.reg.LookupCallback(name)
		if !ok {
			return view.Value{}, fmt.Errorf("callback %q not registered", name)
		}
		return view.Callback(fn), nil
	}
	return view.Named(s), nil
}

func (b builder) params(in map[string]string) (map[string]view.Value, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]view.Value, len(in))
	for field, p := range in {
		v, err := b.param(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		out[field] = v
	}
	return out, nil
}

func (b builder) model(s string) (view.Value, error) {
	if name, ok := ref(s); ok {
		return view.Named(name), nil
	}
	m, ok := b.reg.LookupModel(s)
	if !ok {
		return view.Value{}, fmt.Errorf("model %q not registered", s)
	}
	return view.Literal(m), nil
}

func (b builder) form(s string) (view.Value, error) {
	if name, ok := ref(s); ok {
		return view.Named(name), nil
	}
	c, ok := b.reg.LookupForm(s)
	if !ok {
		return view.Value{}, fmt.Errorf("form %q not registered", s)
	}
	return view.Literal(c), nil
}

// instance builds a form instance: "@name" is a registered callback, anything
// else names a loaded record.
func (b builder) instance(s string) (view.Value, error) {
	if s == "" {
		return view.Value{}, nil
	}
	if _, ok := ref(s); ok {
		return b.param(s)
	}
	return view.Literal(s), nil
}

// table copies static entries; an "@name" string aliases a registered
// callback.
func (b builder) table(in map[string]any) (view.Table, error) {
	if len(in) == 0 {
		return nil, nil
	}
	t := make(view.Table, len(in))
	for k, v := range in {
		s, isStr := v.(string)
		name, isRef := ref(s)
		if !isStr || !isRef {
			t[k] = v
			continue
		}
		fn, ok := b.reg.LookupCallback(name)
		if !ok {
			return nil, fmt.Errorf("table %s: callback %q not registered", k, name)
		}
		t.Define(k, fn)
	}
	return t, nil
}
