// pkg/modules/group.go
package modules

import (
	"net/http"
	"regexp"

	"github.com/joeydtaylor/modview/pkg/view"
)

// Endpoint pairs a path pattern with the modules that answer it.
type Endpoint struct {
	Pattern *regexp.Regexp
	Modules []view.Module
}

// Route compiles pattern into an Endpoint. It panics on a bad pattern, like
// regexp.MustCompile.
func Route(pattern string, mods ...view.Module) Endpoint {
	return Endpoint{Pattern: regexp.MustCompile(pattern), Modules: mods}
}

// Ajax serves XHR requests from a list of endpoints. The first endpoint whose
// pattern matches the path runs its modules with the named captures merged
// into the request kwargs; later endpoints are not tried.
type Ajax struct {
	view.Base

	Endpoints []Endpoint
}

func (m *Ajax) Kind() string { return "ajax" }

func (m *Ajax) Children() []view.Module {
	var out []view.Module
	for _, e := range m.Endpoints {
		out = append(out, e.Modules...)
	}
	return out
}

func (m *Ajax) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	if !r.IsAjax() {
		return nil, nil
	}
	for _, e := range m.Endpoints {
		match := e.Pattern.FindStringSubmatch(r.URL.Path)
		if match == nil {
			continue
		}
		kw := map[string]string{}
		for i, name := range e.Pattern.SubexpNames() {
			if name != "" && match[i] != "" {
				kw[name] = match[i]
			}
		}
		return view.RunStages(r.WithKwargs(kw), c, e.Modules)
	}
	return nil, nil
}

// Container groups modules for reuse. Its Table is searched by every child
// after the controller table, followed by whatever was injected for the
// container itself.
type Container struct {
	view.Base

	Modules []view.Module
	Table   view.Table
}

func (m *Container) Kind() string            { return "container" }
func (m *Container) Callbacks() view.Table   { return m.Table }
func (m *Container) Children() []view.Module { return m.Modules }

func (m *Container) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	inject(c, m, m.Modules, m.Table)
	return view.RunStages(r, c, m.Modules)
}

// Conditional runs its modules only when Condition resolves truthy. The
// outcome is evaluated once, on dispatch, and reused by the method stage.
type Conditional struct {
	view.Base

	Condition view.Value
	Modules   []view.Module
	Locations []view.Table
}

func (m *Conditional) Kind() string            { return "conditional" }
func (m *Conditional) Children() []view.Module { return m.Modules }

func (m *Conditional) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	out, err := view.Resolve(r, c, m, m.Condition)
	if err != nil {
		return nil, err
	}
	passed := view.Truthy(out)
	c.SetCondition(m, passed)
	if !passed {
		return nil, nil
	}
	inject(c, m, m.Modules, m.Locations...)
	return view.RunStage(r, c, view.StageDispatch, m.Modules)
}

func (m *Conditional) Get(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, view.StageGet)
}

func (m *Conditional) Post(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, view.StagePost)
}

func (m *Conditional) Put(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, view.StagePut)
}

func (m *Conditional) Delete(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, view.StageDelete)
}

func (m *Conditional) run(r *view.Request, c *view.Context, stage view.Stage) (http.Handler, error) {
	if passed, ok := c.Condition(m); !ok || !passed {
		return nil, nil
	}
	return view.RunStage(r, c, stage, m.Modules)
}

// inject hands parent's own tables, then the tables injected for parent,
// down to each child.
func inject(c *view.Context, parent view.Module, children []view.Module, own ...view.Table) {
	tables := make([]view.Table, 0, len(own))
	for _, t := range own {
		if t != nil {
			tables = append(tables, t)
		}
	}
	tables = append(tables, c.Locations(parent)...)
	for _, child := range children {
		c.AddLocations(child, tables...)
	}
}
