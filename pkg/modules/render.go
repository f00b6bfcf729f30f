// pkg/modules/render.go
package modules

import (
	"errors"
	"html/template"
	"maps"
	"net/http"

	"github.com/joeydtaylor/modview/pkg/render"
	"github.com/joeydtaylor/modview/pkg/view"
)

var errNoRenderer = errors.New("no renderer configured")

// Template renders a page from the template variables. It is the usual last
// module of a pipeline: its response ends GET and POST.
type Template struct {
	view.Base

	GetTemplate  view.Value
	PostTemplate view.Value // defaults to GetTemplate
}

func (m *Template) Kind() string { return "template" }

func (m *Template) Get(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.render(r, c, m.GetTemplate)
}

func (m *Template) Post(r *view.Request, c *view.Context) (http.Handler, error) {
	if m.PostTemplate.IsZero() {
		return m.render(r, c, m.GetTemplate)
	}
	return m.render(r, c, m.PostTemplate)
}

func (m *Template) render(r *view.Request, c *view.Context, tpl view.Value) (http.Handler, error) {
	rr, err := renderer(c)
	if err != nil {
		return nil, err
	}
	name, err := view.ResolveString(r, c, m, tpl)
	if err != nil {
		return nil, err
	}
	return rr.Render(r.Request, name, c.Vars())
}

// Partial renders one layout section on GET and POST without ending the
// stage. A Callback template produces the markup itself; any other value
// names a template.
type Partial struct {
	view.Base

	Section  string
	Template view.Value
}

func (m *Partial) Kind() string { return "partial" }

func (m *Partial) Get(r *view.Request, c *view.Context) (http.Handler, error) {
	return nil, m.render(r, c)
}

func (m *Partial) Post(r *view.Request, c *view.Context) (http.Handler, error) {
	return nil, m.render(r, c)
}

func (m *Partial) render(r *view.Request, c *view.Context) error {
	if m.Template.Kind() == view.KindCallback {
		out, err := view.ResolveString(r, c, m, m.Template)
		if err != nil {
			return err
		}
		c.SetSection(m.Section, template.HTML(out)) //nolint:gosec // callback output is trusted markup
		return nil
	}
	rr, err := renderer(c)
	if err != nil {
		return err
	}
	name, err := view.ResolveString(r, c, m, m.Template)
	if err != nil {
		return err
	}
	out, err := rr.RenderString(name, c.Vars(), r.Request)
	if err != nil {
		return err
	}
	c.SetSection(m.Section, template.HTML(out)) //nolint:gosec // rendered by html/template
	return nil
}

// Layout renders the page shell from the template variables, the static
// Settings and every rendered section, later sources winning.
type Layout struct {
	view.Base

	Layout       view.Value
	BaseTemplate string // exposed as "base"
	Settings     map[string]any
}

func (m *Layout) Kind() string { return "layout" }

func (m *Layout) Get(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.render(r, c)
}

func (m *Layout) Post(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.render(r, c)
}

func (m *Layout) render(r *view.Request, c *view.Context) (http.Handler, error) {
	rr, err := renderer(c)
	if err != nil {
		return nil, err
	}
	name, err := view.ResolveString(r, c, m, m.Layout)
	if err != nil {
		return nil, err
	}
	c.SetVar("base", m.BaseTemplate)
	vars := c.Vars()
	maps.Copy(vars, m.Settings)
	for k, v := range c.Sections() {
		vars[k] = v
	}
	return rr.Render(r.Request, name, vars)
}

func renderer(c *view.Context) (render.Renderer, error) {
	rr := c.Renderer()
	if rr == nil {
		return nil, errNoRenderer
	}
	return rr, nil
}
