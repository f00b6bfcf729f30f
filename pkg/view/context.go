// pkg/view/context.go
package view

import (
	"html/template"
	"maps"

	"github.com/joeydtaylor/modview/pkg/form"
	"github.com/joeydtaylor/modview/pkg/render"
	"go.uber.org/zap"
)

// Crumb is one breadcrumb entry.
type Crumb struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Context is the per-request state shared by the modules of one dispatch.
// It is created by the Controller for each request and never shared.
// Every container is allocated on first write.
type Context struct {
	view      string
	callbacks Table
	renderer  render.Renderer
	log       *zap.Logger
	obs       Observer

	records     map[string]any
	forms       map[string]form.Form
	sections    map[string]template.HTML
	breadcrumbs []Crumb
	vars        map[string]any

	// per-module derived state, keyed by Module.ID()
	locations  map[string][]Table
	conditions map[string]bool
}

// ContextOptions configures NewContext.
type ContextOptions struct {
	View      string
	Callbacks Table
	Renderer  render.Renderer
	Logger    *zap.Logger
	Observer  Observer
}

func NewContext(o ContextOptions) *Context {
	l := o.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Context{
		view:      o.View,
		callbacks: o.Callbacks,
		renderer:  o.Renderer,
		log:       l,
		obs:       o.Observer,
	}
}

func (c *Context) View() string              { return c.view }
func (c *Context) Callbacks() Table          { return c.callbacks }
func (c *Context) Renderer() render.Renderer { return c.renderer }
func (c *Context) Log() *zap.Logger          { return c.log }

// NoteFallback records that a single-record load fell back to a fresh record.
func (c *Context) NoteFallback(model, reason string) {
	if c.obs != nil {
		c.obs.LoadFallback(c.view, model, reason)
	}
}

// ---------- records ----------

func (c *Context) Record(name string) (any, bool) {
	v, ok := c.records[name]
	return v, ok
}

func (c *Context) SetRecord(name string, v any) {
	if c.records == nil {
		c.records = map[string]any{}
	}
	c.records[name] = v
}

// ---------- forms ----------

func (c *Context) Form(name string) (form.Form, bool) {
	f, ok := c.forms[name]
	return f, ok
}

func (c *Context) SetForm(name string, f form.Form) {
	if c.forms == nil {
		c.forms = map[string]form.Form{}
	}
	c.forms[name] = f
}

// ---------- layout sections ----------

func (c *Context) Section(name string) (template.HTML, bool) {
	s, ok := c.sections[name]
	return s, ok
}

func (c *Context) SetSection(name string, html template.HTML) {
	if c.sections == nil {
		c.sections = map[string]template.HTML{}
	}
	c.sections[name] = html
}

// Sections returns a copy of the rendered sections.
func (c *Context) Sections() map[string]template.HTML {
	return maps.Clone(c.sections)
}

// ---------- breadcrumbs ----------

// AddBreadcrumb appends b and returns the trail so far.
func (c *Context) AddBreadcrumb(b Crumb) []Crumb {
	c.breadcrumbs = append(c.breadcrumbs, b)
	return c.Breadcrumbs()
}

func (c *Context) Breadcrumbs() []Crumb {
	if c.breadcrumbs == nil {
		return nil
	}
	return append([]Crumb(nil), c.breadcrumbs...)
}

// ---------- template variables ----------

func (c *Context) Var(name string) (any, bool) {
	if name == "view" && c.view != "" {
		if _, set := c.vars[name]; !set {
			return c.view, true
		}
	}
	v, ok := c.vars[name]
	return v, ok
}

func (c *Context) SetVar(name string, v any) {
	if c.vars == nil {
		c.vars = map[string]any{}
	}
	c.vars[name] = v
}

// Vars returns a snapshot of the template variables handed to renderers.
func (c *Context) Vars() map[string]any {
	out := make(map[string]any, len(c.vars)+1)
	if c.view != "" {
		out["view"] = c.view
	}
	maps.Copy(out, c.vars)
	return out
}

// ---------- per-module state ----------

// Locations returns the extra scope tables injected for m.
func (c *Context) Locations(m Module) []Table {
	if m == nil {
		return nil
	}
	return c.locations[m.ID()]
}

// AddLocations injects tables as extra lookup scopes for m for the rest of
// this request.
func (c *Context) AddLocations(m Module, tables ...Table) {
	if m == nil || len(tables) == 0 {
		return
	}
	if c.locations == nil {
		c.locations = map[string][]Table{}
	}
	c.locations[m.ID()] = append(c.locations[m.ID()], tables...)
}

// Condition returns the cached condition of m; ok is false when m has not
// evaluated its condition during this request.
func (c *Context) Condition(m Module) (passed, ok bool) {
	passed, ok = c.conditions[m.ID()]
	return passed, ok
}

func (c *Context) SetCondition(m Module, passed bool) {
	if c.conditions == nil {
		c.conditions = map[string]bool{}
	}
	c.conditions[m.ID()] = passed
}
