// pkg/modules/breadcrumb.go
package modules

import (
	"net/http"

	"github.com/joeydtaylor/modview/pkg/view"
)

// Breadcrumb appends one entry to the trail and exposes the whole trail as
// the "breadcrumbs" template variable.
type Breadcrumb struct {
	view.Base

	Label view.Value
	URL   view.Value
}

func (m *Breadcrumb) Kind() string { return "breadcrumb" }

func (m *Breadcrumb) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	url, err := view.ResolveString(r, c, m, m.URL)
	if err != nil {
		return nil, err
	}
	label, err := view.ResolveString(r, c, m, m.Label)
	if err != nil {
		return nil, err
	}
	c.SetVar("breadcrumbs", c.AddBreadcrumb(view.Crumb{Label: label, URL: url}))
	return nil, nil
}

// Property stores a resolved value as a template variable.
type Property struct {
	view.Base

	Name  string
	Value view.Value
}

func (m *Property) Kind() string { return "property" }

func (m *Property) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	out, err := view.Resolve(r, c, m, m.Value)
	if err != nil {
		return nil, err
	}
	c.SetVar(m.Name, out)
	return nil, nil
}
