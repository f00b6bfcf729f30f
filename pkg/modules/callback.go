// pkg/modules/callback.go
package modules

import (
	"net/http"

	"github.com/joeydtaylor/modview/pkg/view"
)

// Callback runs arbitrary logic per stage. A truthy result ends the stage.
type Callback struct {
	view.Base

	OnDispatch view.Value
	OnGet      view.Value
	OnPost     view.Value
	OnPut      view.Value
	OnDelete   view.Value
}

func (m *Callback) Kind() string { return "callback" }

func (m *Callback) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, m.OnDispatch)
}

func (m *Callback) Get(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, m.OnGet)
}

func (m *Callback) Post(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, m.OnPost)
}

func (m *Callback) Put(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, m.OnPut)
}

func (m *Callback) Delete(r *view.Request, c *view.Context) (http.Handler, error) {
	return m.run(r, c, m.OnDelete)
}

func (m *Callback) run(r *view.Request, c *view.Context, v view.Value) (http.Handler, error) {
	out, err := view.Resolve(r, c, m, v)
	if err != nil {
		return nil, err
	}
	return view.Respond(out), nil
}
