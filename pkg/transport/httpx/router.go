// pkg/transport/httpx/router.go
package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router is the HTTP router contract the view mounting code depends on.
type Router interface {
	Use(mw ...func(http.Handler) http.Handler)
	Handle(method, path string, h http.Handler)
	NotFound(h http.HandlerFunc)
	MethodNotAllowed(h http.HandlerFunc)
	Mux() http.Handler
}

// chiRouter is the default Router, backed by chi.
type chiRouter struct{ r *chi.Mux }

// NewChi returns a chi-backed Router. Path captures ({pk}) reach the views
// as kwargs.
func NewChi() Router { return &chiRouter{r: chi.NewRouter()} }

func (c *chiRouter) Use(mw ...func(http.Handler) http.Handler)  { c.r.Use(mw...) }
func (c *chiRouter) Handle(method, path string, h http.Handler) { c.r.Method(method, path, h) }
func (c *chiRouter) NotFound(h http.HandlerFunc)                { c.r.NotFound(h) }
func (c *chiRouter) MethodNotAllowed(h http.HandlerFunc)        { c.r.MethodNotAllowed(h) }
func (c *chiRouter) Mux() http.Handler                          { return c.r }
