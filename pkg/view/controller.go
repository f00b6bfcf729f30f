// pkg/view/controller.go
package view

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/modview/pkg/render"
	"go.uber.org/zap"
)

// Controller is the request entry point of a pipeline. The module list and
// options are fixed once NewController returns and are shared by every
// request; per-request state lives in a fresh Context.
type Controller struct {
	name      string
	modules   []Module
	callbacks Table
	renderer  render.Renderer
	log       *zap.Logger
	obs       Observer
	kwargs    func(*http.Request) map[string]string
	fallback  http.Handler
}

type Option func(*Controller)

// WithCallbacks sets the controller table, the first scope of every named lookup.
func WithCallbacks(t Table) Option { return func(v *Controller) { v.callbacks = t } }

func WithRenderer(r render.Renderer) Option { return func(v *Controller) { v.renderer = r } }
func WithLogger(l *zap.Logger) Option       { return func(v *Controller) { v.log = l } }
func WithObserver(o Observer) Option        { return func(v *Controller) { v.obs = o } }

// WithKwargs replaces the default chi URL-parameter extraction.
func WithKwargs(fn func(*http.Request) map[string]string) Option {
	return func(v *Controller) { v.kwargs = fn }
}

// WithFallback sets the handler used when no module answers.
func WithFallback(h http.Handler) Option { return func(v *Controller) { v.fallback = h } }

func NewController(name string, mods []Module, opts ...Option) *Controller {
	v := &Controller{
		name:    name,
		modules: mods,
		log:     zap.NewNop(),
		kwargs:  URLParams,
	}
	for _, o := range opts {
		o(v)
	}
	if v.fallback == nil {
		v.fallback = http.HandlerFunc(defaultFallback)
	}
	// assign ids up front; Base.ID is not safe to call lazily once shared
	Walk(mods, func(m Module) { _ = m.ID() })
	return v
}

func (v *Controller) Name() string      { return v.name }
func (v *Controller) Modules() []Module { return v.modules }

// NewContext builds the per-request state for this controller.
func (v *Controller) NewContext(r *http.Request) *Context {
	l := v.log
	if rid := chimd.GetReqID(r.Context()); rid != "" {
		l = l.With(zap.String("requestId", rid))
	}
	return NewContext(ContextOptions{
		View:      v.name,
		Callbacks: v.callbacks,
		Renderer:  v.renderer,
		Logger:    l.With(zap.String("view", v.name)),
		Observer:  v.obs,
	})
}

// Handle runs the dispatch stage and then the method stage. A nil handler
// means no module answered.
func (v *Controller) Handle(r *Request, c *Context) (http.Handler, error) {
	v.observe(StageDispatch)
	h, err := RunStage(r, c, StageDispatch, v.modules)
	if err != nil || h != nil {
		return h, err
	}
	stage, ok := MethodStage(r.Method)
	if !ok {
		return nil, nil
	}
	v.observe(stage)
	return RunStage(r, c, stage, v.modules)
}

func (v *Controller) ServeHTTP(w http.ResponseWriter, hr *http.Request) {
	r := NewRequest(hr, v.kwargs(hr))
	c := v.NewContext(hr)

	h, err := v.Handle(r, c)
	if err != nil {
		c.Log().Error("pipeline failed",
			zap.String("method", hr.Method),
			zap.String("path", hr.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if h == nil {
		h = v.fallback
	}
	h.ServeHTTP(w, hr)
}

func (v *Controller) observe(stage Stage) {
	if v.obs != nil {
		v.obs.StageRun(v.name, stage)
	}
}

func defaultFallback(w http.ResponseWriter, r *http.Request) {
	if _, ok := MethodStage(r.Method); !ok {
		w.Header().Set("Allow", "GET, POST, PUT, DELETE")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	http.NotFound(w, r)
}

// URLParams returns the chi route captures of r as kwargs.
func URLParams(r *http.Request) map[string]string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return nil
	}
	out := make(map[string]string, len(rc.URLParams.Keys))
	for i, k := range rc.URLParams.Keys {
		if k == "*" || i >= len(rc.URLParams.Values) {
			continue
		}
		out[k] = rc.URLParams.Values[i]
	}
	return out
}
