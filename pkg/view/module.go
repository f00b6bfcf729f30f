// pkg/view/module.go
package view

import (
	"net/http"

	"github.com/nrednav/cuid2"
)

// Module is one unit of request handling. Each hook returns a non-nil
// handler to end the stage, or nil to let the pipeline continue.
type Module interface {
	ID() string
	Dispatch(r *Request, c *Context) (http.Handler, error)
	Get(r *Request, c *Context) (http.Handler, error)
	Post(r *Request, c *Context) (http.Handler, error)
	Put(r *Request, c *Context) (http.Handler, error)
	Delete(r *Request, c *Context) (http.Handler, error)
}

// Base gives a module its identity and no-op hooks. Embed it and override
// the hooks the module cares about.
type Base struct {
	id string
}

// NewBase assigns a fresh identifier.
func NewBase() Base { return Base{id: cuid2.Generate()} }

// ID returns the module identifier. A zero Base gets one on first call;
// NewController touches every module of its pipeline so that happens before
// the pipeline is shared between requests.
func (b *Base) ID() string {
	if b.id == "" {
		b.id = cuid2.Generate()
	}
	return b.id
}

func (*Base) Dispatch(*Request, *Context) (http.Handler, error) { return nil, nil }
func (*Base) Get(*Request, *Context) (http.Handler, error)      { return nil, nil }
func (*Base) Post(*Request, *Context) (http.Handler, error)     { return nil, nil }
func (*Base) Put(*Request, *Context) (http.Handler, error)      { return nil, nil }
func (*Base) Delete(*Request, *Context) (http.Handler, error)   { return nil, nil }

// Parent is implemented by modules that run a nested pipeline.
type Parent interface {
	Children() []Module
}

// Walk calls fn for every module of mods, depth first.
func Walk(mods []Module, fn func(Module)) {
	for _, m := range mods {
		fn(m)
		if p, ok := m.(Parent); ok {
			Walk(p.Children(), fn)
		}
	}
}

// Invoke calls the hook of m named by stage.
func Invoke(m Module, stage Stage, r *Request, c *Context) (http.Handler, error) {
	switch stage {
	case StageDispatch:
		return m.Dispatch(r, c)
	case StageGet:
		return m.Get(r, c)
	case StagePost:
		return m.Post(r, c)
	case StagePut:
		return m.Put(r, c)
	case StageDelete:
		return m.Delete(r, c)
	default:
		return nil, nil
	}
}
