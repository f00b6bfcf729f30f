// pkg/core/registry.go
package core

import (
	"maps"
	"sync"

	"github.com/joeydtaylor/modview/pkg/form"
	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
)

// Registry holds the models, form classes and callbacks a manifest refers to
// by name.
type Registry struct {
	mu        sync.RWMutex
	models    map[string]store.Model
	forms     map[string]form.Class
	callbacks view.Table
}

func NewRegistry() *Registry {
	return &Registry{
		models:    map[string]store.Model{},
		forms:     map[string]form.Class{},
		callbacks: view.Table{},
	}
}

// Default is the registry used by the modview command.
var Default = NewRegistry()

// Register makes a callback available to every view of the manifest under
// name ("@name").
func Register(name string, fn view.Func) { Default.Callback(name, fn) }

// Lookup retrieves a callback registered on Default.
func Lookup(name string) (view.Func, bool) { return Default.LookupCallback(name) }

func (r *Registry) Model(name string, m store.Model) *Registry {
	r.mu.Lock()
	r.models[name] = m
	r.mu.Unlock()
	return r
}

func (r *Registry) Form(name string, c form.Class) *Registry {
	r.mu.Lock()
	r.forms[name] = c
	r.mu.Unlock()
	return r
}

func (r *Registry) Callback(name string, fn view.Func) *Registry {
	r.mu.Lock()
	r.callbacks.Define(name, fn)
	r.mu.Unlock()
	return r
}

// Value registers a plain table entry, such as a site title.
func (r *Registry) Value(name string, v any) *Registry {
	r.mu.Lock()
	r.callbacks.Set(name, v)
	r.mu.Unlock()
	return r
}

func (r *Registry) LookupModel(name string) (store.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

func (r *Registry) LookupForm(name string) (form.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.forms[name]
	return c, ok
}

func (r *Registry) LookupCallback(name string) (view.Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.callbacks[name].(view.Func)
	return fn, ok
}

// Table returns a copy of the callback table.
func (r *Registry) Table() view.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.callbacks)
}
