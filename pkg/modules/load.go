// pkg/modules/load.go
package modules

import (
	"fmt"
	"net/http"

	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
	"go.uber.org/zap"
)

// Load loads one record into the context.
//
// With Lookup set, the record is the single match of the criteria built from
// request parameters; a miss, an ambiguous match or a store failure is logged
// and replaced by a fresh unsaved record. Without Lookup, a fresh unsaved
// record is built on every dispatch.
type Load struct {
	view.Base

	Model     view.Value            // resolves to a store.Model
	Name      string                // defaults to the model name
	Lookup    map[string]view.Value // field -> request parameter
	AfterLoad view.Value            // called with the record; a truthy result ends the stage
	OnDelete  view.Value            // enables Delete of a stored record; its result is the response
}

func (m *Load) Kind() string { return "load" }

func (m *Load) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	model, err := resolveModel(r, c, m, m.Model)
	if err != nil {
		return nil, err
	}
	rec, err := m.LoadObject(r, c, model)
	if err != nil {
		return nil, err
	}
	name := nameOr(m.Name, model)
	c.SetRecord(name, rec)
	c.SetVar(name, rec)

	if m.AfterLoad.IsZero() {
		return nil, nil
	}
	out, err := view.Resolve(r, c, m, m.AfterLoad, rec)
	if err != nil {
		return nil, err
	}
	return view.Respond(out), nil
}

// LoadObject returns the record selected by Lookup, or a fresh one.
func (m *Load) LoadObject(r *view.Request, c *view.Context, model store.Model) (store.Record, error) {
	if len(m.Lookup) == 0 {
		return model.New(), nil
	}
	where, err := view.LocateAll(r, c, m.Lookup)
	if err != nil {
		return nil, err
	}
	l, err := model.Get(r.Context(), store.Criteria(where))
	if err != nil {
		c.Log().Warn("record lookup failed, using a new record",
			zap.String("model", model.Name()),
			zap.Any("lookup", where),
			zap.Error(err),
		)
		c.NoteFallback(model.Name(), "error")
		return model.New(), nil
	}
	if l.Status != store.Found {
		c.Log().Warn("record lookup missed, using a new record",
			zap.String("model", model.Name()),
			zap.Any("lookup", where),
			zap.Stringer("status", l.Status),
		)
		c.NoteFallback(model.Name(), l.Status.String())
		return model.New(), nil
	}
	return l.Record, nil
}

func (m *Load) Delete(r *view.Request, c *view.Context) (http.Handler, error) {
	if m.OnDelete.IsZero() {
		return nil, nil
	}
	model, err := resolveModel(r, c, m, m.Model)
	if err != nil {
		return nil, err
	}
	v, ok := c.Record(nameOr(m.Name, model))
	if !ok {
		return nil, nil
	}
	rec, ok := v.(store.Record)
	if !ok {
		return nil, fmt.Errorf("record %q is a %T", nameOr(m.Name, model), v)
	}
	// a fresh fallback record was never stored: no result, so the view 404s
	if !rec.Saved() {
		return nil, nil
	}
	if err := rec.Delete(r.Context()); err != nil {
		return nil, err
	}
	out, err := view.Resolve(r, c, m, m.OnDelete)
	if err != nil {
		return nil, err
	}
	return view.Respond(out), nil
}

func resolveModel(r *view.Request, c *view.Context, m view.Module, v view.Value) (store.Model, error) {
	out, err := view.Resolve(r, c, m, v)
	if err != nil {
		return nil, err
	}
	model, ok := out.(store.Model)
	if !ok {
		return nil, fmt.Errorf("model %s resolved to %T", v, out)
	}
	return model, nil
}

func nameOr(name string, model store.Model) string {
	if name != "" {
		return name
	}
	return model.Name()
}
