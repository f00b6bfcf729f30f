// pkg/modules/list.go
package modules

import (
	"maps"
	"net/http"

	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
)

// LoadList loads a collection with one Filter query. Criteria built from
// request parameters are overlaid by the raw criteria, which win on a
// shared key.
type LoadList struct {
	view.Base

	Model      view.Value
	Name       string
	Filter     map[string]view.Value
	FilterRaw  store.Criteria
	Exclude    map[string]view.Value
	ExcludeRaw store.Criteria
}

func (m *LoadList) Kind() string { return "list" }

func (m *LoadList) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	model, err := resolveModel(r, c, m, m.Model)
	if err != nil {
		return nil, err
	}
	recs, err := m.LoadObjects(r, c, model)
	if err != nil {
		return nil, err
	}
	name := nameOr(m.Name, model)
	c.SetRecord(name, recs)
	c.SetVar(name, recs)
	return nil, nil
}

// LoadObjects runs the query for this request.
func (m *LoadList) LoadObjects(r *view.Request, c *view.Context, model store.Model) ([]store.Record, error) {
	include, err := criteria(r, c, m.Filter, m.FilterRaw)
	if err != nil {
		return nil, err
	}
	exclude, err := criteria(r, c, m.Exclude, m.ExcludeRaw)
	if err != nil {
		return nil, err
	}
	return model.Filter(r.Context(), include, exclude)
}

func criteria(r *view.Request, c *view.Context, params map[string]view.Value, raw store.Criteria) (store.Criteria, error) {
	out, err := view.LocateAll(r, c, params)
	if err != nil {
		return nil, err
	}
	maps.Copy(out, raw)
	return store.Criteria(out), nil
}

// FilterList replaces the collection stored under Name with the result of
// Filter, which is called with the current collection.
type FilterList struct {
	view.Base

	Name   string
	Filter view.Value
}

func (m *FilterList) Kind() string { return "filter" }

func (m *FilterList) Dispatch(r *view.Request, c *view.Context) (http.Handler, error) {
	cur, _ := c.Record(m.Name)
	out, err := view.Resolve(r, c, m, m.Filter, cur)
	if err != nil {
		return nil, err
	}
	c.SetRecord(m.Name, out)
	c.SetVar(m.Name, out)
	return nil, nil
}
