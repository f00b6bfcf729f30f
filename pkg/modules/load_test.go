package modules

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingModel is a store.Model whose lookups always fail.
type failingModel struct{ *store.Memory }

func (failingModel) Get(context.Context, store.Criteria) (store.Lookup, error) {
	return store.Lookup{}, errors.New("connection reset")
}

type fallbackRecorder struct{ reasons []string }

func (*fallbackRecorder) StageRun(string, view.Stage)             {}
func (*fallbackRecorder) ShortCircuit(string, view.Stage, string) {}
func (o *fallbackRecorder) LoadFallback(_, model, reason string) {
	o.reasons = append(o.reasons, model+":"+reason)
}

func newTestRequest(method, target string, kwargs map[string]string) *view.Request {
	return view.NewRequest(httptest.NewRequest(method, target, nil), kwargs)
}

func TestLoadObjectFallsBackToNew(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", map[string]any{"title": "untitled"})
	items.Insert(map[string]any{"title": "a", "kind": "x"})
	items.Insert(map[string]any{"title": "b", "kind": "x"})

	tests := []struct {
		name      string
		model     store.Model
		kwargs    map[string]string
		expReason string
	}{
		{name: "not_found", model: items, kwargs: map[string]string{"pk": "99"}, expReason: "item:not found"},
		{name: "ambiguous", model: items, kwargs: map[string]string{"kind": "x"}, expReason: "item:ambiguous"},
		{name: "store_error", model: failingModel{items}, kwargs: map[string]string{"pk": "1"}, expReason: "item:error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &fallbackRecorder{}
			c := view.NewContext(view.ContextOptions{Observer: obs})
			m := &Load{Model: view.Literal(tt.model), Lookup: map[string]view.Value{
				"id":   view.Named("pk"),
				"kind": view.Named("kind"),
			}}
			if _, ok := tt.kwargs["kind"]; ok {
				delete(m.Lookup, "id")
			} else {
				delete(m.Lookup, "kind")
			}

			rec, err := m.LoadObject(newTestRequest("GET", "/", tt.kwargs), c, tt.model)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.False(t, rec.Saved())
			assert.Equal(t, "untitled", rec.Get("title"))
			assert.Equal(t, []string{tt.expReason}, obs.reasons)
		})
	}
}

func TestLoadObjectWithoutLookupIsFresh(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	m := &Load{Model: view.Literal(items)}
	r := newTestRequest("GET", "/", nil)
	c := view.NewContext(view.ContextOptions{})

	a, err := m.LoadObject(r, c, items)
	require.NoError(t, err)
	b, err := m.LoadObject(r, c, items)
	require.NoError(t, err)

	assert.False(t, a.Saved())
	a.Set("title", "changed")
	assert.Nil(t, b.Get("title"))
	assert.NotSame(t, a, b)
}

func TestLoadDispatch(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	saved := items.Insert(map[string]any{"title": "hello"})

	m := &Load{
		Model:  view.Named("items"),
		Lookup: map[string]view.Value{"id": view.Named("pk")},
	}
	c := view.NewContext(view.ContextOptions{Callbacks: view.Table{}.Set("items", items)})

	h, err := m.Dispatch(newTestRequest("GET", "/?pk=1", nil), c)
	require.NoError(t, err)
	assert.Nil(t, h)

	got, ok := c.Record("item")
	require.True(t, ok)
	assert.Equal(t, saved.ID, got.(store.Record).Get("id"))
	v, _ := c.Var("item")
	assert.Same(t, got, v)
}

func TestLoadAfterLoad(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	items.Insert(map[string]any{"title": "hello"})

	m := &Load{
		Model:  view.Literal(items),
		Name:   "obj",
		Lookup: map[string]view.Value{"id": view.Named("pk")},
		AfterLoad: view.Callback(func(_ *view.Request, _ *view.Context, args ...any) (any, error) {
			rec := args[0].(store.Record)
			if !rec.Saved() {
				return nil, nil
			}
			return rec.Get("title"), nil
		}),
	}

	h, err := m.Dispatch(newTestRequest("GET", "/", map[string]string{"pk": "1"}), view.NewContext(view.ContextOptions{}))
	require.NoError(t, err)
	require.NotNil(t, h)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "hello", w.Body.String())

	h, err = m.Dispatch(newTestRequest("GET", "/", map[string]string{"pk": "2"}), view.NewContext(view.ContextOptions{}))
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestLoadDelete(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	items.Insert(map[string]any{"title": "hello"})

	ctrl := view.NewController("item", []view.Module{&Load{
		Model:    view.Literal(items),
		Lookup:   map[string]view.Value{"id": view.Named("pk")},
		OnDelete: view.Literal(http.RedirectHandler("/items", http.StatusSeeOther)),
	}}, view.WithKwargs(func(r *http.Request) map[string]string {
		return map[string]string{"pk": r.URL.Query().Get("pk")}
	}))

	w := httptest.NewRecorder()
	ctrl.ServeHTTP(w, httptest.NewRequest("DELETE", "/?pk=1", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 0, items.Len())

	// a missing record falls back to a fresh one: nothing to delete, no answer
	w = httptest.NewRecorder()
	ctrl.ServeHTTP(w, httptest.NewRequest("DELETE", "/?pk=1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	ctrl.ServeHTTP(w, httptest.NewRequest("DELETE", "/?pk=999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadBadModel(t *testing.T) {
	t.Parallel()

	m := &Load{Model: view.Literal("not a model")}
	_, err := m.Dispatch(newTestRequest("GET", "/", nil), view.NewContext(view.ContextOptions{}))
	require.Error(t, err)
}
