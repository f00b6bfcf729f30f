package modules

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/joeydtaylor/modview/pkg/form"
	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(ctrl http.Handler, target string, data url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", target, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ctrl.ServeHTTP(w, req)
	return w
}

func itemEditor(items *store.Memory) *view.Controller {
	mods := []view.Module{
		&Load{Model: view.Literal(items), Lookup: map[string]view.Value{"id": view.Named("pk")}},
		&Form{
			Class:    view.Named("ItemForm"),
			Instance: view.Named("item"),
			Success:  view.Literal(http.RedirectHandler("/items", http.StatusSeeOther)),
		},
	}
	table := view.Table{}.Set("ItemForm", form.Model{Model: items, Fields: []string{"title"}, Required: []string{"title"}})
	return view.NewController("item_edit", mods, view.WithCallbacks(table))
}

func TestFormCreatesAndUpdates(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	ctrl := itemEditor(items)

	w := postForm(ctrl, "/", url.Values{"title": {"first"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, 1, items.Len())

	w = postForm(ctrl, "/?pk=1", url.Values{"title": {"renamed"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, 1, items.Len())

	l, err := items.Get(t.Context(), store.Criteria{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "renamed", l.Record.Get("title"))
}

func TestFormInvalidHasNoResult(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	w := postForm(itemEditor(items), "/", url.Values{"title": {"  "}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, items.Len())
}

func TestFormBindsOnDispatch(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	items.Insert(map[string]any{"title": "stored"})
	m := &Form{Class: view.Literal(form.Model{Model: items, Fields: []string{"title"}}), Name: "edit", Instance: view.Literal("item")}

	c := view.NewContext(view.ContextOptions{})
	l, err := items.Get(t.Context(), store.Criteria{"id": 1})
	require.NoError(t, err)
	c.SetRecord("item", l.Record)

	_, err = m.Dispatch(newTestRequest("GET", "/", nil), c)
	require.NoError(t, err)
	f, ok := c.Form("edit")
	require.True(t, ok)
	mf := f.(*form.ModelForm)
	assert.Equal(t, "stored", mf.Value("title"))
	assert.False(t, f.IsValid())
	v, _ := c.Var("edit")
	assert.Same(t, mf, v)
}

func TestFormNoSave(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	ctrl := view.NewController("contact", []view.Module{&Form{
		Class:   view.Literal(form.Model{Model: items, Fields: []string{"title"}}),
		NoSave:  true,
		Success: view.Literal("thanks"),
	}})

	w := postForm(ctrl, "/", url.Values{"title": {"x"}})
	assert.Equal(t, "thanks", w.Body.String())
	assert.Equal(t, 0, items.Len())
}

func TestFormSetGetsCollection(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	items.Insert(map[string]any{"title": "a"})
	items.Insert(map[string]any{"title": "b"})

	var got form.Args
	cls := form.SetClassFunc(func(a form.Args) (form.Form, error) {
		got = a
		return form.Model{Model: items}.New(form.Args{})
	})
	mods := []view.Module{
		&LoadList{Model: view.Literal(items), Name: "items"},
		&Form{Class: view.Literal(cls), Instance: view.Named("items"), Extra: map[string]any{"prefix": "p"}},
	}

	_, err := view.RunStage(newTestRequest("GET", "/", nil), view.NewContext(view.ContextOptions{}), view.StageDispatch, mods)
	require.NoError(t, err)
	assert.Len(t, got.Collection, 2)
	assert.Nil(t, got.Instance)
	assert.False(t, got.Bound())
	assert.Equal(t, "p", got.Extra["prefix"])
}

func TestFormBadClass(t *testing.T) {
	t.Parallel()

	m := &Form{Class: view.Named("Missing")}
	_, err := m.Dispatch(newTestRequest("GET", "/", nil), view.NewContext(view.ContextOptions{}))
	require.Error(t, err)
}
