package core

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/joeydtaylor/modview/pkg/form"
	manifest "github.com/joeydtaylor/modview/pkg/manifest"
	"github.com/joeydtaylor/modview/pkg/store"
	"github.com/joeydtaylor/modview/pkg/store/sqlstore"
	httpx "github.com/joeydtaylor/modview/pkg/transport/httpx"
	"github.com/joeydtaylor/modview/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemManifest = `
[[view]]
name = "item"
path = "/items/{pk}"
methods = ["GET", "DELETE"]
table = { site = "Shop" }

  [[view.module]]
  kind = "load"
  model = "item"
  lookup = { id = "pk" }
  on_delete = "@gone"

  [[view.module]]
  kind = "property"
  name = "site"
  value = "@site"

  [[view.module]]
  kind = "callback"
  on_get = "@show"
`

func itemRegistry() (*Registry, *store.Memory) {
	items := store.NewMemory("item", nil)
	items.Insert(map[string]any{"title": "lamp"})

	reg := NewRegistry().
		Model("item", items).
		Callback("show", func(_ *view.Request, c *view.Context, _ ...any) (any, error) {
			rec, _ := c.Record("item")
			site, _ := c.Var("site")
			return map[string]any{"site": site, "title": rec.(store.Record).Get("title")}, nil
		}).
		Callback("gone", func(*view.Request, *view.Context, ...any) (any, error) {
			return "deleted", nil
		})
	return reg, items
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestBuildRouter(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(itemManifest))
	require.NoError(t, err)
	reg, items := itemRegistry()

	h, err := BuildRouter(cfg, BuildDeps{Router: httpx.NewChi(), Registry: reg})
	require.NoError(t, err)

	w := do(h, "GET", "/items/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"site":"Shop","title":"lamp"}`, w.Body.String())

	w = do(h, "GET", "/items/9")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"site":"Shop","title":null}`, w.Body.String())

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, "POST", "/items/1").Code)
	assert.Equal(t, http.StatusNotFound, do(h, "GET", "/nope").Code)
	assert.Equal(t, http.StatusOK, do(h, "GET", "/ping").Code)

	w = do(h, "DELETE", "/items/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", w.Body.String())
	assert.Equal(t, 0, items.Len())
}

func TestBuildRouterUnknownNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module string
		expErr string
	}{
		{name: "model", module: `kind = "load"` + "\n" + `model = "ghost"`, expErr: `model "ghost" not registered`},
		{name: "form", module: `kind = "form"` + "\n" + `form = "ghost"`, expErr: `form "ghost" not registered`},
		{name: "partial_callback", module: `kind = "partial"` + "\n" + `section = "side"` + "\n" + `template = "@ghost"`, expErr: `callback "ghost" not registered`},
		{name: "lookup_callback", module: `kind = "list"` + "\n" + `model = "item"` + "\n" + `filter = { id = "@ghost" }`, expErr: `callback "ghost" not registered`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := fmt.Sprintf("[[view]]\npath = \"/x\"\n[[view.module]]\n%s\n", tt.module)
			cfg, err := ParseConfig([]byte(doc))
			require.NoError(t, err)
			reg, _ := itemRegistry()

			_, err = BuildRouter(cfg, BuildDeps{Router: httpx.NewChi(), Registry: reg})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expErr)
		})
	}
}

func TestParseConfigRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte("[[view]]\npath = \"/x\"\ncolour = \"red\"\n[[view.module]]\nkind = \"property\"\nname = \"a\"\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("[server]\ntimeout_ms = 10\n"))
	require.EqualError(t, err, "no views defined")
}

func TestViewTable(t *testing.T) {
	t.Parallel()

	reg, _ := itemRegistry()
	reg.Value("site", "Registry")

	tbl, err := ViewTable(parseView(t, `table = { site = "View", render = "@show" }`), reg)
	require.NoError(t, err)
	assert.Equal(t, "View", tbl["site"])
	assert.IsType(t, view.Func(nil), tbl["render"])
	assert.IsType(t, view.Func(nil), tbl["gone"])

	// the registry keeps its own entry
	assert.Equal(t, "Registry", reg.Table()["site"])
}

func parseView(t *testing.T, extra string) manifest.View {
	t.Helper()
	cfg, err := ParseConfig([]byte("[[view]]\npath = \"/x\"\n" + extra + "\n[[view.module]]\nkind = \"property\"\nname = \"a\"\n"))
	require.NoError(t, err)
	return cfg.Views[0]
}

const noteManifest = `
[server]
database = "ignored"

[[model]]
name = "note"
columns = ["body", "state"]
defaults = { state = "draft" }

[[form]]
name = "note_edit"
model = "note"
fields = ["body"]
required = ["body"]

[[view]]
name = "note_new"
path = "/notes/new"
methods = ["GET", "POST"]

  [[view.module]]
  kind = "form"
  form = "note_edit"
  success = "saved"
`

func TestBindSQL(t *testing.T) {
	t.Parallel()

	db, err := sqlstore.Open(t.Context(), "file:core-bind?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg, err := ParseConfig([]byte(noteManifest))
	require.NoError(t, err)

	reg := NewRegistry().Callback("saved", func(*view.Request, *view.Context, ...any) (any, error) {
		return "saved", nil
	})
	require.NoError(t, reg.Bind(t.Context(), cfg, db))
	notes, ok := reg.LookupModel("note")
	require.True(t, ok)
	_, ok = reg.LookupForm("note_edit")
	require.True(t, ok)

	h, err := BuildRouter(cfg, BuildDeps{Router: httpx.NewChi(), Registry: reg})
	require.NoError(t, err)

	body := url.Values{"body": {"hello"}}.Encode()
	req := httptest.NewRequest("POST", "/notes/new", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved", w.Body.String())

	recs, err := notes.Filter(t.Context(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "hello", recs[0].Get("body"))
	assert.Equal(t, "draft", recs[0].Get("state"))
}

func TestBindWithoutDatabase(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(noteManifest))
	require.NoError(t, err)
	err = NewRegistry().Bind(t.Context(), cfg, nil)
	require.EqualError(t, err, "manifest declares 1 models but no database is configured")
}

const homeManifest = `
[[view]]
name = "home"
path = "/home"

  [[view.module]]
  kind = "form"
  form = "item_edit"

  [[view.module]]
  kind = "form"
  form = "@note_form"

  [[view.module]]
  kind = "partial"
  section = "side"
  template = "@aside"

  [[view.module]]
  kind = "callback"
  on_get = "render_home"
`

func TestBuildRouterHooksAndNames(t *testing.T) {
	t.Parallel()

	items := store.NewMemory("item", nil)
	reg := NewRegistry().
		Model("item", items).
		Form("item_edit", form.Model{Model: items, Fields: []string{"title"}}).
		Value("note_form", form.Model{Model: items, Fields: []string{"note"}}).
		Callback("aside", func(*view.Request, *view.Context, ...any) (any, error) {
			return "<aside>hi</aside>", nil
		}).
		Callback("render_home", func(_ *view.Request, c *view.Context, _ ...any) (any, error) {
			_, edit := c.Form("item_edit")
			_, note := c.Form("note_form")
			side, _ := c.Section("side")
			return fmt.Sprintf("%t %t %s", edit, note, side), nil
		})

	cfg, err := ParseConfig([]byte(homeManifest))
	require.NoError(t, err)
	h, err := BuildRouter(cfg, BuildDeps{Router: httpx.NewChi(), Registry: reg})
	require.NoError(t, err)

	w := do(h, "GET", "/home")
	require.Equal(t, http.StatusOK, w.Code)
	// both forms keep their own slot, the partial came from a callback and
	// the bare hook name called the callback
	assert.Equal(t, "true true <aside>hi</aside>", w.Body.String())
}
