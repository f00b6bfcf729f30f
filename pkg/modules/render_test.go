package modules

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/joeydtaylor/modview/pkg/render"
	"github.com/joeydtaylor/modview/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplates(t *testing.T) *render.Templates {
	t.Helper()
	tpl, err := render.New(fstest.MapFS{
		"item.html":   {Data: []byte(`{{.view}}:{{.title}}`)},
		"saved.html":  {Data: []byte(`saved {{.title}}`)},
		"side.html":   {Data: []byte(`<aside>{{.title}}</aside>`)},
		"layout.html": {Data: []byte(`{{.base}}|{{.theme}}|{{.sidebar}}|{{.footer}}`)},
	})
	require.NoError(t, err)
	return tpl
}

func serve(t *testing.T, ctrl http.Handler, method string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ctrl.ServeHTTP(w, httptest.NewRequest(method, "/", nil))
	return w
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	mods := []view.Module{
		&Property{Name: "title", Value: view.Literal("<b>")},
		&Template{GetTemplate: view.Literal("item.html"), PostTemplate: view.Literal("saved.html")},
	}
	ctrl := view.NewController("detail", mods, view.WithRenderer(testTemplates(t)))

	w := serve(t, ctrl, "GET")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "detail:&lt;b&gt;", w.Body.String())

	w = serve(t, ctrl, "POST")
	assert.Equal(t, "saved &lt;b&gt;", w.Body.String())
}

func TestTemplateWithoutRenderer(t *testing.T) {
	t.Parallel()

	ctrl := view.NewController("detail", []view.Module{&Template{GetTemplate: view.Literal("item.html")}})
	assert.Equal(t, http.StatusInternalServerError, serve(t, ctrl, "GET").Code)
}

func TestPartialAndLayout(t *testing.T) {
	t.Parallel()

	mods := []view.Module{
		&Property{Name: "title", Value: view.Literal("hi")},
		&Partial{Section: "sidebar", Template: view.Literal("side.html")},
		&Partial{Section: "footer", Template: view.Callback(func(*view.Request, *view.Context, ...any) (any, error) {
			return template.HTML("<footer/>"), nil
		})},
		&Layout{Layout: view.Literal("layout.html"), BaseTemplate: "base.html", Settings: map[string]any{"theme": "dark"}},
	}
	ctrl := view.NewController("page", mods, view.WithRenderer(testTemplates(t)))

	w := serve(t, ctrl, "GET")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "base.html|dark|<aside>hi</aside>|<footer/>", w.Body.String())

	// partials never answer on their own
	ctrl = view.NewController("page", mods[:3], view.WithRenderer(testTemplates(t)))
	assert.Equal(t, http.StatusNotFound, serve(t, ctrl, "GET").Code)
}
