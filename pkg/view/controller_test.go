package view

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoModule answers GET with the pk kwarg and the view name.
type echoModule struct{ Base }

func (*echoModule) Get(r *Request, c *Context) (http.Handler, error) {
	return HTML(c.View() + ":" + r.Kwargs["pk"]), nil
}

func TestControllerServeHTTP(t *testing.T) {
	t.Parallel()

	var calls []string
	obs := &countingObserver{}
	failing := NewController("broken", []Module{&stubModule{name: "x", calls: &calls, fail: StageGet}})
	ctrl := NewController("items", []Module{&echoModule{}}, WithObserver(obs))

	r := chi.NewRouter()
	r.Handle("/items/{pk}", ctrl)
	r.Handle("/broken", failing)

	tests := []struct {
		name      string
		method    string
		path      string
		expStatus int
		expBody   string
	}{
		{name: "ok/get", method: "GET", path: "/items/42", expStatus: http.StatusOK, expBody: "items:42"},
		{name: "fallback/not_found", method: "POST", path: "/items/42", expStatus: http.StatusNotFound},
		{name: "fallback/method", method: "PATCH", path: "/items/42", expStatus: http.StatusMethodNotAllowed},
		{name: "err/500", method: "GET", path: "/broken", expStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expStatus, rec.Code)
			if tt.expBody != "" {
				assert.Equal(t, tt.expBody, rec.Body.String())
			}
		})
	}
	assert.Contains(t, obs.stages, StageDispatch)
	assert.Contains(t, obs.stages, StageGet)
}

func TestControllerAllowHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewController("v", nil).ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST, PUT, DELETE", rec.Header().Get("Allow"))
}

func TestControllerCustomFallback(t *testing.T) {
	t.Parallel()

	ctrl := NewController("v", nil, WithFallback(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := httptest.NewRecorder()
	ctrl.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestControllerConcurrentRequests(t *testing.T) {
	t.Parallel()

	ctrl := NewController("items", []Module{&echoModule{}}, WithKwargs(func(r *http.Request) map[string]string {
		return map[string]string{"pk": r.URL.Query().Get("pk")}
	}))

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pk := string(rune('a' + i%26))
			rec := httptest.NewRecorder()
			ctrl.ServeHTTP(rec, httptest.NewRequest("GET", "/?pk="+pk, nil))
			assert.Equal(t, "items:"+pk, rec.Body.String())
		}()
	}
	wg.Wait()
}

func TestURLParams(t *testing.T) {
	t.Parallel()

	var got map[string]string
	r := chi.NewRouter()
	r.Get("/a/{x}/{y}/*", func(_ http.ResponseWriter, req *http.Request) { got = URLParams(req) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/a/1/2/rest", nil))

	require.NotNil(t, got)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, got)
}
