// pkg/render/render.go
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
)

// Renderer is the template collaborator used by the view modules.
type Renderer interface {
	// Render executes name against vars and returns the page as a response.
	Render(r *http.Request, name string, vars map[string]any) (http.Handler, error)
	// RenderString executes name and returns the markup.
	RenderString(name string, vars map[string]any, r *http.Request) (string, error)
}

// Templates renders html/template files loaded from a file system.
type Templates struct {
	set *template.Template
}

var _ Renderer = (*Templates)(nil)

// New parses every template matching patterns in fsys. Templates are
// addressed by base file name (or by their {{define}} name).
func New(fsys fs.FS, patterns ...string) (*Templates, error) {
	if len(patterns) == 0 {
		patterns = []string{"*.html"}
	}
	set, err := template.New("").Funcs(Funcs()).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{set: set}, nil
}

// FromDir is New over os.DirFS(dir).
func FromDir(dir string, patterns ...string) (*Templates, error) {
	return New(os.DirFS(dir), patterns...)
}

// Must panics when err is non-nil.
func Must(t *Templates, err error) *Templates {
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Templates) RenderString(name string, vars map[string]any, _ *http.Request) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, vars); err != nil {
		return "", fmt.Errorf("render %q: %w", name, err)
	}
	return buf.String(), nil
}

func (t *Templates) Render(r *http.Request, name string, vars map[string]any) (http.Handler, error) {
	out, err := t.RenderString(name, vars, r)
	if err != nil {
		return nil, err
	}
	return Page(http.StatusOK, out), nil
}

// Page serves already-rendered markup.
func Page(status int, markup string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(markup))
	})
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// section lets a layout print a section that may not have been rendered
		"section": func(vars map[string]any, name string) template.HTML {
			if s, ok := vars[name].(template.HTML); ok {
				return s
			}
			return ""
		},
	}
}
