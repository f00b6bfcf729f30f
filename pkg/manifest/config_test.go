package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemView(path string, mods ...Module) View {
	if len(mods) == 0 {
		mods = []Module{{Kind: KindTemplate, Template: "item.html"}}
	}
	return View{Path: path, Modules: mods}
}

func TestValidateNormalizesViews(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server: Server{TimeoutMS: 1500},
		Views: []View{
			itemView("items/{pk}/"),
			{Name: " list ", Path: "/items", Methods: []string{"get", " post"}, TimeoutMS: 200,
				Modules: []Module{{Kind: " Template ", Template: "list.html"}}},
		},
	}
	require.NoError(t, cfg.Validate())

	v := cfg.Views[0]
	assert.Equal(t, "/items/{pk}", v.Path)
	assert.Equal(t, "/items/{pk}", v.Name)
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE"}, v.Methods)
	assert.Equal(t, 1500, v.TimeoutMS)

	v = cfg.Views[1]
	assert.Equal(t, "list", v.Name)
	assert.Equal(t, []string{"GET", "POST"}, v.Methods)
	assert.Equal(t, 200, v.TimeoutMS)
	assert.Equal(t, KindTemplate, v.Modules[0].Kind)
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		expErr string
	}{
		{
			name:   "no_views",
			cfg:    Config{},
			expErr: "no views defined",
		},
		{
			name: "duplicate_view",
			cfg: Config{Views: []View{
				{Name: "a", Path: "/a", Modules: []Module{{Kind: KindProperty, Name: "x"}}},
				{Name: "a", Path: "/b", Modules: []Module{{Kind: KindProperty, Name: "x"}}},
			}},
			expErr: `duplicate name "a"`,
		},
		{
			name:   "duplicate_route",
			cfg:    Config{Views: []View{itemView("/a"), {Name: "other", Path: "/a/", Methods: []string{"POST"}, Modules: []Module{{Kind: KindProperty, Name: "x"}}}}},
			expErr: `POST /a already served by view "/a"`,
		},
		{
			name:   "bad_method",
			cfg:    Config{Views: []View{{Path: "/a", Methods: []string{"PATCH"}, Modules: []Module{{Kind: KindProperty, Name: "x"}}}}},
			expErr: `method "PATCH" not supported`,
		},
		{
			name:   "no_modules",
			cfg:    Config{Views: []View{{Path: "/a"}}},
			expErr: "at least one module required",
		},
		{
			name:   "unknown_kind",
			cfg:    Config{Views: []View{itemView("/a", Module{Kind: "widget"})}},
			expErr: `unknown kind "widget"`,
		},
		{
			name:   "load_without_model",
			cfg:    Config{Views: []View{itemView("/a", Module{Kind: KindLoad})}},
			expErr: "model is required",
		},
		{
			name:   "bad_ajax_pattern",
			cfg:    Config{Views: []View{itemView("/a", Module{Kind: KindAjax, Endpoints: []Endpoint{{Pattern: "(", Modules: []Module{{Kind: KindProperty, Name: "x"}}}}})}},
			expErr: `invalid pattern "("`,
		},
		{
			name: "nested_error",
			cfg: Config{Views: []View{itemView("/a", Module{Kind: KindContainer, Modules: []Module{
				{Kind: KindPartial, Section: "side"},
			}})}},
			expErr: "module 0 (container): module 0 (partial): section and template are required",
		},
		{
			name:   "conditional_without_condition",
			cfg:    Config{Views: []View{itemView("/a", Module{Kind: KindConditional, Modules: []Module{{Kind: KindProperty, Name: "x"}}})}},
			expErr: "condition is required",
		},
		{
			name:   "nested_in_leaf",
			cfg:    Config{Views: []View{itemView("/a", Module{Kind: KindTemplate, Template: "a.html", Modules: []Module{{Kind: KindProperty, Name: "x"}}})}},
			expErr: "nested modules are only allowed",
		},
		{
			name: "default_for_unknown_column",
			cfg: Config{
				Models: []Model{{Name: "item", Columns: []string{"title"}, Defaults: map[string]any{"body": ""}}},
				Views:  []View{itemView("/a")},
			},
			expErr: `default for unknown column "body"`,
		},
		{
			name: "required_not_a_field",
			cfg: Config{
				Forms: []Form{{Name: "edit", Model: "item", Fields: []string{"title"}, Required: []string{"body"}}},
				Views: []View{itemView("/a")},
			},
			expErr: `required field "body" is not a form field`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expErr)
		})
	}
}
