// pkg/manifest/config.go
package manifest

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
)

var allMethods = []string{"GET", "POST", "PUT", "DELETE"}

// Validate normalizes the manifest in place and reports the first problem.
func (c *Config) Validate() error {
	if len(c.Views) == 0 {
		return errors.New("no views defined")
	}
	if c.Server.TimeoutMS < 0 {
		return errors.New("server.timeout_ms must be >= 0")
	}

	models := map[string]struct{}{}
	for i := range c.Models {
		m := &c.Models[i]
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return fmt.Errorf("model %d: name is required", i)
		}
		if _, dup := models[m.Name]; dup {
			return fmt.Errorf("model %d: duplicate name %q", i, m.Name)
		}
		models[m.Name] = struct{}{}
		if len(m.Columns) == 0 {
			return fmt.Errorf("model %q: at least one column required", m.Name)
		}
		for k := range m.Defaults {
			if !slices.Contains(m.Columns, k) {
				return fmt.Errorf("model %q: default for unknown column %q", m.Name, k)
			}
		}
	}

	forms := map[string]struct{}{}
	for i := range c.Forms {
		f := &c.Forms[i]
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return fmt.Errorf("form %d: name is required", i)
		}
		if _, dup := forms[f.Name]; dup {
			return fmt.Errorf("form %d: duplicate name %q", i, f.Name)
		}
		forms[f.Name] = struct{}{}
		if strings.TrimSpace(f.Model) == "" {
			return fmt.Errorf("form %q: model is required", f.Name)
		}
		if len(f.Fields) == 0 {
			return fmt.Errorf("form %q: at least one field required", f.Name)
		}
		for _, r := range f.Required {
			if !slices.Contains(f.Fields, r) {
				return fmt.Errorf("form %q: required field %q is not a form field", f.Name, r)
			}
		}
	}

	names := map[string]struct{}{}
	routes := map[string]string{}
	for i := range c.Views {
		v := &c.Views[i]
		if err := v.normalize(); err != nil {
			return fmt.Errorf("view %d: %w", i, err)
		}
		if _, dup := names[v.Name]; dup {
			return fmt.Errorf("view %d: duplicate name %q", i, v.Name)
		}
		names[v.Name] = struct{}{}
		for _, m := range v.Methods {
			key := m + " " + v.Path
			if other, dup := routes[key]; dup {
				return fmt.Errorf("view %q: %s already served by view %q", v.Name, key, other)
			}
			routes[key] = v.Name
		}
		if v.TimeoutMS == 0 {
			v.TimeoutMS = c.Server.TimeoutMS
		}
		if err := validateModules(v.Modules); err != nil {
			return fmt.Errorf("view %q: %w", v.Name, err)
		}
	}
	return nil
}

func (v *View) normalize() error {
	if v.Path == "" {
		return errors.New("path is required")
	}
	if !strings.HasPrefix(v.Path, "/") {
		v.Path = "/" + v.Path
	}
	if v.Path != "/" {
		v.Path = path.Clean(v.Path)
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		v.Name = v.Path
	}
	if len(v.Methods) == 0 {
		v.Methods = slices.Clone(allMethods)
	}
	for i, m := range v.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if !slices.Contains(allMethods, m) {
			return fmt.Errorf("method %q not supported", m)
		}
		v.Methods[i] = m
	}
	if v.TimeoutMS < 0 {
		return errors.New("timeout_ms must be >= 0")
	}
	if len(v.Modules) == 0 {
		return errors.New("at least one module required")
	}
	return nil
}

func validateModules(mods []Module) error {
	for i := range mods {
		m := &mods[i]
		m.Kind = Kind(strings.ToLower(strings.TrimSpace(string(m.Kind))))
		if err := m.validate(); err != nil {
			return fmt.Errorf("module %d (%s): %w", i, m.Kind, err)
		}
	}
	return nil
}

func (m *Module) validate() error {
	switch m.Kind {
	case KindLoad, KindList:
		if m.Model == "" {
			return errors.New("model is required")
		}
	case KindFilter:
		if m.Name == "" || m.Call == "" {
			return errors.New("name and call are required")
		}
	case KindBreadcrumb:
		if m.Label == "" {
			return errors.New("label is required")
		}
	case KindTemplate:
		if m.Template == "" {
			return errors.New("template is required")
		}
	case KindPartial:
		if m.Section == "" || m.Template == "" {
			return errors.New("section and template are required")
		}
	case KindLayout:
		if m.Layout == "" {
			return errors.New("layout is required")
		}
	case KindCallback:
		if m.OnDispatch == "" && m.OnGet == "" && m.OnPost == "" && m.OnPut == "" && m.OnDelete == "" {
			return errors.New("at least one on_* callback required")
		}
	case KindForm:
		if m.Form == "" {
			return errors.New("form is required")
		}
	case KindAjax:
		if len(m.Endpoints) == 0 {
			return errors.New("at least one endpoint required")
		}
		for j := range m.Endpoints {
			e := &m.Endpoints[j]
			if _, err := regexp.Compile(e.Pattern); err != nil || e.Pattern == "" {
				return fmt.Errorf("endpoint %d: invalid pattern %q", j, e.Pattern)
			}
			if len(e.Modules) == 0 {
				return fmt.Errorf("endpoint %d: at least one module required", j)
			}
			if err := validateModules(e.Modules); err != nil {
				return fmt.Errorf("endpoint %d: %w", j, err)
			}
		}
		return nil
	case KindContainer, KindConditional:
		if m.Kind == KindConditional && m.Condition == nil {
			return errors.New("condition is required")
		}
		if len(m.Modules) == 0 {
			return errors.New("at least one module required")
		}
		return validateModules(m.Modules)
	case KindProperty:
		if m.Name == "" {
			return errors.New("name is required")
		}
	case "":
		return errors.New("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}
	if len(m.Modules) > 0 || len(m.Endpoints) > 0 {
		return errors.New("nested modules are only allowed in ajax, container and conditional")
	}
	return nil
}
