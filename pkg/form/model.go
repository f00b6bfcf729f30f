// pkg/form/model.go
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joeydtaylor/modview/pkg/store"
)

// Validator inspects cleaned values and returns field errors.
type Validator func(values map[string]string) map[string]string

// Model is a Class that edits Fields of a single record.
type Model struct {
	Model    store.Model // used when no instance is supplied
	Fields   []string
	Required []string
	Validate Validator
}

var _ Class = Model{}

func (m Model) New(a Args) (Form, error) {
	inst := a.Instance
	if inst == nil {
		if m.Model == nil {
			return nil, errors.New("form: no instance and no model to create one")
		}
		inst = m.Model.New()
	}
	return &ModelForm{class: m, Instance: inst, data: a.Data, bound: a.Bound()}, nil
}

// ModelForm is a Model form bound to one record.
type ModelForm struct {
	class    Model
	Instance store.Record
	data     map[string][]string
	bound    bool
	prefix   string

	checked bool
	errs    map[string]string
}

// Value is the submitted value of field, or the instance value when unbound.
func (f *ModelForm) Value(field string) string {
	if f.bound {
		if vs := f.data[f.prefix+field]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	if v := f.Instance.Get(field); v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func (f *ModelForm) IsValid() bool {
	if !f.bound {
		return false
	}
	if !f.checked {
		f.clean()
	}
	return len(f.errs) == 0
}

func (f *ModelForm) Errors() map[string]string {
	if f.bound && !f.checked {
		f.clean()
	}
	return f.errs
}

// Save copies the cleaned values onto the instance and persists it.
func (f *ModelForm) Save(ctx context.Context) error {
	if !f.IsValid() {
		return errors.New("form: cannot save an invalid form")
	}
	for _, name := range f.class.Fields {
		f.Instance.Set(name, f.Value(name))
	}
	return f.Instance.Save(ctx)
}

func (f *ModelForm) clean() {
	f.checked = true
	values := make(map[string]string, len(f.class.Fields))
	for _, name := range f.class.Fields {
		values[name] = strings.TrimSpace(f.Value(name))
	}
	errs := map[string]string{}
	for _, name := range f.class.Required {
		if values[name] == "" {
			errs[name] = "This field is required."
		}
	}
	if f.class.Validate != nil {
		for k, v := range f.class.Validate(values) {
			if _, dup := errs[k]; !dup {
				errs[k] = v
			}
		}
	}
	if len(errs) > 0 {
		f.errs = errs
	}
}

// ModelSet is a SetClass editing a collection with one Model form per record,
// plus any extra records announced by the "<prefix>TOTAL_FORMS" field.
type ModelSet struct {
	Form   Model
	Prefix string // defaults to "form"
}

var _ SetClass = ModelSet{}

func (ModelSet) FormSet() {}

func (s ModelSet) New(a Args) (Form, error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "form"
	}
	total := len(a.Collection)
	if a.Bound() {
		if n, err := strconv.Atoi(a.Data.Get(prefix + "-TOTAL_FORMS")); err == nil && n > total {
			total = n
		}
	}
	set := &ModelFormSet{}
	for i := 0; i < total; i++ {
		fa := Args{Data: a.Data, Files: a.Files, Extra: a.Extra}
		if i < len(a.Collection) {
			fa.Instance = a.Collection[i]
		}
		f, err := s.Form.New(fa)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i, err)
		}
		mf := f.(*ModelForm)
		mf.prefix = fmt.Sprintf("%s-%d-", prefix, i)
		set.Forms = append(set.Forms, mf)
	}
	return set, nil
}

// ModelFormSet is a bound ModelSet.
type ModelFormSet struct {
	Forms []*ModelForm
}

func (s *ModelFormSet) IsValid() bool {
	if len(s.Forms) == 0 {
		return false
	}
	for _, f := range s.Forms {
		if !f.IsValid() {
			return false
		}
	}
	return true
}

// Errors are keyed "<index>.<field>".
func (s *ModelFormSet) Errors() map[string]string {
	var out map[string]string
	for i, f := range s.Forms {
		for k, v := range f.Errors() {
			if out == nil {
				out = map[string]string{}
			}
			out[fmt.Sprintf("%d.%s", i, k)] = v
		}
	}
	return out
}

func (s *ModelFormSet) Save(ctx context.Context) error {
	for i, f := range s.Forms {
		if err := f.Save(ctx); err != nil {
			return fmt.Errorf("form %d: %w", i, err)
		}
	}
	return nil
}
